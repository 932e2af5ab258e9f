package readaloud

import "errors"

// Sentinel errors returned by the readaloud package.
var (
	// ErrInvalidArchive indicates the input is not a readable ZIP archive or
	// is missing the required META-INF/container.xml entry.
	ErrInvalidArchive = errors.New("readaloud: invalid ePub archive")

	// ErrInvalidPackage indicates the OPF package document is missing or
	// malformed (no manifest or no spine).
	ErrInvalidPackage = errors.New("readaloud: invalid package document")

	// ErrNotFound indicates a referenced resource does not exist in the
	// archive, even after all candidate-path fallbacks were tried.
	ErrNotFound = errors.New("readaloud: resource not found in archive")

	// ErrDRMProtected indicates the ePub file is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be read.
	ErrDRMProtected = errors.New("readaloud: file is DRM protected")

	// ErrInvalidSection indicates a section index is out of range for the
	// current reading order.
	ErrInvalidSection = errors.New("readaloud: invalid section index")

	// ErrNoCover indicates no cover image could be detected
	// using any of the supported strategies.
	ErrNoCover = errors.New("readaloud: no cover image found")
)
