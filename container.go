package readaloud

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// containerXML models the META-INF/container.xml file used to locate the OPF.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerPath is the well-known location of container.xml in an ePub archive.
const containerPath = "META-INF/container.xml"

// parseContainer locates and parses META-INF/container.xml, returning the
// OPF path from the first usable <rootfile full-path>. A missing container
// file is fatal to the load and reported as a wrapped ErrInvalidArchive:
// without it the archive is not an ePub.
func parseContainer(a *Archive) (string, error) {
	if !a.Has(containerPath) {
		return "", fmt.Errorf("readaloud: missing %s: %w", containerPath, ErrInvalidArchive)
	}

	data, err := a.ReadFile(containerPath)
	if err != nil {
		return "", fmt.Errorf("readaloud: read container.xml: %w", err)
	}
	data = stripBOM(data)

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("readaloud: parse container.xml: %w", ErrInvalidArchive)
	}

	if len(c.RootFiles) == 0 {
		return "", fmt.Errorf("readaloud: container.xml has no rootfile entries: %w", ErrInvalidArchive)
	}

	var fallbackPath string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return fullPath, nil
		}
		if fallbackPath == "" {
			fallbackPath = fullPath
		}
	}

	if fallbackPath == "" {
		return "", fmt.Errorf("readaloud: container.xml rootfile has empty full-path: %w", ErrInvalidArchive)
	}

	return fallbackPath, nil
}
