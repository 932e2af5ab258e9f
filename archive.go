package readaloud

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Archive is a read-only resource store over a loaded ePub ZIP archive.
// Entries are indexed at load time under their literal path, their
// normalized path, and their bare filename, so lookups stay O(1) for the
// common case while tolerating archives with inconsistent path conventions.
//
// An Archive is effectively immutable after construction and safe for
// concurrent readers.
type Archive struct {
	zr     *zip.Reader
	closer io.Closer // non-nil only when created via OpenArchive

	exact      map[string]*zip.File // literal entry path
	normalized map[string]*zip.File // segments collapsed, "./" and leading "/" removed
	lower      map[string]*zip.File // lowercased normalized path
	byName     map[string]*zip.File // bare filename, first entry wins
}

// OpenArchive opens an ePub ZIP archive at the given file path.
// The caller must call Close when done.
func OpenArchive(path string) (*Archive, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("readaloud: open %s: %w", path, ErrInvalidArchive)
	}
	a := newArchive(&zrc.Reader)
	a.closer = zrc
	return a, nil
}

// NewArchive creates an Archive from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("readaloud: open zip: %w", ErrInvalidArchive)
	}
	return newArchive(zr), nil
}

// LoadArchive creates an Archive from raw archive bytes.
func LoadArchive(data []byte) (*Archive, error) {
	return NewArchive(bytes.NewReader(data), int64(len(data)))
}

// newArchive builds the entry indexes. First entry wins on every index so
// that duplicate paths (after normalization) resolve deterministically to
// the first-registered entry.
func newArchive(zr *zip.Reader) *Archive {
	a := &Archive{
		zr:         zr,
		exact:      make(map[string]*zip.File, len(zr.File)),
		normalized: make(map[string]*zip.File, len(zr.File)),
		lower:      make(map[string]*zip.File, len(zr.File)),
		byName:     make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, ok := a.exact[f.Name]; !ok {
			a.exact[f.Name] = f
		}
		norm := joinSegments(splitSegments(f.Name))
		if _, ok := a.normalized[norm]; !ok {
			a.normalized[norm] = f
		}
		lower := strings.ToLower(norm)
		if _, ok := a.lower[lower]; !ok {
			a.lower[lower] = f
		}
		name := baseName(norm)
		if _, ok := a.byName[name]; !ok {
			a.byName[name] = f
		}
	}
	return a
}

// Close releases resources held by the Archive. Only archives created via
// OpenArchive hold an open file; Close is idempotent.
func (a *Archive) Close() error {
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.zr.File)
}

// Has reports whether the archive contains an entry for the path, after
// exact and normalized lookups (no speculative fallbacks).
func (a *Archive) Has(name string) bool {
	return a.find(name) != nil
}

// find looks up a single path through the O(1) indexes: exact, normalized,
// then case-insensitive. Returns nil if no index matches.
func (a *Archive) find(name string) *zip.File {
	if f, ok := a.exact[name]; ok {
		return f
	}
	norm := joinSegments(splitSegments(name))
	if f, ok := a.normalized[norm]; ok {
		return f
	}
	if f, ok := a.lower[strings.ToLower(norm)]; ok {
		return f
	}
	return nil
}

// locate resolves a path to a ZIP entry using the full fallback chain:
// direct index lookups, then each CandidatePaths variant, then a last-resort
// linear scan for any entry whose trailing filename matches. The scan is
// O(n) over archive entries and only runs when every indexed lookup failed.
func (a *Archive) locate(name string) *zip.File {
	if f := a.find(name); f != nil {
		return f
	}
	for _, c := range CandidatePaths(name) {
		if f := a.find(c); f != nil {
			return f
		}
		if f, ok := a.byName[c]; ok {
			return f
		}
	}

	// Last resort: match on trailing filename only.
	want := strings.ToLower(baseName(name))
	if want == "" {
		return nil
	}
	for _, f := range a.zr.File {
		if strings.ToLower(baseName(f.Name)) == want {
			return f
		}
	}
	return nil
}

// ReadFile reads an archive entry by its ZIP-internal path, applying the
// candidate-path fallback chain. Returns a wrapped ErrNotFound when no
// entry can be located, so callers can degrade per-resource instead of
// failing the whole book.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f := a.locate(name)
	if f == nil {
		return nil, fmt.Errorf("readaloud: %s: %w", name, ErrNotFound)
	}
	return readZipFile(f)
}

// ReadTextFile reads an archive entry and decodes it to UTF-8, honoring a
// declared charset (XML declaration or meta tag) when present. A leading
// BOM is stripped.
func (a *Archive) ReadTextFile(name string) (string, error) {
	data, err := a.ReadFile(name)
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

// decodeText converts raw bytes to a UTF-8 string using the charset
// detection from x/net/html. Falls back to the raw bytes when the content
// is already valid UTF-8 or detection fails.
func decodeText(data []byte) (string, error) {
	data = stripBOM(data)
	r, err := charset.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return string(data), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(data), nil
	}
	return string(decoded), nil
}
