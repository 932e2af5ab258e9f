package readaloud

import (
	"fmt"
	"io"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// Book is the main public API type for reading narrated ePub files.
// Use Open, NewReader, or Load to create a Book instance.
//
// A Book is not safe for concurrent use by multiple goroutines.
type Book struct {
	arc            *Archive
	opfPath        string
	opfDir         string
	opf            *opfPackage
	manifestByID   map[string]*manifestItem
	manifestByPath map[string]*manifestItem
	spine          []spineItem
	guide          []guideReference
	metadata       Metadata
	nav            []NavItem
	landmarks      []NavItem
	syncMaps       []*SyncMap // per spine index, nil when the item has no overlay
	sections       []*Section // lazy cache, per spine index
	warnings       []string
}

// Open opens an ePub file at the given path.
// The caller must call Close when done reading from the book.
func Open(path string) (*Book, error) {
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}

	b, err := initBook(a)
	if err != nil {
		a.Close()
		return nil, err
	}
	return b, nil
}

// NewReader creates a Book from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; Close only cleans
// up internal state.
func NewReader(r io.ReaderAt, size int64) (*Book, error) {
	a, err := NewArchive(r, size)
	if err != nil {
		return nil, err
	}
	return initBook(a)
}

// Load creates a Book from raw ePub bytes held in memory.
func Load(data []byte) (*Book, error) {
	a, err := LoadArchive(data)
	if err != nil {
		return nil, err
	}
	return initBook(a)
}

// initBook performs common initialisation: mimetype validation, container
// parsing, DRM detection, OPF/navigation parsing, and eager media-overlay
// parsing for every spine item that declares one.
func initBook(a *Archive) (*Book, error) {
	b := &Book{arc: a}

	// Validate mimetype. Deviations are warnings, not errors.
	b.validateMimetype()

	// Parse container to find OPF path.
	opfPath, err := parseContainer(a)
	if err != nil {
		return nil, err
	}
	b.opfPath = opfPath
	b.opfDir = dirName(opfPath)

	// Check for DRM.
	fontObfuscation, err := checkDRM(a)
	if err != nil {
		return nil, err
	}
	if fontObfuscation {
		b.warnings = append(b.warnings, "font obfuscation detected; obfuscated fonts may not render correctly")
	}

	// Read and parse OPF.
	opfData, err := a.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("readaloud: OPF file not found in archive: %s: %w", opfPath, ErrInvalidPackage)
	}

	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}
	b.opf = pkg
	b.manifestByID, b.manifestByPath = buildManifestMaps(pkg.Manifest, b.opfDir)

	var spineWarnings []string
	b.spine, spineWarnings = buildSpine(pkg.Spine, b.manifestByID)
	b.warnings = append(b.warnings, spineWarnings...)
	b.resolveOverlays()

	b.guide = buildGuide(pkg.Guide)
	b.metadata = buildMetadata(pkg)

	// Parse navigation (nav document, NCX, or synthesized). Errors are
	// non-fatal; the synthesized fallback guarantees a non-empty tree for
	// any non-empty spine.
	var navWarnings []string
	b.nav, b.landmarks, navWarnings = buildNavigation(a, pkg, b.manifestByID, b.manifestByPath, b.spine)
	b.warnings = append(b.warnings, navWarnings...)

	b.parseOverlays()
	b.sections = make([]*Section, len(b.spine))

	return b, nil
}

// resolveOverlays fills each spine item's SMILPath from its manifest item's
// media-overlay attribute. A dangling overlay id is a warning; the section
// simply reads without narration.
func (b *Book) resolveOverlays() {
	for i := range b.spine {
		mi, ok := b.manifestByID[b.spine[i].ID]
		if !ok || mi.MediaOverlay == "" {
			continue
		}
		smilItem, ok := b.manifestByID[mi.MediaOverlay]
		if !ok {
			b.warnings = append(b.warnings, fmt.Sprintf("media-overlay %q of item %q has no manifest entry", mi.MediaOverlay, mi.ID))
			continue
		}
		b.spine[i].SMILPath = smilItem.Path
	}
}

// parseOverlays eagerly parses the SMIL document of every spine item that has
// one. Parsing up front keeps Section lazy loading cheap and surfaces broken
// overlays as load-time warnings instead of mid-playback surprises.
func (b *Book) parseOverlays() {
	b.syncMaps = make([]*SyncMap, len(b.spine))
	for i, si := range b.spine {
		if si.SMILPath == "" {
			continue
		}
		sm, err := parseSyncMap(b.arc, si.SMILPath)
		if err != nil {
			b.warnings = append(b.warnings, fmt.Sprintf("failed to parse media overlay %s: %v", si.SMILPath, err))
			continue
		}
		b.syncMaps[i] = sm
	}
}

// validateMimetype checks that the first ZIP entry is named "mimetype" and
// contains "application/epub+zip". Deviations are recorded as warnings.
func (b *Book) validateMimetype() {
	if len(b.arc.zr.File) == 0 {
		b.warnings = append(b.warnings, "empty ZIP archive; mimetype entry missing")
		return
	}

	first := b.arc.zr.File[0]
	if first.Name != "mimetype" {
		b.warnings = append(b.warnings, "first ZIP entry is not \"mimetype\"")
		return
	}

	data, err := readZipFile(first)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}

	if string(data) != expectedMimetype {
		b.warnings = append(b.warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// Close releases resources held by the Book. When the Book was created via
// Open, Close closes the underlying file. Close is idempotent.
func (b *Book) Close() error {
	return b.arc.Close()
}

// ReadFile reads a file from the ePub archive by its ZIP-internal path,
// applying the archive's candidate-path fallback chain.
func (b *Book) ReadFile(name string) ([]byte, error) {
	return b.arc.ReadFile(name)
}

// Metadata returns the extracted metadata from the ePub.
func (b *Book) Metadata() Metadata {
	return copyMetadata(b.metadata)
}

// Title returns the primary title, or "" when the OPF declares none.
func (b *Book) Title() string {
	if len(b.metadata.Titles) == 0 {
		return ""
	}
	return b.metadata.Titles[0]
}

// Author returns the first creator's display name, or "" when none exists.
func (b *Book) Author() string {
	if len(b.metadata.Authors) == 0 {
		return ""
	}
	return b.metadata.Authors[0].Name
}

// Warnings returns the list of non-fatal warnings accumulated during parsing.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

// TOC returns the navigation tree. Each item's SpineIndex is set to the index
// of the corresponding reading-order entry, or -1 if no match was found.
func (b *Book) TOC() []NavItem {
	return copyNavItems(b.nav)
}

// Landmarks returns the landmarks from an ePub 3 nav document.
// Returns nil for ePub 2 files or when no landmarks are present.
func (b *Book) Landmarks() []NavItem {
	return copyNavItems(b.landmarks)
}

// SectionCount returns the number of entries in the reading order.
func (b *Book) SectionCount() int {
	return len(b.spine)
}

func copyMetadata(in Metadata) Metadata {
	out := in
	out.Titles = append([]string(nil), in.Titles...)
	out.Authors = append([]Author(nil), in.Authors...)
	out.Language = append([]string(nil), in.Language...)
	out.Identifiers = append([]Identifier(nil), in.Identifiers...)
	out.Subjects = append([]string(nil), in.Subjects...)
	return out
}

func copyNavItems(in []NavItem) []NavItem {
	if in == nil {
		return nil
	}
	out := make([]NavItem, len(in))
	for i := range in {
		out[i] = in[i]
		out[i].Children = copyNavItems(in[i].Children)
	}
	return out
}
