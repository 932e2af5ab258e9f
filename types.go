package readaloud

// Metadata holds the Dublin Core and other metadata extracted from the OPF file.
type Metadata struct {
	// Version is the ePub specification version (e.g., "2.0", "3.0").
	Version string

	// Titles contains all dc:title values. The first entry is the primary title.
	Titles []string

	// Authors contains all dc:creator entries with their roles and file-as values.
	Authors []Author

	// Language contains all dc:language values (BCP 47 tags, e.g., "en", "zh-CN").
	Language []string

	// Identifiers contains all dc:identifier entries (ISBN, UUID, URI, etc.).
	Identifiers []Identifier

	// Publisher is the dc:publisher value.
	Publisher string

	// Date is the dc:date value (publication date as raw string).
	Date string

	// Description is the dc:description value.
	Description string

	// Subjects contains all dc:subject values.
	Subjects []string

	// Rights is the dc:rights value.
	Rights string
}

// Author represents a dc:creator entry with optional file-as and role attributes.
type Author struct {
	// Name is the display name of the author (dc:creator text content).
	Name string

	// FileAs is the opf:file-as attribute value (e.g., "Dickens, Charles").
	FileAs string

	// Role is the opf:role attribute value (e.g., "aut", "edt", "trl").
	Role string
}

// Identifier represents a dc:identifier entry.
type Identifier struct {
	// Value is the identifier text content (e.g., ISBN, UUID, URI).
	Value string

	// Scheme is the opf:scheme attribute value (e.g., "ISBN", "UUID").
	Scheme string

	// ID is the xml id attribute of this identifier element.
	ID string
}

// NavItem represents a single entry in the navigation tree.
// Navigation is a tree structure; each item may have nested children.
type NavItem struct {
	// Title is the display text of the navigation entry.
	Title string

	// Href is the ZIP-internal content target (may include a fragment,
	// e.g., "OEBPS/chapter01.xhtml#section2").
	Href string

	// Children contains nested entries under this item.
	Children []NavItem

	// SpineIndex is the index into the reading order that this entry points
	// to. A value of -1 indicates no spine association was found.
	SpineIndex int

	// Navigable reports whether the target could be matched against the
	// manifest. Entries with dangling targets are kept but flagged so a
	// reading UI can disable them instead of dropping them.
	Navigable bool
}

// SyncPoint pairs one text anchor with the audio clip that narrates it.
// One SyncPoint is produced per SMIL <par> that has both a <text> and an
// <audio> child. SyncPoints are immutable once parsed.
type SyncPoint struct {
	// AnchorID is the fragment of the par's text src — the element id in
	// the section document that this clip narrates.
	AnchorID string

	// AudioPath is the ZIP-internal path of the audio file, resolved
	// against the SMIL file's directory.
	AudioPath string

	// Start and End bound the clip in seconds within the audio file.
	// Invariant: Start < End.
	Start float64
	End   float64

	// Index is the position of this point within its SyncMap after sorting
	// by Start.
	Index int
}

// SyncMap is the ordered time-synchronization map for one section.
// Points are sorted ascending by Start; SMIL document order is not trusted.
//
// When a section document reuses an anchor id, the last par wins in the
// by-anchor lookup; the duplicate points remain in Points for time-based
// queries.
type SyncMap struct {
	// AudioPath is the ZIP-internal path of the section's narration audio
	// (the first audio element's resolved src).
	AudioPath string

	// Points holds the sync points sorted ascending by Start.
	Points []SyncPoint

	byAnchor map[string]int // AnchorID → index into Points, last wins
}

// Section is the renderable unit for one reading-order position.
// Content is sanitized body HTML with resource paths rewritten to
// ZIP-internal paths; a host UI maps those to whatever URLs it serves.
// Sections are built lazily and cached for the lifetime of the Book.
type Section struct {
	// ID is the manifest item id of the content document.
	ID string

	// Index is the position in the reading order.
	Index int

	// Path is the ZIP-internal path of the content document.
	Path string

	// Title is the section title derived from the navigation tree, or from
	// the document itself when the book has no usable navigation.
	Title string

	// Content is the sanitized inner HTML of the document body.
	Content string

	// Sync is the section's time-synchronization map, or nil when the
	// section has no narration.
	Sync *SyncMap

	// anchorText maps element ids in the content document to their plain
	// text, built once at section build time so that text/audio correlation
	// never needs a live document tree.
	anchorText map[string]string
}

// CoverImage holds the detected cover image data.
type CoverImage struct {
	// Path is the ZIP-internal path to the cover image file.
	Path string

	// MediaType is the MIME type of the cover image (e.g., "image/jpeg").
	MediaType string

	// Data is the raw image bytes.
	Data []byte

	// Width and Height are the pixel dimensions, or 0 when the image could
	// not be decoded.
	Width  int
	Height int
}

// spineItem represents an entry in the OPF <spine> element, joined with its
// manifest item.
type spineItem struct {
	// ID is the manifest item ID referenced by this spine entry.
	ID string

	// Href is the content file path relative to the OPF directory.
	Href string

	// Path is the resolved ZIP-internal content file path.
	Path string

	// MediaType is the MIME type of the referenced content file.
	MediaType string

	// Linear indicates whether this item is part of the linear reading order.
	Linear bool

	// SMILPath is the resolved ZIP-internal path of the media-overlay SMIL
	// document, or "" when the item has no overlay.
	SMILPath string
}

// manifestItem represents an entry in the OPF <manifest> element.
type manifestItem struct {
	// ID is the unique identifier of this manifest item.
	ID string

	// Href is the file path relative to the OPF file location.
	Href string

	// Path is the resolved ZIP-internal path.
	Path string

	// MediaType is the MIME type of the resource.
	MediaType string

	// Properties contains space-separated property values (ePub 3, e.g., "nav").
	Properties string

	// MediaOverlay is the manifest id of the SMIL document narrating this
	// item, or "" when the item has no overlay.
	MediaOverlay string
}
