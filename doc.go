// Package readaloud provides a pure-Go library for reading narrated ePub
// books: ePub 2/3 packages with SMIL media overlays that synchronize text
// and audio.
//
// It extracts metadata (Dublin Core), navigation (NCX and Nav), spine-ordered
// sections with lazy content loading, cover images, and the per-section
// time-synchronization maps that drive read-aloud highlighting. DRM-protected
// files are detected and rejected with [ErrDRMProtected].
//
// # Opening a book
//
// Use [Open] to open a file by path, [NewReader] to read from an
// [io.ReaderAt], or [Load] for in-memory bytes:
//
//	book, err := readaloud.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer book.Close()
//
// # Sections and narration
//
// Sections are returned in reading order via [Book.Section]. Each carries
// sanitized body HTML and, when the package declares a media overlay, a
// [SyncMap] pairing element ids with audio clip windows:
//
//	s, _ := book.Section(0)
//	if s.HasNarration() {
//	    p, _ := s.Sync.ActiveAnchor(12.5)
//	    fmt.Println(p.AnchorID, p.Start, p.End)
//	}
//
// [SyncMap.ActiveAnchor] answers "what sentence is playing at time t";
// [SyncMap.PointForAnchor] answers "where does this sentence start".
//
// # Audio clips
//
// [DecodeWAV], [ExtractClip], and [EncodeWAV] cut one sentence's narration
// out of a section's audio, for export to flashcards or snippets:
//
//	clip := readaloud.ExtractClip(src, p.Start, p.End)
//	wav, _ := readaloud.EncodeWAV(clip)
//
// # Error handling
//
// The package defines sentinel errors for common failure cases:
//   - [ErrDRMProtected] – the file is DRM encrypted
//   - [ErrInvalidArchive] – the container is not a usable ePub archive
//   - [ErrInvalidPackage] – the OPF package document is unusable
//   - [ErrNotFound] – a requested resource is not in the archive
//   - [ErrInvalidSection] – a section index is out of range
//   - [ErrNoCover] – no cover image could be detected
package readaloud
