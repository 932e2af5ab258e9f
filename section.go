package readaloud

import "fmt"

// Section returns the section at the given reading-order index, building it
// on first access and caching it for the lifetime of the Book.
//
// Building a section reads and decodes the content document, rewrites its
// resource paths to ZIP-internal paths, extracts the sanitized body HTML, and
// indexes every element id to its plain text for sync lookups.
func (b *Book) Section(index int) (*Section, error) {
	if index < 0 || index >= len(b.spine) {
		return nil, fmt.Errorf("readaloud: section index %d out of range [0, %d): %w", index, len(b.spine), ErrInvalidSection)
	}
	if s := b.sections[index]; s != nil {
		return s, nil
	}

	si := b.spine[index]

	text, err := b.arc.ReadTextFile(si.Path)
	if err != nil {
		return nil, fmt.Errorf("readaloud: read section %s: %w", si.Path, err)
	}
	raw := []byte(text)

	// Rewrite resource paths in the full document before extracting body,
	// so that html.Parse operates on a complete XHTML document.
	rewritten := rewriteResourcePaths(raw, si.Path)

	content, err := extractBodyHTML(rewritten)
	if err != nil {
		return nil, fmt.Errorf("readaloud: parse section %s: %w", si.Path, err)
	}

	s := &Section{
		ID:         si.ID,
		Index:      index,
		Path:       si.Path,
		Title:      b.sectionTitle(index, raw),
		Content:    content,
		Sync:       b.syncMaps[index],
		anchorText: buildAnchorIndex(raw),
	}
	b.sections[index] = s
	return s, nil
}

// Sections builds and returns every section in reading order. A section that
// fails to build is skipped with a warning.
func (b *Book) Sections() []*Section {
	out := make([]*Section, 0, len(b.spine))
	for i := range b.spine {
		s, err := b.Section(i)
		if err != nil {
			b.warnings = append(b.warnings, fmt.Sprintf("failed to build section %d: %v", i, err))
			continue
		}
		out = append(out, s)
	}
	return out
}

// sectionTitle derives a section title from the navigation tree, falling back
// to the document's own title or a numbered chapter label.
func (b *Book) sectionTitle(index int, raw []byte) string {
	navTitles := b.navTitleMap()
	if t, ok := navTitles[index]; ok && t != "" {
		return t
	}
	if t := documentTitle(raw); t != "" {
		return t
	}
	return fmt.Sprintf("Chapter %d", index+1)
}

// navTitleMap flattens the navigation tree into a spine index → title map.
// The first entry for an index wins.
func (b *Book) navTitleMap() map[int]string {
	m := make(map[int]string)
	var flat []*NavItem
	flattenNavItems(&flat, b.nav)
	for _, item := range flat {
		if item.SpineIndex < 0 || item.Title == "" {
			continue
		}
		if _, exists := m[item.SpineIndex]; !exists {
			m[item.SpineIndex] = item.Title
		}
	}
	return m
}

// flattenNavItems collects pointers to all NavItem nodes (including nested
// children) into flat.
func flattenNavItems(flat *[]*NavItem, items []NavItem) {
	for i := range items {
		*flat = append(*flat, &items[i])
		if len(items[i].Children) > 0 {
			flattenNavItems(flat, items[i].Children)
		}
	}
}

// HasNarration reports whether the section has a time-synchronization map.
func (s *Section) HasNarration() bool {
	return s.Sync != nil && len(s.Sync.Points) > 0
}

// AnchorText returns the plain text of the element with the given id in the
// section document. The boolean reports whether the anchor exists.
func (s *Section) AnchorText(anchorID string) (string, bool) {
	t, ok := s.anchorText[anchorID]
	return t, ok
}

// Sentence returns the cleaned sentence text for the given anchor id,
// suitable for display or flashcard export. Returns "" when the anchor does
// not exist or holds no text.
func (s *Section) Sentence(anchorID string) string {
	t, ok := s.anchorText[anchorID]
	if !ok {
		return ""
	}
	return CleanSentence(t)
}

// SentenceAt returns the cleaned sentence being narrated at playback time t,
// along with its sync point. ok is false when the section has no narration.
func (s *Section) SentenceAt(t float64) (string, SyncPoint, bool) {
	p, ok := s.Sync.ActiveAnchor(t)
	if !ok {
		return "", SyncPoint{}, false
	}
	return s.Sentence(p.AnchorID), p, true
}
