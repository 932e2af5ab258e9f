package readaloud

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ActiveAnchor returns the sync point narrating playback time t, for driving
// text highlighting while audio plays.
//
// A point whose [Start, End) window contains t wins. When t falls in a gap
// between clips (or past the last clip), the point whose Start is nearest to
// t is returned instead, so the highlight never goes dark mid-section.
// Returns (SyncPoint{}, false) only when the map has no points.
func (sm *SyncMap) ActiveAnchor(t float64) (SyncPoint, bool) {
	if sm == nil || len(sm.Points) == 0 {
		return SyncPoint{}, false
	}

	for _, p := range sm.Points {
		if t >= p.Start && t < p.End {
			return p, true
		}
	}

	best := 0
	bestDist := math.Abs(sm.Points[0].Start - t)
	for i := 1; i < len(sm.Points); i++ {
		d := math.Abs(sm.Points[i].Start - t)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return sm.Points[best], true
}

// PointForAnchor returns the sync point for the given anchor id, for seeking
// audio to a tapped sentence. The match is exact; there is no fuzzy fallback
// in this direction, since seeking to a wrong clip is worse than not seeking.
func (sm *SyncMap) PointForAnchor(anchorID string) (SyncPoint, bool) {
	if sm == nil || anchorID == "" {
		return SyncPoint{}, false
	}
	idx, ok := sm.byAnchor[anchorID]
	if !ok {
		return SyncPoint{}, false
	}
	return sm.Points[idx], true
}

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	spaceRunPattern = regexp.MustCompile(`\s+`)
)

// CleanSentence normalizes a raw sentence fragment for display or export:
// markup tags are removed, whitespace runs collapse to single spaces,
// leading non-letter characters (digits included) and trailing punctuation
// debris are trimmed, and the result is NFC-normalized so combining
// sequences compare equal.
func CleanSentence(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = spaceRunPattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	// Trim leading characters until the first letter.
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	// Trim trailing characters that are not letters, digits, or sentence
	// terminators.
	s = strings.TrimRightFunc(s, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '.', '!', '?', '。', '！', '？':
			return false
		}
		return true
	})

	return norm.NFC.String(s)
}
