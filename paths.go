package readaloud

import (
	"net/url"
	"strings"
)

// ResolvePath resolves rel against the archive directory baseDir and returns
// a normalized ZIP-internal path (forward-slash separated, no leading slash,
// no "." or ".." segments, no empty segments).
//
// Rules:
//   - an empty rel returns the normalized baseDir
//   - a leading "/" makes rel archive-root-relative (the slash is stripped)
//   - each "../" pops one trailing segment off baseDir, clamped at the
//     archive root; a malformed archive with too many "../" segments
//     resolves to a root-relative path rather than failing
//   - "./" segments are no-ops
//
// ResolvePath never fails; the result feeds the candidate-lookup fallbacks
// in Archive, which tolerate a best-effort path.
func ResolvePath(baseDir, rel string) string {
	rel = strings.TrimSpace(rel)
	if decoded, err := url.PathUnescape(rel); err == nil {
		rel = decoded
	}

	if rel == "" {
		return joinSegments(splitSegments(baseDir))
	}

	if strings.HasPrefix(rel, "/") {
		return joinSegments(splitSegments(rel))
	}

	segs := splitSegments(baseDir)
	for _, s := range strings.Split(rel, "/") {
		switch s {
		case "", ".":
			// no-op
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, s)
		}
	}
	return joinSegments(segs)
}

// splitSegments splits a path into its non-empty, non-"." segments.
// ".." segments in the base are dropped: a base directory is always taken
// to be inside the archive root.
func splitSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." || s == ".." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

func joinSegments(segs []string) string {
	return strings.Join(segs, "/")
}

// baseName returns the trailing filename component of a ZIP-internal path.
func baseName(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// dirName returns the directory portion of a ZIP-internal path, or "" for a
// root-level path.
func dirName(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return ""
}

// CandidatePaths returns the ordered list of lookup variants for p, starting
// with the exact path and ending with increasingly speculative alternatives.
// Archives produced by different tools disagree on whether resource paths
// are root-relative, OPF-relative, or live in conventional directories such
// as "Audio/"; the variants below compensate for the common mismatches seen
// in the wild. Order matters: callers must try variants front to back and
// stop at the first hit.
func CandidatePaths(p string) []string {
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	add(p)
	add(strings.TrimPrefix(p, "./"))
	add(strings.TrimPrefix(p, "../"))
	add(strings.TrimPrefix(p, "/"))
	add(joinSegments(splitSegments(p)))

	// Some archives prefix everything with the OPF directory, others do not.
	add(strings.TrimPrefix(p, "OEBPS/"))

	// Conventional audio directories used by media-overlay publishers.
	name := baseName(p)
	add("Audio/" + name)
	add("OEBPS/Audio/" + name)
	add("MediaOverlays/Audio/" + name)
	add("OEBPS/MediaOverlays/Audio/" + name)

	// Bare filename last: resolved through the archive's by-name index.
	add(name)

	return out
}
