package readaloud

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
)

// parseSyncMap reads and parses the SMIL media overlay at smilPath, returning
// the ordered time-synchronization map for the section it narrates.
//
// Each <par> with both a <text src> and an <audio src> child yields one
// SyncPoint. The text src fragment becomes the anchor id; a src with no
// fragment anchors on the src itself with its extension removed, so overlays
// written against whole documents still narrate. The audio src is resolved
// against the SMIL file's directory. Pars missing either child, or whose
// clip bounds collapse to a zero or negative length, are dropped.
// Returns (nil, nil) when the overlay yields no usable points.
func parseSyncMap(a *Archive, smilPath string) (*SyncMap, error) {
	data, err := a.ReadFile(smilPath)
	if err != nil {
		return nil, err
	}
	data = preprocessHTMLEntities(data)
	data = stripBOM(data)

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("readaloud: parse SMIL %s: %w", smilPath, err)
	}

	smilDir := dirName(smilPath)

	var points []SyncPoint
	for _, par := range xmlquery.Find(doc, "//par") {
		var textSrc, audioSrc, clipBegin, clipEnd string
		for child := par.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode {
				continue
			}
			switch child.Data {
			case "text":
				if textSrc == "" {
					textSrc = child.SelectAttr("src")
				}
			case "audio":
				if audioSrc == "" {
					audioSrc = child.SelectAttr("src")
					clipBegin = child.SelectAttr("clipBegin")
					clipEnd = child.SelectAttr("clipEnd")
				}
			}
		}

		anchor := anchorOf(textSrc)
		if anchor == "" || audioSrc == "" {
			continue
		}

		start := ParseClock(clipBegin)
		end := ParseClock(clipEnd)
		if end <= start {
			continue
		}

		points = append(points, SyncPoint{
			AnchorID:  anchor,
			AudioPath: ResolvePath(smilDir, audioSrc),
			Start:     start,
			End:       end,
		})
	}

	if len(points) == 0 {
		return nil, nil
	}

	// The section's narration audio is the first audio src in document order.
	audioPath := points[0].AudioPath

	// SMIL document order is not trusted; clips play in time order.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Start < points[j].Start
	})

	sm := &SyncMap{
		AudioPath: audioPath,
		Points:    points,
		byAnchor:  make(map[string]int, len(points)),
	}
	for i := range sm.Points {
		sm.Points[i].Index = i
		// Last par wins when a section reuses an anchor id.
		sm.byAnchor[sm.Points[i].AnchorID] = i
	}

	return sm, nil
}

// anchorOf returns the sync anchor for a text src: the URL fragment when one
// is present, otherwise the whole src with its file extension stripped.
func anchorOf(src string) string {
	src = strings.TrimSpace(src)
	if idx := strings.IndexByte(src, '#'); idx >= 0 {
		return strings.TrimSpace(src[idx+1:])
	}
	if ext := path.Ext(src); ext != "" {
		src = strings.TrimSuffix(src, ext)
	}
	return src
}
