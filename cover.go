package readaloud

import (
	"bytes"
	"image"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Cover detects and returns the cover image using multiple strategies.
// Strategies are tried in priority order:
//  1. ePub 3 manifest item with properties="cover-image"
//  2. ePub 2 <meta name="cover" content="ID"/> → manifest lookup
//  3. <guide> reference type="cover" → parse XHTML for first <img>
//  4. Manifest item whose ID or href contains "cover" with image/* media-type
//  5. First spine item's XHTML → first <img>
//
// Returns ErrNoCover if no strategy succeeds.
func (b *Book) Cover() (CoverImage, error) {
	// Strategy 1: ePub 3 cover-image property.
	if item := b.coverFromManifestProperties(); item != nil {
		return b.loadCoverImage(item)
	}

	// Strategy 2: ePub 2 meta name="cover".
	if item := b.coverFromMetaCover(); item != nil {
		return b.loadCoverImage(item)
	}

	// Strategy 3: guide reference type="cover" → parse XHTML.
	if item := b.coverFromGuide(); item != nil {
		return b.loadCoverImage(item)
	}

	// Strategy 4: manifest item with "cover" in ID/href and image media-type.
	if item := b.coverFromManifestHeuristic(); item != nil {
		return b.loadCoverImage(item)
	}

	// Strategy 5: first spine XHTML → first <img>.
	if item := b.coverFromFirstSpine(); item != nil {
		return b.loadCoverImage(item)
	}

	return CoverImage{}, ErrNoCover
}

// coverFromManifestProperties searches the manifest for an item whose
// Properties field contains "cover-image" (ePub 3).
// It iterates over the OPF manifest items slice to preserve document order.
func (b *Book) coverFromManifestProperties() *manifestItem {
	for _, raw := range b.opf.Manifest.Items {
		item, ok := b.manifestByID[raw.ID]
		if !ok {
			continue
		}
		if slices.Contains(strings.Fields(item.Properties), "cover-image") {
			return item
		}
	}
	return nil
}

// coverFromMetaCover looks for <meta name="cover" content="ID"/> in the OPF
// metadata and resolves the ID through the manifest (ePub 2).
// If the resolved item is an image, it is returned directly. Otherwise it is
// treated as an XHTML cover page and the first <img> is extracted.
func (b *Book) coverFromMetaCover() *manifestItem {
	for _, m := range b.opf.Metadata.Metas {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			item, ok := b.manifestByID[m.Content]
			if !ok {
				continue
			}
			if isImageMediaType(item.MediaType) {
				return item
			}
			// Non-image item — try parsing as XHTML cover page.
			data, err := b.ReadFile(item.Path)
			if err != nil {
				continue
			}
			imgPath := findFirstImageInHTML(data, item.Path)
			if imgPath != "" {
				if imgItem := b.resolveImageManifestItem(imgPath); imgItem != nil {
					return imgItem
				}
			}
		}
	}
	return nil
}

// coverFromGuide searches the <guide> for a reference with type="cover",
// reads that XHTML file, and extracts the first <img> src to resolve a
// manifest image item.
func (b *Book) coverFromGuide() *manifestItem {
	for _, ref := range b.guide {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		// Strip fragment from href.
		href := hrefWithoutFragment(ref.Href)

		// Resolve the XHTML path relative to the OPF directory.
		xhtmlPath := ResolvePath(b.opfDir, href)

		data, err := b.ReadFile(xhtmlPath)
		if err != nil {
			continue
		}

		imgPath := findFirstImageInHTML(data, xhtmlPath)
		if imgPath == "" {
			continue
		}

		// Look up the image in the manifest by resolved path.
		item := b.resolveImageManifestItem(imgPath)
		if item != nil {
			return item
		}
	}
	return nil
}

// coverFromManifestHeuristic searches all manifest items for one whose ID or
// href contains "cover" (case-insensitive) and has an image/* media-type.
// It iterates over the OPF manifest items slice to preserve document order.
func (b *Book) coverFromManifestHeuristic() *manifestItem {
	for _, raw := range b.opf.Manifest.Items {
		item, ok := b.manifestByID[raw.ID]
		if !ok || !isImageMediaType(item.MediaType) {
			continue
		}
		if containsFold(item.ID, "cover") || containsFold(item.Href, "cover") {
			return item
		}
	}
	return nil
}

// coverFromFirstSpine reads the first spine item's XHTML content and extracts
// the first <img> src to resolve a manifest image item.
func (b *Book) coverFromFirstSpine() *manifestItem {
	if len(b.spine) == 0 {
		return nil
	}
	first := b.spine[0]
	if first.Path == "" {
		return nil
	}

	data, err := b.ReadFile(first.Path)
	if err != nil {
		return nil
	}

	imgPath := findFirstImageInHTML(data, first.Path)
	if imgPath == "" {
		return nil
	}

	return b.resolveImageManifestItem(imgPath)
}

// loadCoverImage reads the image data from the archive and constructs a
// CoverImage, decoding the pixel dimensions when the format is recognized.
func (b *Book) loadCoverImage(item *manifestItem) (CoverImage, error) {
	data, err := b.ReadFile(item.Path)
	if err != nil {
		return CoverImage{}, err
	}
	cover := CoverImage{
		Path:      item.Path,
		MediaType: item.MediaType,
		Data:      data,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		cover.Width = cfg.Width
		cover.Height = cfg.Height
	}
	return cover, nil
}

// resolveImageManifestItem resolves an absolute ZIP-internal image path to a
// manifestItem. It tries the resolved-path map first, then falls back to
// iterating the manifest with case-insensitive comparison.
func (b *Book) resolveImageManifestItem(absPath string) *manifestItem {
	if item, ok := b.manifestByPath[absPath]; ok && isImageMediaType(item.MediaType) {
		return item
	}

	lowerAbs := strings.ToLower(absPath)
	for _, item := range b.manifestByPath {
		if !isImageMediaType(item.MediaType) {
			continue
		}
		if strings.ToLower(item.Path) == lowerAbs {
			return item
		}
	}
	return nil
}

// findFirstImageInHTML parses HTML data and returns the resolved ZIP-internal
// path of the first <img> element's src attribute. If no image is found,
// returns an empty string. basePath is the ZIP-internal path of the HTML file,
// used to resolve relative image paths.
func findFirstImageInHTML(htmlData []byte, basePath string) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			a := atom.Lookup(tn)
			if a == atom.Img && hasAttr {
				for {
					key, val, more := tokenizer.TagAttr()
					if string(key) == "src" && string(val) != "" {
						return ResolvePath(dirName(basePath), string(val))
					}
					if !more {
						break
					}
				}
			}
			// Also check SVG <image> element with xlink:href or href.
			if a == atom.Image && hasAttr {
				for {
					key, val, more := tokenizer.TagAttr()
					k := string(key)
					if (k == "href" || k == "xlink:href") && string(val) != "" {
						return ResolvePath(dirName(basePath), string(val))
					}
					if !more {
						break
					}
				}
			}
		}
	}
}

// isImageMediaType returns true if the media type starts with "image/".
func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
