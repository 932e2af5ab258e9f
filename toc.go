package readaloud

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// buildNavigation determines the navigation source and parses it into a tree
// of NavItem. The nav document always wins when one is declared in the
// manifest, regardless of the OPF version attribute; publishers get the
// version string wrong often enough that trusting the declared nav is the
// safer rule. Falls back to the NCX named by the spine toc attribute, then to
// a flat navigation synthesized from the reading order so that callers always
// have something to render.
func buildNavigation(a *Archive, pkg *opfPackage, manifestByID, manifestByPath map[string]*manifestItem, spine []spineItem) (nav, landmarks []NavItem, warnings []string) {
	spineMap := make(map[string]int, len(spine))
	for i, si := range spine {
		if _, ok := spineMap[si.Path]; !ok {
			spineMap[si.Path] = i
		}
	}

	if toc, lm, ws, ok := parseNavTOC(a, pkg, manifestByID); ok {
		warnings = append(warnings, ws...)
		finishNavigation(toc, spineMap, manifestByPath)
		finishNavigation(lm, spineMap, manifestByPath)
		return toc, lm, warnings
	} else {
		warnings = append(warnings, ws...)
	}

	if toc, ws, ok := parseNCXTOC(a, pkg, manifestByID); ok {
		warnings = append(warnings, ws...)
		finishNavigation(toc, spineMap, manifestByPath)
		return toc, nil, warnings
	} else {
		warnings = append(warnings, ws...)
	}

	return synthesizeNavigation(a, spine), nil, warnings
}

// parseNavTOC finds and parses the ePub 3 nav document. Returns ok=false when
// the manifest declares no nav item or the document cannot be read.
func parseNavTOC(a *Archive, pkg *opfPackage, manifestByID map[string]*manifestItem) (toc, landmarks []NavItem, warnings []string, ok bool) {
	// Find the manifest item with properties containing "nav".
	// Iterate the OPF slice (not the map) to get deterministic document order.
	var navItem *manifestItem
	for _, raw := range pkg.Manifest.Items {
		for _, prop := range strings.Fields(raw.Properties) {
			if prop == "nav" {
				navItem = manifestByID[raw.ID]
				break
			}
		}
		if navItem != nil {
			break
		}
	}
	if navItem == nil {
		return nil, nil, nil, false
	}

	data, err := a.ReadFile(navItem.Path)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read nav document: %v", err))
		return nil, nil, warnings, false
	}

	toc, landmarks, err = parseNavDocument(data, navItem.Path)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to parse nav document: %v", err))
		return nil, nil, warnings, false
	}

	return toc, landmarks, warnings, true
}

// parseNCXTOC finds and parses the NCX file named by the spine toc attribute.
func parseNCXTOC(a *Archive, pkg *opfPackage, manifestByID map[string]*manifestItem) (toc []NavItem, warnings []string, ok bool) {
	tocID := pkg.Spine.Toc
	if tocID == "" {
		return nil, nil, false
	}

	ncxItem, found := manifestByID[tocID]
	if !found {
		return nil, nil, false
	}

	data, err := a.ReadFile(ncxItem.Path)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read NCX file: %v", err))
		return nil, warnings, false
	}

	toc, err = parseNCX(data, ncxItem.Path)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to parse NCX file: %v", err))
		return nil, warnings, false
	}

	return toc, warnings, true
}

// finishNavigation recursively sets SpineIndex and Navigable on each NavItem.
// A target is navigable when its path (without fragment) matches a manifest
// entry, exactly or by path suffix.
func finishNavigation(items []NavItem, spineMap map[string]int, manifestByPath map[string]*manifestItem) {
	for i := range items {
		items[i].SpineIndex = -1
		if items[i].Href != "" {
			filePath := hrefWithoutFragment(items[i].Href)
			if idx, ok := spineMap[filePath]; ok {
				items[i].SpineIndex = idx
			}
			items[i].Navigable = matchesManifest(filePath, manifestByPath)
		}
		if len(items[i].Children) > 0 {
			finishNavigation(items[i].Children, spineMap, manifestByPath)
		}
	}
}

// matchesManifest reports whether filePath refers to a manifest entry, by
// exact path or by suffix (tolerating navigation files written against a
// different directory convention than the manifest).
func matchesManifest(filePath string, manifestByPath map[string]*manifestItem) bool {
	if filePath == "" {
		return false
	}
	if _, ok := manifestByPath[filePath]; ok {
		return true
	}
	for p := range manifestByPath {
		if strings.HasSuffix(p, "/"+filePath) || strings.HasSuffix(filePath, "/"+p) {
			return true
		}
	}
	return false
}

// hrefWithoutFragment returns the href with the fragment (#...) removed.
func hrefWithoutFragment(href string) string {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx]
	}
	return href
}

// synthesizeNavigation builds a flat navigation from the reading order for
// books with no usable nav document or NCX. Titles come from each document's
// <title> or first heading, falling back to a numbered chapter label.
func synthesizeNavigation(a *Archive, spine []spineItem) []NavItem {
	items := make([]NavItem, 0, len(spine))
	for i, si := range spine {
		title := ""
		if data, err := a.ReadFile(si.Path); err == nil {
			title = documentTitle(data)
		}
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		items = append(items, NavItem{
			Title:      title,
			Href:       si.Path,
			SpineIndex: i,
			Navigable:  true,
		})
	}
	return items
}

// documentTitle extracts a display title from an XHTML document: <title>
// first, then the first <h1> or <h2>.
func documentTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	for _, tag := range []string{"title", "h1", "h2"} {
		if n := findElementByTag(doc, tag); n != nil {
			if t := strings.TrimSpace(nodeTextContent(n)); t != "" {
				return t
			}
		}
	}
	return ""
}

// findElementByTag performs a depth-first search for the first element with
// the given tag name.
func findElementByTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElementByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// --- NCX XML decoding structs (ePub 2) ---

// ncxDocument represents the root <ncx> element of an NCX file.
type ncxDocument struct {
	XMLName xml.Name  `xml:"ncx"`
	NavMap  ncxNavMap `xml:"navMap"`
}

// ncxNavMap represents the <navMap> element containing top-level navPoints.
type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

// ncxNavPoint represents a <navPoint> element which may contain nested navPoints.
type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     ncxNavLabel   `xml:"navLabel"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

// ncxNavLabel represents the <navLabel> element containing the display text.
type ncxNavLabel struct {
	Text string `xml:"text"`
}

// ncxContent represents the <content> element with its src attribute.
type ncxContent struct {
	Src string `xml:"src,attr"`
}

// parseNCX parses NCX (ePub 2) data and returns a tree of NavItem.
// ncxPath is the ZIP-internal path to the NCX file (e.g., "OEBPS/toc.ncx"),
// used to resolve relative hrefs to ZIP root-relative paths.
func parseNCX(data []byte, ncxPath string) ([]NavItem, error) {
	data = preprocessHTMLEntities(data)
	data = stripBOM(data)

	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("readaloud: parse NCX: %w", err)
	}

	items := convertNavPoints(doc.NavMap.NavPoints, ncxPath)
	return items, nil
}

// convertNavPoints recursively converts ncxNavPoint elements into NavItem entries.
func convertNavPoints(points []ncxNavPoint, ncxPath string) []NavItem {
	if len(points) == 0 {
		return nil
	}

	items := make([]NavItem, 0, len(points))
	for _, np := range points {
		item := NavItem{
			Title:      strings.TrimSpace(np.Label.Text),
			SpineIndex: -1,
		}

		// Resolve href relative to the NCX file location.
		src := strings.TrimSpace(np.Content.Src)
		if src != "" {
			if resolved := ResolvePath(dirName(ncxPath), src); resolved != "" {
				item.Href = resolved
			}
		}

		// Recursively process nested navPoints.
		item.Children = convertNavPoints(np.Children, ncxPath)

		items = append(items, item)
	}

	return items
}

// --- Nav Document parsing (ePub 3) ---

// parseNavDocument parses an ePub 3 XHTML nav document and returns toc and landmarks.
// basePath is the ZIP-internal path of the nav document file (for resolving relative hrefs).
func parseNavDocument(data []byte, basePath string) (toc []NavItem, landmarks []NavItem, err error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("readaloud: parse nav document: %w", err)
	}

	// Collect all <nav> elements from the document.
	var navNodes []*html.Node
	var findNavs func(*html.Node)
	findNavs = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			navNodes = append(navNodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findNavs(c)
		}
	}
	findNavs(doc)

	for _, nav := range navNodes {
		if hasEpubType(nav, "toc") {
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				toc = parseNavOL(ol, basePath)
			}
		} else if hasEpubType(nav, "landmarks") {
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				landmarks = parseNavOL(ol, basePath)
			}
		}
	}

	return toc, landmarks, nil
}

// parseNavOL processes an <ol> element and returns its <li> children as NavItem entries.
func parseNavOL(ol *html.Node, basePath string) []NavItem {
	var items []NavItem
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			item := parseNavLI(c, basePath)
			items = append(items, item)
		}
	}
	return items
}

// parseNavLI processes a single <li> element.
// It looks for <a> (or <span> fallback) for title/href and nested <ol> for children.
func parseNavLI(li *html.Node, basePath string) NavItem {
	item := NavItem{SpineIndex: -1}

	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			// Keep the first <a> (per ePub 3 nav spec, each <li> has exactly one).
			if item.Href == "" {
				href := navGetAttr(c, "href")
				if href != "" {
					if resolved := ResolvePath(dirName(basePath), href); resolved != "" {
						item.Href = resolved
					}
				}
				item.Title = strings.TrimSpace(nodeTextContent(c))
			}
		case "span":
			// Use <span> text only if no <a> has been found yet.
			if item.Title == "" {
				item.Title = strings.TrimSpace(nodeTextContent(c))
			}
		case "ol":
			item.Children = parseNavOL(c, basePath)
		}
	}

	return item
}

// hasEpubType checks whether n has an epub:type attribute containing the given token
// (space-separated token matching).
func hasEpubType(n *html.Node, typeName string) bool {
	val := navGetAttr(n, "epub:type")
	for _, t := range strings.Fields(val) {
		if t == typeName {
			return true
		}
	}
	return false
}

// navGetAttr returns the value of the attribute with the given key on n.
func navGetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirstChildElement performs a depth-first search for the first descendant
// element with the given tag name.
func findFirstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirstChildElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// nodeTextContent recursively collects all text content within a node.
func nodeTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeTextContent(c))
	}
	return sb.String()
}
