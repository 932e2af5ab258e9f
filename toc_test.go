package readaloud

import "testing"

func TestParseNCX(t *testing.T) {
	ncx := `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="chapter1.xhtml"/>
      <navPoint id="np1a" playOrder="2">
        <navLabel><text>Section 1.1</text></navLabel>
        <content src="chapter1.xhtml#sec1"/>
      </navPoint>
    </navPoint>
    <navPoint id="np2" playOrder="3">
      <navLabel><text>Chapter Two</text></navLabel>
      <content src="chapter2.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

	items, err := parseNCX([]byte(ncx), "OEBPS/toc.ncx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("top-level items = %d", len(items))
	}
	if items[0].Title != "Chapter One" || items[0].Href != "OEBPS/chapter1.xhtml" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if len(items[0].Children) != 1 {
		t.Fatalf("children = %d", len(items[0].Children))
	}
	if items[0].Children[0].Href != "OEBPS/chapter1.xhtml#sec1" {
		t.Errorf("child href = %q", items[0].Children[0].Href)
	}
}

func TestParseNavDocument(t *testing.T) {
	nav := `<html xmlns:epub="http://www.idpf.org/2007/ops"><body>
<nav epub:type="toc">
  <ol>
    <li><a href="chapter1.xhtml">One</a>
      <ol><li><a href="chapter1.xhtml#a">One A</a></li></ol>
    </li>
    <li><span>Unlinked Heading</span></li>
  </ol>
</nav>
<nav epub:type="landmarks">
  <ol><li><a href="chapter1.xhtml">Start</a></li></ol>
</nav>
</body></html>`

	toc, landmarks, err := parseNavDocument([]byte(nav), "OEBPS/nav.xhtml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toc) != 2 {
		t.Fatalf("toc items = %d", len(toc))
	}
	if toc[0].Title != "One" || toc[0].Href != "OEBPS/chapter1.xhtml" {
		t.Errorf("toc[0] = %+v", toc[0])
	}
	if len(toc[0].Children) != 1 || toc[0].Children[0].Title != "One A" {
		t.Errorf("toc[0].Children = %+v", toc[0].Children)
	}
	if toc[1].Title != "Unlinked Heading" || toc[1].Href != "" {
		t.Errorf("toc[1] = %+v", toc[1])
	}
	if len(landmarks) != 1 || landmarks[0].Title != "Start" {
		t.Errorf("landmarks = %+v", landmarks)
	}
}

func TestBuildNavigation_NavWinsOverNCX(t *testing.T) {
	// Version says 2.0 but a nav document is declared; the nav must win.
	files := narratedBookFiles()
	files["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata><dc:title>T</dc:title></metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`
	files["OEBPS/toc.ncx"] = `<ncx><navMap>
    <navPoint><navLabel><text>NCX Title</text></navLabel><content src="chapter1.xhtml"/></navPoint>
  </navMap></ncx>`

	b := buildTestBook(t, files)
	defer b.Close()

	toc := b.TOC()
	if len(toc) != 2 {
		t.Fatalf("toc items = %d", len(toc))
	}
	if toc[0].Title != "Chapter One" {
		t.Errorf("toc[0].Title = %q, want the nav document title", toc[0].Title)
	}
	if toc[0].SpineIndex != 0 || toc[1].SpineIndex != 1 {
		t.Errorf("spine indices = %d, %d", toc[0].SpineIndex, toc[1].SpineIndex)
	}
	if !toc[0].Navigable {
		t.Error("toc[0] not navigable")
	}
}

func TestBuildNavigation_NCXFallback(t *testing.T) {
	files := narratedBookFiles()
	files["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata><dc:title>T</dc:title></metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx"><itemref idref="ch1"/></spine>
</package>`
	files["OEBPS/toc.ncx"] = `<ncx><navMap>
    <navPoint><navLabel><text>NCX Chapter</text></navLabel><content src="chapter1.xhtml"/></navPoint>
    <navPoint><navLabel><text>Dangling</text></navLabel><content src="nowhere.xhtml"/></navPoint>
  </navMap></ncx>`
	delete(files, "OEBPS/nav.xhtml")

	b := buildTestBook(t, files)
	defer b.Close()

	toc := b.TOC()
	if len(toc) != 2 {
		t.Fatalf("toc items = %d", len(toc))
	}
	if toc[0].Title != "NCX Chapter" || toc[0].SpineIndex != 0 || !toc[0].Navigable {
		t.Errorf("toc[0] = %+v", toc[0])
	}
	if toc[1].SpineIndex != -1 || toc[1].Navigable {
		t.Errorf("dangling entry = %+v, want SpineIndex -1 and not navigable", toc[1])
	}
}

func TestBuildNavigation_SynthesizedFallback(t *testing.T) {
	files := narratedBookFiles()
	files["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata><dc:title>T</dc:title></metadata>
  <manifest>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="ch1"/><itemref idref="ch2"/></spine>
</package>`
	delete(files, "OEBPS/nav.xhtml")

	b := buildTestBook(t, files)
	defer b.Close()

	toc := b.TOC()
	if len(toc) != 2 {
		t.Fatalf("toc items = %d, want one per spine entry", len(toc))
	}
	if toc[0].Title != "Chapter One" {
		t.Errorf("toc[0].Title = %q, want the document title", toc[0].Title)
	}
	if toc[0].SpineIndex != 0 || toc[1].SpineIndex != 1 {
		t.Errorf("spine indices = %d, %d", toc[0].SpineIndex, toc[1].SpineIndex)
	}
	if !toc[0].Navigable || !toc[1].Navigable {
		t.Error("synthesized entries must be navigable")
	}
}
