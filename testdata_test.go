package readaloud

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// buildTestArchive creates an in-memory ZIP archive from the provided files
// map (path → content) and returns an *Archive over the resulting bytes.
// It calls t.Fatal on any error.
func buildTestArchive(t *testing.T, files map[string]string) *Archive {
	t.Helper()
	a, err := LoadArchive(buildZipBytes(t, files))
	if err != nil {
		t.Fatalf("buildTestArchive: %v", err)
	}
	return a
}

// buildZipBytes writes the files map to an in-memory ZIP, placing the
// mimetype entry first when present (the ePub spec requires it as the first
// entry).
func buildZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	if mt, ok := files["mimetype"]; ok {
		fw, err := zw.Create("mimetype")
		if err != nil {
			t.Fatalf("buildZipBytes: create mimetype: %v", err)
		}
		if _, err := io.WriteString(fw, mt); err != nil {
			t.Fatalf("buildZipBytes: write mimetype: %v", err)
		}
	}
	for name, content := range files {
		if name == "mimetype" {
			continue
		}
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildZipBytes: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("buildZipBytes: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildZipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildTestBook loads an in-memory ePub built from the files map.
func buildTestBook(t *testing.T, files map[string]string) *Book {
	t.Helper()
	b, err := Load(buildZipBytes(t, files))
	if err != nil {
		t.Fatalf("buildTestBook: %v", err)
	}
	return b
}

// buildTestBookFile writes an ePub archive to a temporary file and returns
// the file path. This variant is useful for testing Open() which requires a
// file path.
func buildTestBookFile(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	fp := filepath.Join(dir, "test.epub")
	if err := os.WriteFile(fp, buildZipBytes(t, files), 0644); err != nil {
		t.Fatalf("buildTestBookFile: write file: %v", err)
	}
	return fp
}

// narratedBookFiles returns the files of a small ePub 3 book with one
// narrated section (three pars) and one silent section. Tests share this
// fixture so that overlay behavior is exercised end to end.
func narratedBookFiles() map[string]string {
	return map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="3.0" unique-identifier="uid">
  <metadata>
    <dc:title>The Narrated Book</dc:title>
    <dc:creator id="author">Jane Reader</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:uuid:11111111-2222-3333-4444-555555555555</dc:identifier>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml" media-overlay="ch1-smil"/>
    <item id="ch1-smil" href="chapter1.smil" media-type="application/smil+xml"/>
    <item id="ch1-audio" href="Audio/chapter1.wav" media-type="audio/wav"/>
    <item id="ch2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`,
		"OEBPS/nav.xhtml": `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Nav</title></head>
<body>
<nav epub:type="toc">
  <ol>
    <li><a href="chapter1.xhtml">Chapter One</a></li>
    <li><a href="chapter2.xhtml">Chapter Two</a></li>
  </ol>
</nav>
</body>
</html>`,
		"OEBPS/chapter1.xhtml": `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title></head>
<body>
<h1 id="h1">Chapter One</h1>
<p id="s1">The fox ran.</p>
<p id="s2">The dog slept.</p>
<p id="s3">The owl watched.</p>
</body>
</html>`,
		"OEBPS/chapter1.smil": `<?xml version="1.0" encoding="UTF-8"?>
<smil xmlns="http://www.w3.org/ns/SMIL" version="3.0">
  <body>
    <par id="p1">
      <text src="chapter1.xhtml#s1"/>
      <audio src="Audio/chapter1.wav" clipBegin="0:00:00.000" clipEnd="0:00:02.500"/>
    </par>
    <par id="p2">
      <text src="chapter1.xhtml#s2"/>
      <audio src="Audio/chapter1.wav" clipBegin="0:00:02.500" clipEnd="0:00:05.000"/>
    </par>
    <par id="p3">
      <text src="chapter1.xhtml#s3"/>
      <audio src="Audio/chapter1.wav" clipBegin="0:00:05.000" clipEnd="0:00:07.500"/>
    </par>
  </body>
</smil>`,
		// Placeholder bytes; tests that need decodable audio build real WAV
		// data with EncodeWAV instead.
		"OEBPS/Audio/chapter1.wav": "RIFF....WAVE",
		"OEBPS/chapter2.xhtml": `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter Two</title></head>
<body>
<h1>Chapter Two</h1>
<p>No narration here.</p>
</body>
</html>`,
	}
}

// buildTestClip creates a mono clip of the given duration where every sample
// holds the constant value v.
func buildTestClip(sampleRate int, seconds, v float64) *AudioClip {
	frames := int(float64(sampleRate) * seconds)
	ch := make([]float64, frames)
	for i := range ch {
		ch[i] = v
	}
	return &AudioClip{SampleRate: sampleRate, Channels: [][]float64{ch}}
}
