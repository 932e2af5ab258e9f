package readaloud

import (
	"errors"
	"testing"
)

// validContainerXML is a well-formed META-INF/container.xml pointing to an OPF.
const validContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func TestParseContainer_Normal(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/container.xml": validContainerXML,
		"OEBPS/content.opf":      `<package/>`,
	})

	opfPath, err := parseContainer(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opfPath != "OEBPS/content.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OEBPS/content.opf")
	}
}

func TestParseContainer_CaseInsensitive(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"meta-inf/container.xml": validContainerXML,
		"OEBPS/content.opf":      `<package/>`,
	})

	opfPath, err := parseContainer(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opfPath != "OEBPS/content.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OEBPS/content.opf")
	}
}

func TestParseContainer_WithBOM(t *testing.T) {
	bomContainer := "\xEF\xBB\xBF" + validContainerXML
	a := buildTestArchive(t, map[string]string{
		"META-INF/container.xml": bomContainer,
		"OEBPS/content.opf":      `<package/>`,
	})

	opfPath, err := parseContainer(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opfPath != "OEBPS/content.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OEBPS/content.opf")
	}
}

func TestParseContainer_Missing(t *testing.T) {
	// No container.xml: the archive is not an ePub, even when an OPF exists.
	a := buildTestArchive(t, map[string]string{
		"content.opf": `<package/>`,
	})

	_, err := parseContainer(a)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("error = %v, want wrapped ErrInvalidArchive", err)
	}
}

func TestParseContainer_EmptyRootfiles(t *testing.T) {
	emptyContainer := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles/>
</container>`

	a := buildTestArchive(t, map[string]string{
		"META-INF/container.xml": emptyContainer,
	})

	_, err := parseContainer(a)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("error = %v, want wrapped ErrInvalidArchive", err)
	}
}

func TestParseContainer_EmptyFullPath(t *testing.T) {
	badContainer := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	a := buildTestArchive(t, map[string]string{
		"META-INF/container.xml": badContainer,
	})

	_, err := parseContainer(a)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("error = %v, want wrapped ErrInvalidArchive", err)
	}
}

func TestParseContainer_PrefersRootfileByMediaType(t *testing.T) {
	multiRootContainer := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="" media-type="application/oebps-package+xml"/>
    <rootfile full-path="OPS/preview.opf" media-type="application/x-preview+xml"/>
    <rootfile full-path="OPS/book.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	a := buildTestArchive(t, map[string]string{
		"META-INF/container.xml": multiRootContainer,
	})

	opfPath, err := parseContainer(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opfPath != "OPS/book.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OPS/book.opf")
	}
}

func TestParseContainer_FallbackToFirstNonEmptyRootfile(t *testing.T) {
	multiRootContainer := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="" media-type="application/x-other+xml"/>
    <rootfile full-path="OPS/first-non-empty.opf" media-type="application/x-other+xml"/>
    <rootfile full-path="OPS/second-non-empty.opf" media-type="application/x-another+xml"/>
  </rootfiles>
</container>`

	a := buildTestArchive(t, map[string]string{
		"META-INF/container.xml": multiRootContainer,
	})

	opfPath, err := parseContainer(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opfPath != "OPS/first-non-empty.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OPS/first-non-empty.opf")
	}
}
