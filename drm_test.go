package readaloud

import (
	"errors"
	"testing"
)

func TestCheckDRM_NoEncryption(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"OEBPS/content.opf": `<package/>`,
	})

	fontObf, err := checkDRM(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fontObf {
		t.Error("fontObfuscation = true, want false")
	}
}

func TestCheckDRM_FairPlay(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/sinf.xml": `<sinf/>`,
	})

	_, err := checkDRM(a)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("error = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_FontObfuscationOnly(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/encryption.xml": `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/>
  </EncryptedData>
</encryption>`,
	})

	fontObf, err := checkDRM(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fontObf {
		t.Error("fontObfuscation = false, want true")
	}
}

func TestCheckDRM_AdobeADEPT(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/encryption.xml": `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes128-cbc"/>
    <KeyInfo xmlns="http://www.w3.org/2000/09/xmldsig#">
      <resource xmlns="http://ns.adobe.com/adept">urn:uuid:x</resource>
    </KeyInfo>
  </EncryptedData>
</encryption>`,
	})

	_, err := checkDRM(a)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("error = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_UnknownEncryptionIsDRM(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/encryption.xml": `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="urn:example:mystery-cipher"/>
  </EncryptedData>
</encryption>`,
	})

	_, err := checkDRM(a)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("error = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_MalformedEncryptionIsDRM(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/encryption.xml": `<encryption><EncryptedData`,
	})

	_, err := checkDRM(a)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("error = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_EmptyEncryption(t *testing.T) {
	a := buildTestArchive(t, map[string]string{
		"META-INF/encryption.xml": `<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container"/>`,
	})

	fontObf, err := checkDRM(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fontObf {
		t.Error("fontObfuscation = true, want false")
	}
}
