package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const foxResponse = `[
  {
    "word": "fox",
    "phonetic": "/fɒks/",
    "meanings": [
      {
        "partOfSpeech": "noun",
        "definitions": [
          {"definition": "A red-furred carnivorous mammal.", "example": "The fox ran."}
        ]
      },
      {
        "partOfSpeech": "verb",
        "definitions": [
          {"definition": "To trick or outwit."}
        ]
      }
    ]
  }
]`

func dictStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/en/") {
			http.NotFound(w, r)
			return
		}
		word := strings.TrimPrefix(r.URL.Path, "/en/")
		if word != "fox" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"title":"No Definitions Found"}`))
			return
		}
		w.Write([]byte(foxResponse))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Lookup(t *testing.T) {
	srv := dictStub(t)
	c := &Client{BaseURL: srv.URL}

	entries, err := c.Lookup(context.Background(), "fox")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	e := entries[0]
	if e.Word != "fox" || e.Phonetic != "/fɒks/" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Meanings) != 2 || e.Meanings[0].PartOfSpeech != "noun" {
		t.Errorf("meanings = %+v", e.Meanings)
	}
	if e.Meanings[0].Definitions[0].Example != "The fox ran." {
		t.Errorf("example = %q", e.Meanings[0].Definitions[0].Example)
	}
}

func TestClient_Lookup_NotFound(t *testing.T) {
	srv := dictStub(t)
	c := &Client{BaseURL: srv.URL}

	_, err := c.Lookup(context.Background(), "zzzzz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want wrapped ErrNotFound", err)
	}
}

func TestClient_Lookup_EmptyWord(t *testing.T) {
	c := &Client{}
	if _, err := c.Lookup(context.Background(), "  "); err == nil {
		t.Error("expected error for empty word")
	}
}

func TestShortDefinition(t *testing.T) {
	entries := []Entry{{
		Word: "fox",
		Meanings: []Meaning{
			{PartOfSpeech: "noun", Definitions: []Definition{{Definition: ""}, {Definition: "A mammal."}}},
		},
	}}
	if got := ShortDefinition(entries); got != "A mammal." {
		t.Errorf("ShortDefinition = %q", got)
	}
	if got := ShortDefinition(nil); got != "" {
		t.Errorf("ShortDefinition(nil) = %q", got)
	}
}
