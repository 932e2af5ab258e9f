// Package dictionary looks up word definitions via the free dictionaryapi.dev
// service, for inline word lookup while reading.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the dictionaryapi.dev endpoint prefix. The language code
// and word are appended per request.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries"

// ErrNotFound is returned when the dictionary has no entry for a word.
var ErrNotFound = errors.New("dictionary: word not found")

// Client queries a dictionaryapi.dev-compatible endpoint.
type Client struct {
	// BaseURL overrides the endpoint prefix. Defaults to DefaultBaseURL.
	BaseURL string

	// Language is the dictionary language code. Defaults to "en".
	Language string

	// HTTPClient is the underlying HTTP client. Defaults to a client with a
	// 10 second timeout when nil.
	HTTPClient *http.Client
}

// Entry is one dictionary entry for a word.
type Entry struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions under a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is one sense of a word, with an optional usage example.
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// Lookup returns the dictionary entries for word. Returns ErrNotFound when
// the service has no entry.
func (c *Client) Lookup(ctx context.Context, word string) ([]Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("dictionary: empty word")
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	lang := c.Language
	if lang == "" {
		lang = "en"
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	endpoint := fmt.Sprintf("%s/%s/%s", base, lang, url.PathEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dictionary: lookup %q: %w", word, err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary: lookup %q: %w", word, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("dictionary: %q: %w", word, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary: lookup %q: unexpected status %s", word, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dictionary: read response for %q: %w", word, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("dictionary: decode response for %q: %w", word, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dictionary: %q: %w", word, ErrNotFound)
	}
	return entries, nil
}

// ShortDefinition returns the first definition of the first entry, or ""
// when entries is empty.
func ShortDefinition(entries []Entry) string {
	for _, e := range entries {
		for _, m := range e.Meanings {
			for _, d := range m.Definitions {
				if d.Definition != "" {
					return d.Definition
				}
			}
		}
	}
	return ""
}
