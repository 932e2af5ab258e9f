// Package ankiconnect is a minimal client for the AnkiConnect add-on HTTP
// API, used to export narrated sentences as flashcards with embedded audio.
package ankiconnect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zeebo/blake3"
)

// DefaultURL is the address AnkiConnect listens on by default.
const DefaultURL = "http://127.0.0.1:8765"

// apiVersion is the AnkiConnect protocol version this client speaks.
const apiVersion = 6

// Client talks to a running AnkiConnect instance.
type Client struct {
	// URL is the AnkiConnect endpoint. Defaults to DefaultURL when empty.
	URL string

	// HTTPClient is the underlying HTTP client. Defaults to a client with a
	// 10 second timeout when nil.
	HTTPClient *http.Client
}

// Note describes one flashcard to add.
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags,omitempty"`
}

// request is the envelope AnkiConnect expects for every call.
type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

// response is the envelope AnkiConnect returns for every call.
type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke performs one AnkiConnect call and decodes the result into out
// (skipped when out is nil).
func (c *Client) invoke(ctx context.Context, action string, params, out any) error {
	url := c.URL
	if url == "" {
		url = DefaultURL
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	body, err := json.Marshal(request{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return fmt.Errorf("ankiconnect: encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ankiconnect: %s: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("ankiconnect: %s: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ankiconnect: read %s response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ankiconnect: %s: unexpected status %s", action, resp.Status)
	}

	var env response
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("ankiconnect: decode %s response: %w", action, err)
	}
	if env.Error != nil && *env.Error != "" {
		return fmt.Errorf("ankiconnect: %s: %s", action, *env.Error)
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("ankiconnect: decode %s result: %w", action, err)
		}
	}
	return nil
}

// Version returns the AnkiConnect API version, and doubles as a liveness
// probe for the desktop Anki process.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.invoke(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// DeckNames returns the names of all decks.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelNames returns the names of all note models.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "modelNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ModelFieldNames returns the field names of the given note model.
func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	params := map[string]string{"modelName": model}
	var names []string
	if err := c.invoke(ctx, "modelFieldNames", params, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// AddNote adds one note and returns its id.
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	params := map[string]Note{"note": note}
	var id int64
	if err := c.invoke(ctx, "addNote", params, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// StoreMediaFile uploads data into Anki's media collection under filename,
// replacing any existing file of the same name.
func (c *Client) StoreMediaFile(ctx context.Context, filename string, data []byte) error {
	params := map[string]any{
		"filename":       filename,
		"data":           base64.StdEncoding.EncodeToString(data),
		"deleteExisting": true,
	}
	return c.invoke(ctx, "storeMediaFile", params, nil)
}

// ClipFileName derives a stable media filename for an audio clip from its
// content hash, so re-exporting the same sentence never duplicates media.
func ClipFileName(data []byte) string {
	sum := blake3.Sum256(data)
	return "readaloud-" + hex.EncodeToString(sum[:8]) + ".wav"
}

// SoundTag wraps a media filename in the [sound:...] markup Anki renders as
// an audio player.
func SoundTag(filename string) string {
	return "[sound:" + filename + "]"
}
