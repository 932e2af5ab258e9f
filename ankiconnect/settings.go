package ankiconnect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the user's card-export configuration: which deck and model
// to add notes to and how book fields map onto model fields.
type Settings struct {
	// URL overrides the AnkiConnect endpoint. Empty means DefaultURL.
	URL string `json:"url,omitempty"`

	// Deck is the target deck name.
	Deck string `json:"deck"`

	// Model is the note model name.
	Model string `json:"model"`

	// SentenceField is the model field receiving the sentence text.
	SentenceField string `json:"sentenceField"`

	// AudioField is the model field receiving the [sound:...] tag.
	AudioField string `json:"audioField,omitempty"`

	// SourceField is the model field receiving "Title - Author", when set.
	SourceField string `json:"sourceField,omitempty"`

	// Tags are added to every exported note.
	Tags []string `json:"tags,omitempty"`
}

// LoadSettings reads settings from the JSON file at path. A missing file
// yields zero-value settings, not an error.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("ankiconnect: read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("ankiconnect: parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes settings as indented JSON to path, creating parent
// directories as needed.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ankiconnect: create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("ankiconnect: encode settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("ankiconnect: write settings: %w", err)
	}
	return nil
}
