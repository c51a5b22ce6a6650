// Package settings persists the small local customization surface: the
// hide-history flag read at reconciler initialization plus a couple of
// display preferences. Stored as a JSON file so a missing file just means
// defaults.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Settings struct {
	HideChatHistory bool          `json:"hide_chat_history"`
	Customization   Customization `json:"customization"`
}

type Customization struct {
	DisplayTags                 bool `json:"display_tags"`
	ShowContinuationSuggestions bool `json:"show_continuation_suggestions"`
}

func Default() Settings {
	return Settings{
		Customization: Customization{
			DisplayTags:                 true,
			ShowContinuationSuggestions: true,
		},
	}
}

// File reads and writes settings at a fixed path.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath is ~/.synapse/settings.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("settings: resolve home: %w", err)
	}
	return filepath.Join(home, ".synapse", "settings.json"), nil
}

// Load returns defaults when the file does not exist yet.
func (f *File) Load() (Settings, error) {
	bs, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("settings: read %s: %w", f.path, err)
	}

	settings := Default()
	if err := json.Unmarshal(bs, &settings); err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", f.path, err)
	}

	return settings, nil
}

// Save writes atomically via a temp file rename.
func (f *File) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}

	bs, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("settings: rename: %w", err)
	}

	return nil
}
