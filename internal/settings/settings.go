package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFile is the settings file name used by the report CLI.
const DefaultFile = "user_settings.json"

// Settings holds the paths a user chose on a previous run.
type Settings struct {
	LastPCHPath      string `json:"last_pch_path"`
	LastTemplatePath string `json:"last_template_path"`
	RememberPaths    bool   `json:"remember_paths"`
}

// Load reads settings from path. A missing file yields zero-value settings.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path via a temp file and rename.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Remember returns a copy of s recording the given paths.
func (s Settings) Remember(pchPath, templatePath string) Settings {
	s.LastPCHPath = pchPath
	s.LastTemplatePath = templatePath
	s.RememberPaths = true
	return s
}
