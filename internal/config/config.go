// Package config loads compositor settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a settings file that is neither TOML nor
// YAML.
var ErrUnknownFormat = errors.New("config: unknown settings format")

// maxSettingsSize bounds the settings file read into memory.
const maxSettingsSize = 1 << 20

// Settings configures a compositor run.
type Settings struct {
	Width   uint32 `toml:"width" yaml:"width"`
	Height  uint32 `toml:"height" yaml:"height"`
	Msaa    Msaa   `toml:"msaa" yaml:"msaa"`
	Blur    bool   `toml:"blur" yaml:"blur"`
	Workers int    `toml:"workers" yaml:"workers"`
	Frames  int    `toml:"frames" yaml:"frames"`
	Output  string `toml:"output" yaml:"output"`
	GPU     bool   `toml:"gpu" yaml:"gpu"`
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		Width:  1280,
		Height: 720,
		Msaa:   MsaaX4,
		Frames: 1,
		Output: "compose.png",
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("config: resolution %dx%d must be at least 1x1", s.Width, s.Height)
	}
	if !s.Msaa.valid() {
		return fmt.Errorf("config: invalid msaa %d", int(s.Msaa))
	}
	if s.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", s.Workers)
	}
	if s.Frames < 1 {
		return fmt.Errorf("config: frames must be at least 1, got %d", s.Frames)
	}
	if s.Output == "" {
		return errors.New("config: output path is empty")
	}
	return nil
}

// Load reads settings from path over Default. The format is chosen by the
// file extension: .toml, .yaml or .yml.
func Load(path string) (Settings, error) {
	s := Default()

	info, err := os.Stat(path)
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxSettingsSize {
		return s, fmt.Errorf("config: %s is too large (%d bytes)", path, info.Size())
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return s, fmt.Errorf("config: decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return s, s.Validate()
}

// Write stores s at path in the format its extension names.
func Write(path string, s Settings) error {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
