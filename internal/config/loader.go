package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// Load reads and resolves the settings file at path.
// A missing file yields the defaults. Out-of-range fields fall back one by
// one; only an unreadable or undecodable file is an error.
func Load(path string) (domain.Settings, error) {
	s, err := loadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return s, err
}

// loadFile is Load without the missing-file fallback.
func loadFile(path string) (domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read config: %w", err)
	}

	s, err := decode(path, data)
	if err != nil {
		return domain.Settings{}, err
	}
	return Resolve(s), nil
}

// LoadOrDefault is Load that never fails: problems are logged and the
// defaults returned.
func LoadOrDefault(path string, logger *zap.Logger) domain.Settings {
	s, err := Load(path)
	if err != nil {
		logger.Warn("failed to load settings, using defaults",
			zap.String("path", path),
			zap.Error(err))
		return Defaults()
	}
	return s
}

// decode parses data by the file extension on top of the defaults, so keys
// missing from the file keep their default values.
func decode(path string, data []byte) (domain.Settings, error) {
	s := Defaults()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return domain.Settings{}, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &s); err != nil {
			return domain.Settings{}, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return s, nil
}

// Save writes settings to path atomically (temp file + rename).
// The format follows the extension; TOML is the default.
func Save(path string, s domain.Settings) error {
	data, err := encode(path, s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func encode(path string, s domain.Settings) ([]byte, error) {
	// an explicit empty list must survive the round trip
	if s.DisableMonitors == nil {
		s.DisableMonitors = []string{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(s)
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
