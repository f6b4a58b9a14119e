package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfigPath overrides the settings file location.
const EnvConfigPath = "DWMLOCK_CONFIG"

// appDirName is the per-user directory under the OS config root.
const appDirName = "dwmlock"

// Paths holds every file location dwmlock uses.
type Paths struct {
	ConfigDir    string
	ConfigFile   string
	DataDir      string
	LogFile      string
	ErrorLogFile string
	JournalFile  string
	KeyFile      string
	RegistryFile string
}

// DefaultPaths resolves locations under os.UserConfigDir, honoring
// DWMLOCK_CONFIG for the settings file.
func DefaultPaths() (Paths, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("locate user config dir: %w", err)
	}
	p := PathsUnder(filepath.Join(root, appDirName))
	if override := os.Getenv(EnvConfigPath); override != "" {
		p.ConfigFile = override
	}
	return p, nil
}

// PathsUnder lays out all files beneath dir.
func PathsUnder(dir string) Paths {
	data := filepath.Join(dir, "data")
	return Paths{
		ConfigDir:    dir,
		ConfigFile:   filepath.Join(dir, "settings.toml"),
		DataDir:      data,
		LogFile:      filepath.Join(data, "dwmlock.log"),
		ErrorLogFile: filepath.Join(data, "dwmlock.error.log"),
		JournalFile:  filepath.Join(data, "journal.db"),
		KeyFile:      filepath.Join(data, ".journal.key"),
		RegistryFile: filepath.Join(data, "session.json"),
	}
}

// EnsureDirs creates the config and data directories.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
