package infra

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eliteGoblin/focusd/dwmlock/internal/config"
	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

const (
	keySize       = 32 // 256-bit SQLCipher key
	keyFileHeader = "dwmlock-journal-key v1"
)

// ErrOrphanedJournal means the journal database exists but its key file is
// gone. A fresh key could never open it, so none is generated.
var ErrOrphanedJournal = errors.New("journal exists without its key")

// JournalKeyFile implements domain.KeyProvider for the session journal.
// The key lives beside the journal in the data directory, hex-encoded
// under a version header, in the same form the SQLCipher DSN takes it.
type JournalKeyFile struct {
	path        string
	journalPath string
}

// NewJournalKeyFile locates the key for the journal laid out by paths.
func NewJournalKeyFile(paths config.Paths) *JournalKeyFile {
	return &JournalKeyFile{path: paths.KeyFile, journalPath: paths.JournalFile}
}

// Path returns the key file location.
func (k *JournalKeyFile) Path() string {
	return k.path
}

// GetKey reads and checks the stored key.
func (k *JournalKeyFile) GetKey() ([]byte, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("read journal key: %w", err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() || sc.Text() != keyFileHeader {
		return nil, fmt.Errorf("journal key %s: missing %q header", k.path, keyFileHeader)
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("journal key %s: no key line", k.path)
	}
	key, err := hex.DecodeString(sc.Text())
	if err != nil {
		return nil, fmt.Errorf("journal key %s: %w", k.path, err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), keySize)
	}
	return key, nil
}

// StoreKey writes the key readable by the current user only. The file is
// replaced atomically so a crash never leaves half a key behind.
func (k *JournalKeyFile) StoreKey(key []byte) error {
	if len(key) != keySize {
		return fmt.Errorf("invalid key size: got %d, want %d", len(key), keySize)
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	data := fmt.Sprintf("%s\n%s\n", keyFileHeader, hex.EncodeToString(key))
	tmp := fmt.Sprintf("%s.%d.tmp", k.path, os.Getpid())
	if err := os.WriteFile(tmp, []byte(data), 0600); err != nil {
		return fmt.Errorf("write journal key: %w", err)
	}
	if err := os.Rename(tmp, k.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write journal key: %w", err)
	}
	return nil
}

// KeyExists reports whether a key file is present.
func (k *JournalKeyFile) KeyExists() bool {
	_, err := os.Stat(k.path)
	return err == nil
}

// Ensure returns the journal key, creating one on first use. It refuses to
// create a key for a journal that already exists.
func (k *JournalKeyFile) Ensure() ([]byte, error) {
	if k.KeyExists() {
		return k.GetKey()
	}
	if _, err := os.Stat(k.journalPath); err == nil {
		return nil, fmt.Errorf("%w: move %s aside to start a new history", ErrOrphanedJournal, k.journalPath)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := k.StoreKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateKey creates a new random 256-bit key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate journal key: %w", err)
	}
	return key, nil
}

var _ domain.KeyProvider = (*JournalKeyFile)(nil)
