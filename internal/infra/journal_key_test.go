package infra

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/dwmlock/internal/config"
)

func TestJournalKeyFile(t *testing.T) {
	tests := []struct {
		name   string
		testFn func(t *testing.T, keys *JournalKeyFile, paths config.Paths)
	}{
		{
			name: "located beside the journal",
			testFn: func(t *testing.T, keys *JournalKeyFile, paths config.Paths) {
				assert.Equal(t, paths.KeyFile, keys.Path())
				assert.False(t, keys.KeyExists())
			},
		},
		{
			name: "stored as header and hex with owner-only permissions",
			testFn: func(t *testing.T, keys *JournalKeyFile, paths config.Paths) {
				key, err := GenerateKey()
				require.NoError(t, err)
				require.NoError(t, keys.StoreKey(key))

				data, err := os.ReadFile(paths.KeyFile)
				require.NoError(t, err)
				lines := strings.Split(strings.TrimSpace(string(data)), "\n")
				require.Len(t, lines, 2)
				assert.Equal(t, keyFileHeader, lines[0])
				assert.Len(t, lines[1], keySize*2)

				info, err := os.Stat(paths.KeyFile)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

				got, err := keys.GetKey()
				require.NoError(t, err)
				assert.Equal(t, key, got)
			},
		},
		{
			name: "GetKey without a file",
			testFn: func(t *testing.T, keys *JournalKeyFile, paths config.Paths) {
				_, err := keys.GetKey()
				assert.ErrorContains(t, err, "read journal key")
			},
		},
		{
			name: "GetKey rejects a file without the header",
			testFn: func(t *testing.T, keys *JournalKeyFile, paths config.Paths) {
				require.NoError(t, os.MkdirAll(paths.DataDir, 0700))
				require.NoError(t, os.WriteFile(paths.KeyFile, []byte("c2hvcnQ=\n"), 0600))

				_, err := keys.GetKey()
				assert.ErrorContains(t, err, "header")
			},
		},
		{
			name: "GetKey rejects a truncated key",
			testFn: func(t *testing.T, keys *JournalKeyFile, paths config.Paths) {
				require.NoError(t, os.MkdirAll(paths.DataDir, 0700))
				require.NoError(t, os.WriteFile(paths.KeyFile, []byte(keyFileHeader+"\nabcd\n"), 0600))

				_, err := keys.GetKey()
				assert.ErrorContains(t, err, "invalid key size")
			},
		},
		{
			name: "StoreKey rejects wrong key size",
			testFn: func(t *testing.T, keys *JournalKeyFile, paths config.Paths) {
				assert.ErrorContains(t, keys.StoreKey([]byte("tooshort")), "invalid key size")
				assert.False(t, keys.KeyExists())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := config.PathsUnder(t.TempDir())
			tt.testFn(t, NewJournalKeyFile(paths), paths)
		})
	}
}

func TestGenerateKey(t *testing.T) {
	keys := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateKey()
		require.NoError(t, err)
		assert.Len(t, key, keySize)
		assert.False(t, keys[string(key)], "duplicate key generated")
		keys[string(key)] = true
	}
}

func TestJournalKeyFile_Ensure(t *testing.T) {
	t.Run("generates once and reuses", func(t *testing.T) {
		keys := NewJournalKeyFile(config.PathsUnder(t.TempDir()))

		first, err := keys.Ensure()
		require.NoError(t, err)
		assert.Len(t, first, keySize)

		second, err := keys.Ensure()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("opens the journal it created", func(t *testing.T) {
		paths := config.PathsUnder(t.TempDir())
		key, err := NewJournalKeyFile(paths).Ensure()
		require.NoError(t, err)

		j, err := NewEncryptedJournal(paths.JournalFile, key)
		require.NoError(t, err)
		require.NoError(t, j.Close())

		again, err := NewJournalKeyFile(paths).Ensure()
		require.NoError(t, err)
		j, err = NewEncryptedJournal(paths.JournalFile, again)
		require.NoError(t, err)
		require.NoError(t, j.Close())
	})

	t.Run("refuses a new key for an existing journal", func(t *testing.T) {
		paths := config.PathsUnder(t.TempDir())
		keys := NewJournalKeyFile(paths)
		_, err := keys.Ensure()
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(paths.JournalFile, []byte("encrypted"), 0600))
		require.NoError(t, os.Remove(paths.KeyFile))

		_, err = keys.Ensure()
		assert.ErrorIs(t, err, ErrOrphanedJournal)
		assert.False(t, keys.KeyExists())
	})
}
