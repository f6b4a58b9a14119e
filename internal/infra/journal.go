package infra

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

// EncryptedJournal implements domain.SessionJournal and domain.SessionRegistry
// using a SQLCipher encrypted SQLite database.
type EncryptedJournal struct {
	db     *sql.DB
	dbPath string
}

// NewEncryptedJournal opens (or creates) the encrypted journal at dbPath.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func NewEncryptedJournal(dbPath string, key []byte) (*EncryptedJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	keyHex := hex.EncodeToString(key)
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted database: %w", err)
	}

	// A wrong key only surfaces on the first real query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to encrypted database: %w", err)
	}

	j := &EncryptedJournal{db: db, dbPath: dbPath}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

func (j *EncryptedJournal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pid INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT '',
		app_version TEXT NOT NULL DEFAULT '',
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		tamper_events INTEGER NOT NULL DEFAULT 0,
		swallowed_chords INTEGER NOT NULL DEFAULT 0,
		game_score INTEGER NOT NULL DEFAULT 0,
		game_misses INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS active_session (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		pid INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		app_version TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := j.db.Exec(schema)
	return err
}

// --- domain.SessionJournal implementation ---

// Begin inserts a new session row and returns its ID.
func (j *EncryptedJournal) Begin(record domain.SessionRecord) (int64, error) {
	res, err := j.db.Exec(`
		INSERT INTO sessions (pid, started_at, app_version)
		VALUES (?, ?, ?)`,
		record.PID, toMillis(record.StartedAt), record.AppVersion,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Finish stores the end time, outcome and counters of a session.
func (j *EncryptedJournal) Finish(record domain.SessionRecord) error {
	result, err := j.db.Exec(`
		UPDATE sessions SET ended_at = ?, outcome = ?, failed_attempts = ?,
			tamper_events = ?, swallowed_chords = ?, game_score = ?, game_misses = ?
		WHERE id = ?`,
		toMillis(record.EndedAt), string(record.Outcome), record.FailedAttempts,
		record.TamperEvents, record.SwallowedChords, record.GameScore, record.GameMisses,
		record.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session %d not found", record.ID)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (j *EncryptedJournal) Recent(limit int) ([]domain.SessionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.db.Query(`
		SELECT id, pid, started_at, ended_at, outcome, app_version,
			failed_attempts, tamper_events, swallowed_chords, game_score, game_misses
		FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SessionRecord
	for rows.Next() {
		var (
			r                domain.SessionRecord
			started, ended   int64
			outcome, version string
		)
		if err := rows.Scan(&r.ID, &r.PID, &started, &ended, &outcome, &version,
			&r.FailedAttempts, &r.TamperEvents, &r.SwallowedChords, &r.GameScore, &r.GameMisses); err != nil {
			return nil, err
		}
		r.StartedAt = fromMillis(started)
		r.EndedAt = fromMillis(ended)
		r.Outcome = domain.SessionOutcome(outcome)
		r.AppVersion = version
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- domain.SessionRegistry implementation ---

// Register records the running lock session, replacing any previous one.
func (j *EncryptedJournal) Register(entry domain.RegistryEntry) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO active_session (slot, pid, started_at, app_version)
		VALUES (1, ?, ?, ?)`,
		entry.PID, entry.StartedAt, entry.AppVersion,
	)
	return err
}

// Active returns the registered session or nil.
func (j *EncryptedJournal) Active() (*domain.RegistryEntry, error) {
	var entry domain.RegistryEntry
	err := j.db.QueryRow(`SELECT pid, started_at, app_version FROM active_session WHERE slot = 1`).
		Scan(&entry.PID, &entry.StartedAt, &entry.AppVersion)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Clear removes the registration.
func (j *EncryptedJournal) Clear() error {
	_, err := j.db.Exec(`DELETE FROM active_session`)
	return err
}

// Path returns the database file path.
func (j *EncryptedJournal) Path() string {
	return j.dbPath
}

// Close releases the database connection.
func (j *EncryptedJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Ensure EncryptedJournal implements both interfaces.
var _ domain.SessionJournal = (*EncryptedJournal)(nil)
var _ domain.SessionRegistry = (*EncryptedJournal)(nil)
