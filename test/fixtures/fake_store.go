package fixtures

import (
	"fmt"
	"sync"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// MemoryJournal is an in-memory domain.SessionJournal.
type MemoryJournal struct {
	mu       sync.Mutex
	records  []domain.SessionRecord
	BeginErr error
}

// NewMemoryJournal creates an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Begin stores the record and assigns it an ID starting at 1.
func (j *MemoryJournal) Begin(record domain.SessionRecord) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.BeginErr != nil {
		return 0, j.BeginErr
	}
	record.ID = int64(len(j.records) + 1)
	j.records = append(j.records, record)
	return record.ID, nil
}

// Finish replaces the stored record with the same ID.
func (j *MemoryJournal) Finish(record domain.SessionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.records {
		if j.records[i].ID == record.ID {
			j.records[i] = record
			return nil
		}
	}
	return fmt.Errorf("session %d not found", record.ID)
}

// Recent returns up to limit records, newest first.
func (j *MemoryJournal) Recent(limit int) ([]domain.SessionRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.SessionRecord
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}

// Close is a no-op.
func (j *MemoryJournal) Close() error { return nil }

// MemoryRegistry is an in-memory domain.SessionRegistry.
type MemoryRegistry struct {
	mu    sync.Mutex
	entry *domain.RegistryEntry
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{}
}

// Register records the entry.
func (r *MemoryRegistry) Register(entry domain.RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry = &entry
	return nil
}

// Active returns the registered entry or nil.
func (r *MemoryRegistry) Active() (*domain.RegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entry == nil {
		return nil, nil
	}
	e := *r.entry
	return &e, nil
}

// Clear removes the entry.
func (r *MemoryRegistry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry = nil
	return nil
}

// FakeProcessManager reports a fixed set of live PIDs.
type FakeProcessManager struct {
	PID  int
	Live map[int]bool
}

// IsRunning reports whether pid is in Live.
func (p *FakeProcessManager) IsRunning(pid int) bool { return p.Live[pid] }

// GetCurrentPID returns PID.
func (p *FakeProcessManager) GetCurrentPID() int { return p.PID }

var (
	_ domain.SessionJournal  = (*MemoryJournal)(nil)
	_ domain.SessionRegistry = (*MemoryRegistry)(nil)
	_ domain.ProcessManager  = (*FakeProcessManager)(nil)
)
