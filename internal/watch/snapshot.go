// Package watch implements the polling engine that detects changes in a
// student's portal data and reports them as category deltas.
package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"studentdesk/internal/diff"
	"studentdesk/internal/domain"
)

// Snapshot holds one fetched state of all watched categories.
type Snapshot struct {
	Homework []domain.Homework     `json:"homework"`
	Schedule []domain.ScheduleItem `json:"schedule"`
	Grades   []domain.Grade        `json:"grades"`
	TakenAt  time.Time             `json:"taken_at"`
}

// Deltas groups the per-category diffs produced by one poll cycle.
type Deltas struct {
	Homework diff.Delta[domain.Homework]
	Schedule diff.Delta[domain.ScheduleItem]
	Grades   diff.Delta[domain.Grade]
}

// Empty reports whether no category changed.
func (d Deltas) Empty() bool {
	return d.Homework.Empty() && d.Schedule.Empty() && d.Grades.Empty()
}

// Store persists snapshots between poll cycles.
type Store interface {
	// Load returns the stored snapshot, or false when none exists.
	Load() (Snapshot, bool, error)
	// Save overwrites the stored snapshot.
	Save(Snapshot) error
	// Clear removes the stored snapshot.
	Clear() error
}

// MemoryStore keeps the snapshot in memory only.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot Snapshot
	set      bool
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.set, nil
}

func (s *MemoryStore) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{}
	s.set = false
	return nil
}

// FileStore persists the snapshot as JSON on disk so a restarted watcher
// diffs against the last state it saw instead of re-seeding.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SnapshotPath returns the per-student snapshot file inside stateDir.
func SnapshotPath(stateDir string, studentID int) string {
	return filepath.Join(stateDir, fmt.Sprintf("snapshot_%d.json", studentID))
}

func (s *FileStore) Load() (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt snapshot is treated as absent; the next poll re-seeds.
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *FileStore) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
