// Package checkpoint adapts the pathstore CRUD shape into a local,
// file-based checkpoint manager: a run id names a JSON file under
// CHECKPOINT_DIR recording which file paths have already been processed,
// so a resumed run can skip them. Grounded on the original checkpoint
// utility's create/load pattern.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type record struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Processed map[string]bool `json:"processed"`
}

// Manager reads and writes checkpoint files under a base directory.
type Manager struct {
	mu  sync.Mutex
	dir string
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

func (m *Manager) pathFor(runID string) string {
	return filepath.Join(m.dir, runID+".json")
}

// Create starts (or truncates) a checkpoint for runID.
func (m *Manager) Create(runID string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	rec := &record{RunID: runID, StartedAt: time.Now(), UpdatedAt: time.Now(), Processed: map[string]bool{}}
	cp := &Checkpoint{mgr: m, rec: rec}
	if err := cp.save(); err != nil {
		return nil, err
	}
	return cp, nil
}

// Load reads an existing checkpoint, or nil if one does not exist.
func (m *Manager) Load(runID string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.pathFor(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if rec.Processed == nil {
		rec.Processed = map[string]bool{}
	}
	return &Checkpoint{mgr: m, rec: &rec}, nil
}

// List returns every known run id under the checkpoint directory.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".json" {
			ids = append(ids, name[:len(name)-len(".json")])
		}
	}
	return ids, nil
}

// Delete removes a checkpoint file.
func (m *Manager) Delete(runID string) error {
	err := os.Remove(m.pathFor(runID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Checkpoint tracks processed files for one run and persists on every
// mutation, matching the "flushed on every write" log-file convention.
type Checkpoint struct {
	mu  sync.Mutex
	mgr *Manager
	rec *record
}

// MarkProcessed records a file path as done and persists immediately.
func (c *Checkpoint) MarkProcessed(filePath string) error {
	c.mu.Lock()
	c.rec.Processed[filePath] = true
	c.rec.UpdatedAt = time.Now()
	c.mu.Unlock()
	return c.save()
}

// IsProcessed reports whether a file path was already marked in this run.
func (c *Checkpoint) IsProcessed(filePath string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.Processed[filePath]
}

func (c *Checkpoint) save() error {
	c.mu.Lock()
	data, err := json.MarshalIndent(c.rec, "", "  ")
	path := c.mgr.pathFor(c.rec.RunID)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := os.MkdirAll(c.mgr.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
