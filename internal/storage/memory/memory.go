package memory

import (
	"fmt"
	"sync"

	"github.com/skyward/deconflict/internal/config"
	"github.com/skyward/deconflict/pkg/core"
)

// Backend stores detection run data in memory and exports to JSON on EndRun.
type Backend struct {
	cfg config.MemoryConfig

	run       *core.RunSummary
	missions  []*core.Mission
	conflicts []core.Conflict

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// BeginRun begins recording a new detection run, resetting all collections.
func (b *Backend) BeginRun(summary core.RunSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.run = &summary
	b.missions = nil
	b.conflicts = nil

	return nil
}

// EndRun finalizes the run and exports it to a JSON file.
func (b *Backend) EndRun(summary core.RunSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return fmt.Errorf("no run in progress")
	}
	b.run = &summary

	return b.exportJSON()
}

// AddMission records a mission that participates in the current run.
func (b *Backend) AddMission(m *core.Mission) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.missions = append(b.missions, m)
	return nil
}

// RecordConflict records a detected conflict.
func (b *Backend) RecordConflict(c core.Conflict) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conflicts = append(b.conflicts, c)
	return nil
}

// MissionCount returns the number of missions recorded so far.
func (b *Backend) MissionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.missions)
}

// Conflicts returns a copy of the conflicts recorded so far.
func (b *Backend) Conflicts() []core.Conflict {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Conflict, len(b.conflicts))
	copy(out, b.conflicts)
	return out
}

// GetExportedFilePath returns the path of the last exported run archive.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
