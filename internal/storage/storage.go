package storage

import "github.com/skyward/deconflict/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// A detection run is bracketed by BeginRun/EndRun; missions and conflicts
// recorded in between belong to that run.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	BeginRun(summary core.RunSummary) error
	EndRun(summary core.RunSummary) error

	// Recording
	AddMission(m *core.Mission) error
	RecordConflict(c core.Conflict) error
}

// Exportable is an optional interface for storage backends that produce
// a run archive file on EndRun.
type Exportable interface {
	GetExportedFilePath() string
}
