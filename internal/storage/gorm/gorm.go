// Package gormstorage implements the storage.Backend interface on top of
// GORM with internal queues and a background DB writer goroutine. It is
// database-agnostic; the SQLite and Postgres backends wrap it with a
// concrete connection.
package gormstorage

import (
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/skyward/deconflict/internal/logging"
	"github.com/skyward/deconflict/internal/model"
	"github.com/skyward/deconflict/internal/queue"
	"github.com/skyward/deconflict/pkg/core"
)

// flushInterval is how often the writer goroutine drains the queues.
const flushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Missions  *queue.Queue[model.MissionRecord]
	Conflicts *queue.Queue[model.ConflictRecord]
}

func newQueues() *queues {
	return &queues{
		Missions:  queue.New[model.MissionRecord](),
		Conflicts: queue.New[model.ConflictRecord](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// With no DB injected it runs in queue-only mode and never touches a database.
type Backend struct {
	deps     Dependencies
	queues   *queues
	runID    atomic.Uint64
	stopChan chan struct{}
	dbReady  bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps: deps,
	}
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB != nil {
		if err := b.setupDB(); err != nil {
			return fmt.Errorf("failed to setup DB: %w", err)
		}
		b.dbReady = true
	}

	b.startDBWriter()
	return nil
}

// setupDB migrates the run, mission and conflict tables.
func (b *Backend) setupDB() error {
	log := b.deps.LogManager.Logger()

	log.Info("Migrating schema")
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Database setup complete")
	return nil
}

// Close stops the DB writer goroutine after a final flush.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	b.flushAll()
	return nil
}

// BeginRun inserts the run row synchronously so queued records can be
// stamped with its ID.
func (b *Backend) BeginRun(summary core.RunSummary) error {
	if b.deps.DB == nil {
		return nil
	}

	run := model.RunFromSummary(summary)
	if err := b.deps.DB.Create(&run).Error; err != nil {
		return fmt.Errorf("failed to insert detection run: %w", err)
	}

	b.runID.Store(uint64(run.ID))
	return nil
}

// EndRun flushes outstanding records and updates the run row with final counts.
func (b *Backend) EndRun(summary core.RunSummary) error {
	b.flushAll()

	if b.deps.DB == nil {
		return nil
	}

	runID := uint(b.runID.Load())
	updates := model.DetectionRun{
		MissionCount:  summary.MissionCount,
		PairCount:     summary.PairCount,
		ConflictCount: summary.ConflictCount,
		DurationMs:    float32(summary.Duration.Seconds() * 1000),
	}
	if err := b.deps.DB.Model(&model.DetectionRun{}).Where("id = ?", runID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update detection run: %w", err)
	}
	return nil
}

// AddMission converts a core mission to GORM and pushes it to the write queue.
func (b *Backend) AddMission(m *core.Mission) error {
	record, err := model.MissionFromCore(m)
	if err != nil {
		return err
	}
	b.queues.Missions.Push(record)
	return nil
}

// RecordConflict converts a core conflict to GORM and pushes it to the write queue.
func (b *Backend) RecordConflict(c core.Conflict) error {
	b.queues.Conflicts.Push(model.ConflictFromCore(c))
	return nil
}

// SetRunID sets the current run ID for the DB writer (used by CLI tools).
func (b *Backend) SetRunID(id uint) {
	b.runID.Store(uint64(id))
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *logging.SlogManager, prepare func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log.Logger().Error("DB writer failed to insert batch", "table", name, "error", err)
		tx.Rollback()
		q.Requeue(items...)
		return
	}

	tx.Commit()
}

// flushAll drains both queues into the database, stamping the current run ID.
func (b *Backend) flushAll() {
	if !b.dbReady {
		return
	}

	runID := uint(b.runID.Load())

	stampMissions := func(items []model.MissionRecord) {
		for i := range items {
			items[i].RunID = runID
		}
	}
	stampConflicts := func(items []model.ConflictRecord) {
		for i := range items {
			items[i].RunID = runID
		}
	}

	writeQueue(b.deps.DB, b.queues.Missions, "mission_records", b.deps.LogManager, stampMissions)
	writeQueue(b.deps.DB, b.queues.Conflicts, "conflict_records", b.deps.LogManager, stampConflicts)
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		ticker := time.NewTicker(flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				b.flushAll()
			}
		}
	}()
}
