// Package postgres implements the storage.Backend interface using
// GORM/PostgreSQL. It wraps the GORM backend via composition; the only
// Postgres-specific concern is the connection itself.
package postgres

import (
	"gorm.io/gorm"

	"github.com/skyward/deconflict/internal/logging"
	gormstorage "github.com/skyward/deconflict/internal/storage/gorm"
)

// Backend wraps the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
}

// New creates a new Postgres storage backend on an established connection.
func New(db *gorm.DB, logManager *logging.SlogManager) *Backend {
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
		}),
	}
}
