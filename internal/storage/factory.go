package storage

import (
	"fmt"

	"github.com/skyward/deconflict/internal/config"
	"github.com/skyward/deconflict/internal/database"
	"github.com/skyward/deconflict/internal/logging"
	"github.com/skyward/deconflict/internal/storage/memory"
	"github.com/skyward/deconflict/internal/storage/postgres"
	"github.com/skyward/deconflict/internal/storage/sqlite"
	"github.com/skyward/deconflict/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, fallback, err := database.Connect(logManager.Logger())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if fallback {
			logManager.Logger().Warn("Postgres unavailable, run data is held in a local in-memory database")
		}
		return postgres.New(db, logManager), nil
	case "sqlite":
		b, err := sqlite.New(sqlite.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpDir:      cfg.SQLite.DumpDir,
		}, logManager)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.Websocket.URL,
			Secret: cfg.Websocket.Secret,
		}, logManager), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
