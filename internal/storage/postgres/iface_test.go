package postgres_test

import (
	"github.com/skyward/deconflict/internal/storage"
	"github.com/skyward/deconflict/internal/storage/postgres"
)

// Compile-time interface check
var _ storage.Backend = (*postgres.Backend)(nil)
