package memory_test

import (
	"github.com/skyward/deconflict/internal/storage"
	"github.com/skyward/deconflict/internal/storage/memory"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*memory.Backend)(nil)

// Verify Backend implements storage.Exportable interface
var _ storage.Exportable = (*memory.Backend)(nil)
