package gormstorage_test

import (
	"github.com/skyward/deconflict/internal/storage"
	gormstorage "github.com/skyward/deconflict/internal/storage/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*gormstorage.Backend)(nil)
