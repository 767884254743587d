package websocket_test

import (
	"github.com/skyward/deconflict/internal/storage"
	"github.com/skyward/deconflict/internal/storage/websocket"
)

// Compile-time interface check.
var _ storage.Backend = (*websocket.Backend)(nil)
