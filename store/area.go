package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var (
	ErrNotFound       = errors.New("slot not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrInvalidKey     = errors.New("invalid slot name")
)

// Area is a key-value storage area that outlives the process.
// Get returns ErrNotFound when the key has never been written.
type Area interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Close() error
}

// Open builds the Area for a configured backend. path is a directory for
// file and badger, and a database file for sqlite. It is ignored by memory.
func Open(backend, path string, logger *slog.Logger) (Area, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendFile:
		return NewFileArea(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBadger:
		return OpenBadger(BadgerConfig{Path: path, SyncWrites: true, Logger: logger})
	case BackendMemory:
		return NewMemoryArea(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
