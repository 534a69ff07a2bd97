// Package kv provides the key-value persistence the ledger and the audit log
// are stored in. It mirrors a browser's local storage: string keys, opaque
// values, synchronous reads and writes.
//
// Three backends are available: an in-memory map (tests, dry runs), a
// directory of JSON files written atomically, and a single SQLite database.
package kv

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("kv: key not found")

// Store is a synchronous key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key. It is durable when Set returns.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens the store for the named backend. path is a directory for the
// file backend, a database file for sqlite, and ignored for memory.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return OpenFile(path)
	case BackendSQLite, "sqlite3":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", backend)
	}
}

func validKey(key string) error {
	if key == "" {
		return errors.New("kv: empty key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("kv: invalid key %q", key)
	}
	return nil
}
