// Package cache stores rendered template output keyed by a content hash.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists rendered output.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores an entry under key, replacing any existing entry.
	Put(key string, e Entry) error

	// Get retrieves an entry.
	// Returns ErrNotFound if the key doesn't exist.
	Get(key string) (Entry, error)

	// List returns metadata for every entry, ordered by sequence.
	// Returns empty slice (not error) if the store is empty.
	List() ([]Info, error)

	// Delete removes an entry.
	// Returns nil if the key doesn't exist.
	Delete(key string) error

	// Purge removes every entry.
	Purge() error

	// Close releases any resources (connections, files).
	Close() error
}

// Entry is one cached render.
type Entry struct {
	// Mode is the short name of the transform that produced Output.
	Mode string

	// Output is the encoded render result.
	Output []byte

	// Created is set by the store on Put.
	Created time.Time
}

// Expired reports whether e is older than ttl at now. A non-positive ttl
// never expires.
func (e Entry) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(e.Created) > ttl
}

// Info provides metadata without loading the output.
type Info struct {
	Key       string
	Mode      string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for cache operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("cache entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("cache store closed")
)

// Key returns the hex SHA-256 of mode, template and the JSON encoding of
// vars. Map keys are encoded in sorted order, so equal inputs give equal
// keys.
func Key(mode, template string, vars map[string]any) (string, error) {
	encoded, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("encode vars: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write([]byte(template))
	h.Write([]byte{0})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil)), nil
}
