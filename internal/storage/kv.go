package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a saved credential stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Common errors
var (
	ErrNotFound = errors.New("storage: no stored credential")
	ErrExpired  = errors.New("storage: stored credential expired")
	ErrClosed   = errors.New("storage: store closed")
)

// Record is the persisted credential entry.
type Record struct {
	Credential string    `json:"credential"`
	SavedAt    time.Time `json:"saved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the record is no longer valid at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// CredentialStore persists a single credential.
//
// Load returns ErrNotFound when nothing is stored and ErrExpired when the
// stored entry is past its expiry; an expired entry is removed as a side
// effect. Implementations must be safe for concurrent use.
type CredentialStore interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, credential string) (Record, error)
	Delete(ctx context.Context) error
	Close() error
}

// Config configures a credential store.
type Config struct {
	// Dir is the store directory. Badger data lives in Dir/db.
	Dir string

	// TTL is the credential lifetime. Default: 7 days.
	TTL time.Duration

	// Passphrase is the sealing key material. When empty a random key
	// is generated once and kept in Dir/store.key.
	Passphrase string

	// Badger-specific tuning.
	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB; the store holds a single small entry.
	ValueLogFileSize int64

	// CacheSize is the block cache size in bytes.
	// Default: 1MB
	CacheSize int64

	// SyncWrites enables fsync after each write.
	// Default: true
	SyncWrites bool
}

// DefaultConfig returns the default store configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Dir: dir,
		TTL: DefaultTTL,
		Badger: BadgerConfig{
			ValueLogFileSize: 16 << 20,
			CacheSize:        1 << 20,
			SyncWrites:       true,
		},
	}
}
