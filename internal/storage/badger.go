package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/jonboulle/clockwork"

	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

var credentialKey = []byte("lingvo/credential")

// BadgerStore implements CredentialStore on Badger v3.
//
// The entry carries a Badger TTL matching ExpiresAt, so Badger drops it
// even if the process never loads it again; ExpiresAt is still checked on
// Load against the injected clock.
type BadgerStore struct {
	db     *badger.DB
	sealer *Sealer
	clock  clockwork.Clock
	ttl    time.Duration
	logger logger.Logger

	mu     sync.RWMutex
	closed bool
}

// BadgerOption configures a BadgerStore.
type BadgerOption func(*BadgerStore)

// WithClock sets the clock used for SavedAt/ExpiresAt.
func WithClock(c clockwork.Clock) BadgerOption {
	return func(s *BadgerStore) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) BadgerOption {
	return func(s *BadgerStore) {
		s.logger = l
	}
}

// OpenBadger opens (creating if needed) the store under cfg.Dir.
func OpenBadger(cfg Config, opts ...BadgerOption) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("storage: dir is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	s := &BadgerStore{
		clock:  clockwork.NewRealClock(),
		ttl:    cfg.TTL,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}

	secret, err := SecretFor(cfg.Passphrase, cfg.Dir)
	if err != nil {
		return nil, err
	}
	if s.sealer, err = NewSealer(secret); err != nil {
		return nil, err
	}

	bopts := badger.DefaultOptions(filepath.Join(cfg.Dir, "db")).
		WithLogger(&badgerLogger{logger: s.logger}).
		WithNumVersionsToKeep(1).
		WithSyncWrites(cfg.Badger.SyncWrites)
	if cfg.Badger.ValueLogFileSize > 0 {
		bopts = bopts.WithValueLogFileSize(cfg.Badger.ValueLogFileSize)
	}
	if cfg.Badger.CacheSize > 0 {
		bopts = bopts.WithBlockCacheSize(cfg.Badger.CacheSize)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	s.db = db

	s.logger.Debug("credential store opened", "dir", cfg.Dir, "ttl", cfg.TTL)
	return s, nil
}

// Load implements CredentialStore.
func (s *BadgerStore) Load(ctx context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, ErrClosed
	}

	var sealed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(credentialKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		sealed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return Record{}, err
	}

	plain, err := s.sealer.Open(sealed, credentialKey)
	if err != nil {
		// A value sealed under another key is unusable; drop it.
		s.logger.Warn("stored credential could not be opened, discarding", "error", err)
		_ = s.deleteLocked()
		return Record{}, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		_ = s.deleteLocked()
		return Record{}, ErrNotFound
	}
	if rec.Expired(s.clock.Now()) {
		if err := s.deleteLocked(); err != nil {
			return Record{}, err
		}
		return Record{}, ErrExpired
	}
	return rec, nil
}

// Save implements CredentialStore.
func (s *BadgerStore) Save(ctx context.Context, credential string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, ErrClosed
	}

	now := s.clock.Now()
	rec := Record{Credential: credential, SavedAt: now, ExpiresAt: now.Add(s.ttl)}
	plain, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("storage: encode record: %w", err)
	}
	sealed, err := s.sealer.Seal(plain, credentialKey)
	if err != nil {
		return Record{}, fmt.Errorf("storage: seal record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(credentialKey, sealed).WithTTL(s.ttl))
	})
	if err != nil {
		return Record{}, fmt.Errorf("storage: save: %w", err)
	}
	return rec, nil
}

// Delete implements CredentialStore. Deleting a missing entry is not an error.
func (s *BadgerStore) Delete(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.deleteLocked()
}

func (s *BadgerStore) deleteLocked() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(credentialKey)
	})
}

// Close runs a value log GC pass and closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		s.logger.Debug("value log gc skipped", "error", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("storage: close badger: %w", err)
	}
	return nil
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
// Badger's info output is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
