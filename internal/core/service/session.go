package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/storage"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
	"github.com/yndnr/lingvo-go/internal/telemetry/metric"
)

// AuthAPI is the part of the API client the session manager uses.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*domain.Grant, error)
	Register(ctx context.Context, r domain.Registration) (*domain.Grant, error)
	Logout(ctx context.Context, credential string) error
	Profile(ctx context.Context, credential string) (*domain.Identity, error)
}

// LogoutPolicy decides what happens to local state when the server does
// not acknowledge a logout.
type LogoutPolicy string

const (
	// LogoutRequireAck clears local state only after a 2xx answer.
	LogoutRequireAck LogoutPolicy = "require_ack"
	// LogoutAlwaysClear clears local state whatever the server says.
	LogoutAlwaysClear LogoutPolicy = "always_clear"
)

// ParseLogoutPolicy validates a configured policy. Empty means the default.
func ParseLogoutPolicy(s string) (LogoutPolicy, error) {
	switch LogoutPolicy(s) {
	case "", LogoutRequireAck:
		return LogoutRequireAck, nil
	case LogoutAlwaysClear:
		return LogoutAlwaysClear, nil
	default:
		return "", fmt.Errorf("unknown logout policy %q (want %s or %s)", s, LogoutRequireAck, LogoutAlwaysClear)
	}
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	LogoutPolicy LogoutPolicy
	Logger       logger.Logger
	Metrics      *metric.Registry
}

// Manager owns the session: the credential, the identity and the status.
//
// One Manager exists per process and is passed by pointer to whatever
// needs the credential. Transitions (Restore, Login, Register, Logout) are
// serialized: one issued while another is running fails immediately with
// domain.ErrTransitionInProgress.
type Manager struct {
	api     AuthAPI
	store   storage.CredentialStore
	policy  LogoutPolicy
	log     logger.Logger
	metrics *metric.Registry

	mu    sync.RWMutex
	state domain.Session

	busy atomic.Bool
}

// NewManager creates an unauthenticated Manager.
func NewManager(api AuthAPI, store storage.CredentialStore, cfg ManagerConfig) *Manager {
	if cfg.LogoutPolicy == "" {
		cfg.LogoutPolicy = LogoutRequireAck
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &Manager{
		api:     api,
		store:   store,
		policy:  cfg.LogoutPolicy,
		log:     cfg.Logger.With("component", "session"),
		metrics: cfg.Metrics,
	}
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.state
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// Status returns the current session status.
func (m *Manager) Status() domain.SessionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Status
}

// Credential returns the current credential, or "" when there is none.
func (m *Manager) Credential() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Credential
}

// Authorize decides whether the current session may open a view.
func (m *Manager) Authorize(c domain.Capability) domain.Decision {
	return domain.Authorize(m.Snapshot(), c)
}

// Restore validates a persisted credential against the profile endpoint.
//
// It never returns an error: any failure leaves the session
// unauthenticated with the persisted credential removed. The result
// reports whether the session is authenticated afterwards.
func (m *Manager) Restore(ctx context.Context) bool {
	if !m.begin() {
		return m.Status() == domain.StatusAuthenticated
	}
	defer m.end()

	rec, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrExpired) {
			m.log.Warn("credential store unavailable", "error", err)
		}
		m.metrics.SessionTransition("restore", "none")
		return false
	}

	m.set(domain.Session{Status: domain.StatusRestoring, Credential: rec.Credential})

	identity, err := m.api.Profile(ctx, rec.Credential)
	if err != nil {
		m.log.Warn("stored credential rejected, clearing session", "error", err)
		m.clear(ctx)
		m.metrics.SessionTransition("restore", "failed")
		return false
	}

	m.set(domain.Session{
		Status:     domain.StatusAuthenticated,
		Credential: rec.Credential,
		Identity:   identity,
	})
	m.metrics.SessionTransition("restore", "ok")
	m.log.Debug("session restored", "username", identity.Username)
	return true
}

// Login authenticates with a username and password. On failure the session
// is unchanged and the returned *domain.ClientError carries the server
// payload verbatim.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if !m.begin() {
		return domain.ErrTransitionInProgress
	}
	defer m.end()

	grant, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.metrics.SessionTransition("login", "failed")
		return domain.AsClientError(err)
	}
	m.establish(ctx, grant)
	m.metrics.SessionTransition("login", "ok")
	return nil
}

// Register validates r locally and creates an account. Nothing is sent
// when local validation fails.
func (m *Manager) Register(ctx context.Context, r domain.Registration) error {
	if !m.begin() {
		return domain.ErrTransitionInProgress
	}
	defer m.end()

	if err := r.Validate(); err != nil {
		m.metrics.SessionTransition("register", "invalid")
		return err
	}

	grant, err := m.api.Register(ctx, r)
	if err != nil {
		m.metrics.SessionTransition("register", "failed")
		return domain.AsClientError(err)
	}
	m.establish(ctx, grant)
	m.metrics.SessionTransition("register", "ok")
	return nil
}

// Logout revokes the credential on the server.
//
// Under LogoutRequireAck the local session is cleared only when the server
// answers 2xx; otherwise it is kept and the error returned. Under
// LogoutAlwaysClear local state is cleared in every case.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.begin() {
		return domain.ErrTransitionInProgress
	}
	defer m.end()

	credential := m.Credential()
	if credential == "" {
		return domain.ErrNotAuthenticated
	}

	err := m.api.Logout(ctx, credential)
	if err != nil {
		m.log.Warn("logout not acknowledged by server", "error", err, "policy", string(m.policy))
	}

	if err == nil || m.policy == LogoutAlwaysClear {
		m.clear(ctx)
	}

	if err != nil {
		m.metrics.SessionTransition("logout", "failed")
		return domain.AsClientError(err)
	}
	m.metrics.SessionTransition("logout", "ok")
	return nil
}

// Invalidate clears the session after a caller saw an authorization-kind
// error. Other errors are ignored. It reports whether the session was
// cleared.
//
// Invalidate is a transition: while a login, register, logout or restore
// is in flight it does nothing, since that transition replaces the
// credential the error was about.
func (m *Manager) Invalidate(ctx context.Context, err error) bool {
	if !domain.IsKind(err, domain.KindAuthorization) {
		return false
	}
	if !m.begin() {
		m.log.Debug("invalidate skipped: transition in progress", "reason", err)
		return false
	}
	defer m.end()

	if m.Credential() == "" {
		return false
	}
	m.log.Info("credential invalidated", "reason", err)
	m.clear(ctx)
	m.metrics.SessionTransition("invalidate", "ok")
	return true
}

func (m *Manager) begin() bool {
	return m.busy.CompareAndSwap(false, true)
}

func (m *Manager) end() {
	m.busy.Store(false)
}

func (m *Manager) set(s domain.Session) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// establish persists a fresh grant and marks the session authenticated.
// A store failure only costs persistence across runs.
func (m *Manager) establish(ctx context.Context, g *domain.Grant) {
	if _, err := m.store.Save(ctx, g.Credential); err != nil {
		m.log.Error("failed to persist credential", "error", err)
	}
	identity := g.Identity
	m.set(domain.Session{
		Status:     domain.StatusAuthenticated,
		Credential: g.Credential,
		Identity:   &identity,
	})
}

func (m *Manager) clear(ctx context.Context) {
	if err := m.store.Delete(ctx); err != nil {
		m.log.Error("failed to delete stored credential", "error", err)
	}
	m.set(domain.Session{Status: domain.StatusUnauthenticated})
}
