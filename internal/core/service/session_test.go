package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/storage"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
	"github.com/yndnr/lingvo-go/internal/telemetry/metric"
)

var alice = domain.Identity{ID: 7, Username: "alice", Email: "alice@example.com"}

func newTestManager(t *testing.T, api *fakeAPI, policy LogoutPolicy) (*Manager, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore(storage.DefaultTTL, clockwork.NewFakeClock())
	m := NewManager(api, store, ManagerConfig{
		LogoutPolicy: policy,
		Logger:       logger.Discard(),
		Metrics:      metric.NewRegistry(),
	})
	return m, store
}

func grantFor(id domain.Identity, credential string) func(context.Context, string, string) (*domain.Grant, error) {
	return func(context.Context, string, string) (*domain.Grant, error) {
		return &domain.Grant{Credential: credential, Identity: id}, nil
	}
}

func TestParseLogoutPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    LogoutPolicy
		wantErr bool
	}{
		{"", LogoutRequireAck, false},
		{"require_ack", LogoutRequireAck, false},
		{"always_clear", LogoutAlwaysClear, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLogoutPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLogoutPolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestManager_LoginPersistsCredential(t *testing.T) {
	api := newFakeAPI()
	api.login = grantFor(alice, "tok-1")
	m, store := newTestManager(t, api, "")

	if err := m.Login(context.Background(), "alice", "Secret1!"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	snap := m.Snapshot()
	if snap.Status != domain.StatusAuthenticated || snap.Credential != "tok-1" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Identity == nil || *snap.Identity != alice {
		t.Errorf("Identity = %+v, want %+v", snap.Identity, alice)
	}

	rec, err := store.Load(context.Background())
	if err != nil || rec.Credential != "tok-1" {
		t.Errorf("stored = %+v, %v; want tok-1", rec, err)
	}
	if m.Credential() != "tok-1" {
		t.Errorf("Credential() = %q", m.Credential())
	}
}

func TestManager_LoginFailureKeepsPayload(t *testing.T) {
	api := newFakeAPI()
	payload := map[string]any{"Error": "Invalid credentials"}
	api.login = func(context.Context, string, string) (*domain.Grant, error) {
		return nil, domain.ErrServerRejected.WithStatus(http.StatusUnauthorized).WithPayload(payload)
	}
	m, store := newTestManager(t, api, "")

	err := m.Login(context.Background(), "alice", "bad")
	var ce *domain.ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("Login() error = %v, want *ClientError", err)
	}
	if ce.Payload["Error"] != "Invalid credentials" {
		t.Errorf("Payload = %v, want verbatim server body", ce.Payload)
	}
	if m.Status() != domain.StatusUnauthenticated {
		t.Errorf("Status() = %v, want unauthenticated", m.Status())
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("store should stay empty, got %v", err)
	}
}

func TestManager_RegisterValidatesLocally(t *testing.T) {
	tests := []struct {
		name string
		reg  domain.Registration
		want error
	}{
		{
			name: "bad email wins over mismatch",
			reg:  domain.Registration{Email: "nope", Username: "bob", Password: "Secret1!", ConfirmPassword: "Other1!"},
			want: domain.ErrInvalidEmail,
		},
		{
			name: "mismatch wins over weak",
			reg:  domain.Registration{Email: "b@x.io", Username: "bob", Password: "weak", ConfirmPassword: "weaker"},
			want: domain.ErrPasswordMismatch,
		},
		{
			name: "weak password",
			reg:  domain.Registration{Email: "b@x.io", Username: "bob", Password: "password", ConfirmPassword: "password"},
			want: domain.ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			m, _ := newTestManager(t, api, "")

			err := m.Register(context.Background(), tt.reg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
			if !domain.IsKind(err, domain.KindValidation) {
				t.Errorf("Register() error kind = %v, want validation", err)
			}
			if api.Calls("register") != 0 {
				t.Error("no request may be sent when local validation fails")
			}
		})
	}
}

func TestManager_RegisterSuccess(t *testing.T) {
	api := newFakeAPI()
	bob := domain.Identity{ID: 9, Username: "bob", Email: "b@x.io"}
	api.register = func(ctx context.Context, r domain.Registration) (*domain.Grant, error) {
		return &domain.Grant{Credential: "tok-b", Identity: bob}, nil
	}
	m, _ := newTestManager(t, api, "")

	err := m.Register(context.Background(), domain.Registration{
		Email: "b@x.io", Username: "bob", Password: "Secret1!", ConfirmPassword: "Secret1!",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if snap := m.Snapshot(); !snap.Authenticated() || snap.Identity.Username != "bob" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestManager_Restore(t *testing.T) {
	t.Run("nothing stored", func(t *testing.T) {
		api := newFakeAPI()
		m, _ := newTestManager(t, api, "")
		if m.Restore(context.Background()) {
			t.Error("Restore() = true with empty store")
		}
		if api.Calls("profile") != 0 {
			t.Error("profile must not be fetched without a stored credential")
		}
	})

	t.Run("valid credential", func(t *testing.T) {
		api := newFakeAPI()
		api.profile = func(ctx context.Context, credential string) (*domain.Identity, error) {
			if credential != "tok-1" {
				t.Errorf("profile credential = %q", credential)
			}
			id := alice
			return &id, nil
		}
		m, store := newTestManager(t, api, "")
		store.Save(context.Background(), "tok-1")

		if !m.Restore(context.Background()) {
			t.Fatal("Restore() = false")
		}
		if snap := m.Snapshot(); !snap.Authenticated() || *snap.Identity != alice {
			t.Errorf("snapshot = %+v", snap)
		}
	})

	t.Run("rejected credential is cleared silently", func(t *testing.T) {
		api := newFakeAPI()
		var during domain.SessionStatus
		var m *Manager
		api.profile = func(ctx context.Context, credential string) (*domain.Identity, error) {
			during = m.Status()
			return nil, domain.ErrCredentialRejected.WithStatus(http.StatusUnauthorized)
		}
		m, store := newTestManager(t, api, "")
		store.Save(context.Background(), "stale")

		if m.Restore(context.Background()) {
			t.Fatal("Restore() = true for rejected credential")
		}
		if during != domain.StatusRestoring {
			t.Errorf("status during profile fetch = %v, want restoring", during)
		}
		if snap := m.Snapshot(); snap.Status != domain.StatusUnauthenticated || snap.Credential != "" || snap.Identity != nil {
			t.Errorf("snapshot = %+v, want cleared", snap)
		}
		if _, err := store.Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("stored credential should be deleted, got %v", err)
		}
	})

	t.Run("transport failure is cleared silently", func(t *testing.T) {
		api := newFakeAPI()
		api.profile = func(context.Context, string) (*domain.Identity, error) {
			return nil, domain.ErrTransport.WithCause(errors.New("connection refused"))
		}
		m, store := newTestManager(t, api, "")
		store.Save(context.Background(), "tok")

		if m.Restore(context.Background()) {
			t.Fatal("Restore() = true on transport failure")
		}
		if m.Status() != domain.StatusUnauthenticated {
			t.Errorf("Status() = %v", m.Status())
		}
	})
}

func TestManager_Logout(t *testing.T) {
	serverDown := func(context.Context, string) error {
		return domain.ErrServerFailure.WithStatus(http.StatusInternalServerError)
	}

	t.Run("acknowledged", func(t *testing.T) {
		api := newFakeAPI()
		api.login = grantFor(alice, "tok")
		api.logout = func(ctx context.Context, credential string) error {
			if credential != "tok" {
				t.Errorf("logout credential = %q", credential)
			}
			return nil
		}
		m, store := newTestManager(t, api, LogoutRequireAck)
		m.Login(context.Background(), "alice", "x")

		if err := m.Logout(context.Background()); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if m.Status() != domain.StatusUnauthenticated || m.Credential() != "" {
			t.Errorf("snapshot = %+v", m.Snapshot())
		}
		if _, err := store.Load(context.Background()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("store not cleared: %v", err)
		}
	})

	t.Run("require_ack keeps session on failure", func(t *testing.T) {
		api := newFakeAPI()
		api.login = grantFor(alice, "tok")
		api.logout = serverDown
		m, store := newTestManager(t, api, LogoutRequireAck)
		m.Login(context.Background(), "alice", "x")

		if err := m.Logout(context.Background()); err == nil {
			t.Fatal("Logout() error = nil, want server error")
		}
		if !m.Snapshot().Authenticated() || m.Credential() != "tok" {
			t.Errorf("session should be retained, got %+v", m.Snapshot())
		}
		if rec, err := store.Load(context.Background()); err != nil || rec.Credential != "tok" {
			t.Errorf("stored credential should be retained: %+v, %v", rec, err)
		}
	})

	t.Run("always_clear clears on failure", func(t *testing.T) {
		api := newFakeAPI()
		api.login = grantFor(alice, "tok")
		api.logout = serverDown
		m, _ := newTestManager(t, api, LogoutAlwaysClear)
		m.Login(context.Background(), "alice", "x")

		if err := m.Logout(context.Background()); err == nil {
			t.Error("Logout() should still report the server error")
		}
		if m.Status() != domain.StatusUnauthenticated {
			t.Errorf("Status() = %v, want unauthenticated", m.Status())
		}
	})

	t.Run("not logged in", func(t *testing.T) {
		api := newFakeAPI()
		m, _ := newTestManager(t, api, "")
		if err := m.Logout(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
			t.Errorf("Logout() error = %v, want ErrNotAuthenticated", err)
		}
		if api.Calls("logout") != 0 {
			t.Error("no logout request expected without a credential")
		}
	})
}

func TestManager_TransitionInProgress(t *testing.T) {
	api := newFakeAPI()
	entered := make(chan struct{})
	release := make(chan struct{})
	api.login = func(context.Context, string, string) (*domain.Grant, error) {
		close(entered)
		<-release
		return &domain.Grant{Credential: "tok", Identity: alice}, nil
	}
	api.logout = func(context.Context, string) error { return nil }
	m, _ := newTestManager(t, api, "")

	done := make(chan error, 1)
	go func() { done <- m.Login(context.Background(), "alice", "x") }()
	<-entered

	if err := m.Login(context.Background(), "alice", "x"); !errors.Is(err, domain.ErrTransitionInProgress) {
		t.Errorf("concurrent Login() error = %v, want ErrTransitionInProgress", err)
	}
	if err := m.Logout(context.Background()); !errors.Is(err, domain.ErrTransitionInProgress) {
		t.Errorf("concurrent Logout() error = %v, want ErrTransitionInProgress", err)
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Login() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first Login() did not finish")
	}
	if api.Calls("login") != 1 {
		t.Errorf("login calls = %d, want 1", api.Calls("login"))
	}
	if api.Calls("logout") != 0 {
		t.Errorf("logout calls = %d, want 0", api.Calls("logout"))
	}
}

func TestManager_Authorize(t *testing.T) {
	api := newFakeAPI()
	m, _ := newTestManager(t, api, "")

	if got := m.Authorize(domain.CapabilityNone); got != domain.DenyLogin {
		t.Errorf("unauthenticated Authorize() = %v, want DenyLogin", got)
	}

	api.login = grantFor(alice, "tok")
	m.Login(context.Background(), "alice", "x")
	if got := m.Authorize(domain.CapabilityNone); got != domain.Allow {
		t.Errorf("Authorize(none) = %v, want Allow", got)
	}
	if got := m.Authorize(domain.CapabilityAdminOnly); got != domain.DenyHome {
		t.Errorf("Authorize(adminOnly) = %v, want DenyHome", got)
	}
}

func TestManager_Invalidate(t *testing.T) {
	api := newFakeAPI()
	api.login = grantFor(alice, "tok")
	reg := metric.NewRegistry()
	store := storage.NewMemoryStore(storage.DefaultTTL, nil)
	m := NewManager(api, store, ManagerConfig{Logger: logger.Discard(), Metrics: reg})
	m.Login(context.Background(), "alice", "x")

	if m.Invalidate(context.Background(), domain.ErrServerFailure) {
		t.Error("Invalidate() must ignore non-authorization errors")
	}
	if !m.Snapshot().Authenticated() {
		t.Fatal("session cleared by a server error")
	}

	if !m.Invalidate(context.Background(), domain.ErrCredentialRejected.WithStatus(401)) {
		t.Error("Invalidate() = false for rejected credential")
	}
	if m.Status() != domain.StatusUnauthenticated {
		t.Errorf("Status() = %v", m.Status())
	}
	if got := testutil.ToFloat64(reg.SessionTransitions.WithLabelValues("invalidate", "ok")); got != 1 {
		t.Errorf("invalidate transitions = %v, want 1", got)
	}
}

func TestManager_InvalidateDuringLogin(t *testing.T) {
	api := newFakeAPI()
	entered := make(chan struct{})
	release := make(chan struct{})
	api.login = func(context.Context, string, string) (*domain.Grant, error) {
		close(entered)
		<-release
		return &domain.Grant{Credential: "tok-new", Identity: alice}, nil
	}
	m, store := newTestManager(t, api, "")

	done := make(chan error, 1)
	go func() { done <- m.Login(context.Background(), "alice", "x") }()
	<-entered

	// A rejection of the previous credential arrives mid-login.
	if m.Invalidate(context.Background(), domain.ErrCredentialRejected) {
		t.Error("Invalidate() = true while a login was in flight")
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Login() did not finish")
	}
	if got := m.Credential(); got != "tok-new" {
		t.Errorf("Credential() = %q, want tok-new", got)
	}
	rec, err := store.Load(context.Background())
	if err != nil || rec.Credential != "tok-new" {
		t.Errorf("stored credential = %+v, %v", rec, err)
	}

	// Between transitions the guard is free again.
	if !m.Invalidate(context.Background(), domain.ErrCredentialRejected) {
		t.Error("Invalidate() = false after the login finished")
	}
}

func TestManager_SnapshotIsACopy(t *testing.T) {
	api := newFakeAPI()
	api.login = grantFor(alice, "tok")
	m, _ := newTestManager(t, api, "")
	m.Login(context.Background(), "alice", "x")

	snap := m.Snapshot()
	snap.Identity.IsAdmin = true
	if m.Snapshot().Identity.IsAdmin {
		t.Error("mutating a snapshot changed the manager state")
	}
}
