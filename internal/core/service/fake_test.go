package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// fakeAPI implements every API interface of this package with
// overridable functions and call counters.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login        func(ctx context.Context, username, password string) (*domain.Grant, error)
	register     func(ctx context.Context, r domain.Registration) (*domain.Grant, error)
	logout       func(ctx context.Context, credential string) error
	profile      func(ctx context.Context, credential string) (*domain.Identity, error)
	translations func(ctx context.Context, credential string, q url.Values) ([]domain.Translation, error)
	stats        func(ctx context.Context, credential string, q url.Values) (*domain.StatsReport, error)
	translation  func(ctx context.Context, credential string, id int64) (*domain.Translation, error)
	payment      func(ctx context.Context, credential string, id int64) (*domain.Payment, error)
	createPay    func(ctx context.Context, credential string, o domain.OrderRequest) (*domain.PaymentOrder, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*domain.Grant, error) {
	f.count("login")
	return f.login(ctx, username, password)
}

func (f *fakeAPI) Register(ctx context.Context, r domain.Registration) (*domain.Grant, error) {
	f.count("register")
	return f.register(ctx, r)
}

func (f *fakeAPI) Logout(ctx context.Context, credential string) error {
	f.count("logout")
	return f.logout(ctx, credential)
}

func (f *fakeAPI) Profile(ctx context.Context, credential string) (*domain.Identity, error) {
	f.count("profile")
	return f.profile(ctx, credential)
}

func (f *fakeAPI) ListMyTranslations(ctx context.Context, credential string, q url.Values) ([]domain.Translation, error) {
	f.count("translations")
	return f.translations(ctx, credential, q)
}

func (f *fakeAPI) GetStats(ctx context.Context, credential string, q url.Values) (*domain.StatsReport, error) {
	f.count("stats")
	return f.stats(ctx, credential, q)
}

func (f *fakeAPI) GetTranslation(ctx context.Context, credential string, id int64) (*domain.Translation, error) {
	f.count("translation")
	return f.translation(ctx, credential, id)
}

func (f *fakeAPI) GetPayment(ctx context.Context, credential string, id int64) (*domain.Payment, error) {
	f.count("payment")
	return f.payment(ctx, credential, id)
}

func (f *fakeAPI) CreatePayment(ctx context.Context, credential string, o domain.OrderRequest) (*domain.PaymentOrder, error) {
	f.count("create_payment")
	return f.createPay(ctx, credential, o)
}

// staticSession is a fixed session snapshot for loaders.
type staticSession struct {
	s domain.Session
}

func (s staticSession) Snapshot() domain.Session { return s.s }

func (s staticSession) Credential() string { return s.s.Credential }

func authenticatedAs(id domain.Identity) staticSession {
	return staticSession{s: domain.Session{Status: domain.StatusAuthenticated, Credential: "cred", Identity: &id}}
}
