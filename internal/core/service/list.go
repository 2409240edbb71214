package service

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/core/query"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
	"github.com/yndnr/lingvo-go/internal/telemetry/metric"
)

// ErrSuperseded is returned by a refetch whose response arrived after a
// newer refetch was issued. The response is discarded.
var ErrSuperseded = errors.New("service: response superseded by a newer request")

// ListStatus is the lifecycle of a list result.
type ListStatus int

const (
	ListIdle ListStatus = iota
	ListLoading
	ListLoaded
	ListFailed
)

// String returns the status name.
func (s ListStatus) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListLoaded:
		return "loaded"
	case ListFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Page is what a fetcher returns: the records plus an optional summary
// (the stats view carries the daily aggregate).
type Page[R any] struct {
	Items   []R
	Summary any
}

// Fetcher retrieves one page for the given query parameters.
type Fetcher[R any] func(ctx context.Context, credential string, query url.Values) (Page[R], error)

// Result is the observable state of a list. A new Result replaces the old
// one on every refetch; Items is never mutated in place.
type Result[R any] struct {
	Items      []R
	Summary    any
	Status     ListStatus
	Err        *domain.ClientError // set iff Status == ListFailed
	Generation uint64
}

// CredentialSource hands out the current credential. *Manager implements it.
type CredentialSource interface {
	Credential() string
}

// ListConfig configures a ListController.
type ListConfig struct {
	// ClearOnError drops the previous items when a refetch fails. By
	// default they stay visible next to the error.
	ClearOnError bool
	Logger       logger.Logger
	Metrics      *metric.Registry
}

// ListController drives one list view: staged and applied filters, the
// sort, and the fetch cycle.
//
// Each refetch takes a new generation number; a response is applied only
// if its generation is still the latest issued, so a slow response can
// never overwrite a newer one. The controller never changes the session;
// authorization failures surface as a failed Result.
type ListController[R any] struct {
	session CredentialSource
	fetch   Fetcher[R]
	cfg     ListConfig
	log     logger.Logger

	mu         sync.Mutex
	spec       *query.Spec
	result     Result[R]
	generation uint64
}

// NewListController creates an idle controller for view.
func NewListController[R any](view query.View, session CredentialSource, fetch Fetcher[R], cfg ListConfig) *ListController[R] {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &ListController[R]{
		session: session,
		fetch:   fetch,
		cfg:     cfg,
		log:     cfg.Logger.With("component", "list", "view", view.Name),
		spec:    query.NewSpec(view),
	}
}

// View returns the view description.
func (c *ListController[R]) View() query.View {
	return c.spec.View()
}

// Result returns the current result.
func (c *ListController[R]) Result() Result[R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Sort returns the active sort.
func (c *ListController[R]) Sort() query.Sort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec.Sort()
}

// Staged returns the staged filters.
func (c *ListController[R]) Staged() query.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec.Staged()
}

// Applied returns the applied filters.
func (c *ListController[R]) Applied() query.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec.Applied()
}

// SetFilter stages a filter value. Nothing is fetched.
func (c *ListController[R]) SetFilter(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec.SetFilter(key, value)
}

// Stage edits the criteria under the controller lock without fetching.
// It lets a caller set several filters, apply them and pick a sort, then
// pay for a single Refetch.
func (c *ListController[R]) Stage(edit func(spec *query.Spec) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return edit(c.spec)
}

// SetSort selects or toggles the sort field and refetches. An unknown
// field is rejected without fetching.
func (c *ListController[R]) SetSort(ctx context.Context, field string) (Result[R], error) {
	c.mu.Lock()
	err := c.spec.SetSort(field)
	c.mu.Unlock()
	if err != nil {
		return c.Result(), err
	}
	return c.Refetch(ctx)
}

// ApplyFilters commits the staged filters and refetches.
func (c *ListController[R]) ApplyFilters(ctx context.Context) (Result[R], error) {
	c.mu.Lock()
	c.spec.Apply()
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// Refetch fetches with the applied filters and the current sort.
//
// It returns ErrSuperseded when a newer refetch was issued while this one
// was in flight, and the *domain.ClientError of a failed fetch otherwise.
func (c *ListController[R]) Refetch(ctx context.Context) (Result[R], error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	params := c.spec.Values()
	c.result = Result[R]{
		Items:      c.result.Items,
		Summary:    c.result.Summary,
		Status:     ListLoading,
		Generation: gen,
	}
	c.mu.Unlock()

	page, err := c.load(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug("discarding superseded response", "generation", gen, "latest", c.generation)
		c.cfg.Metrics.Superseded(c.spec.View().Name)
		return c.result, ErrSuperseded
	}

	if err != nil {
		ce := domain.AsClientError(err)
		next := Result[R]{
			Items:      c.result.Items,
			Summary:    c.result.Summary,
			Status:     ListFailed,
			Err:        ce,
			Generation: gen,
		}
		if c.cfg.ClearOnError {
			next.Items = nil
			next.Summary = nil
		}
		c.result = next
		c.log.Debug("list fetch failed", "generation", gen, "error", err)
		return c.result, ce
	}

	c.result = Result[R]{
		Items:      page.Items,
		Summary:    page.Summary,
		Status:     ListLoaded,
		Generation: gen,
	}
	return c.result, nil
}

func (c *ListController[R]) load(ctx context.Context, params url.Values) (Page[R], error) {
	credential := c.session.Credential()
	if credential == "" {
		return Page[R]{}, domain.ErrNotAuthenticated
	}
	return c.fetch(ctx, credential, params)
}

// ListAPI is the part of the API client the list views use.
type ListAPI interface {
	ListMyTranslations(ctx context.Context, credential string, query url.Values) ([]domain.Translation, error)
	GetStats(ctx context.Context, credential string, query url.Values) (*domain.StatsReport, error)
}

// NewMyTranslations builds the controller for the caller's translations.
func NewMyTranslations(api ListAPI, session CredentialSource, cfg ListConfig) *ListController[domain.Translation] {
	return NewListController[domain.Translation](query.MyTranslations, session,
		func(ctx context.Context, credential string, q url.Values) (Page[domain.Translation], error) {
			items, err := api.ListMyTranslations(ctx, credential, q)
			if err != nil {
				return Page[domain.Translation]{}, err
			}
			return Page[domain.Translation]{Items: items}, nil
		}, cfg)
}

// NewStatsList builds the admin statistics controller. The daily aggregate
// is exposed as the result summary (a domain.DailyStats).
func NewStatsList(api ListAPI, session CredentialSource, cfg ListConfig) *ListController[domain.Translation] {
	return NewListController[domain.Translation](query.Stats, session,
		func(ctx context.Context, credential string, q url.Values) (Page[domain.Translation], error) {
			report, err := api.GetStats(ctx, credential, q)
			if err != nil {
				return Page[domain.Translation]{}, err
			}
			return Page[domain.Translation]{Items: report.Translations, Summary: report.DailyStats}, nil
		}, cfg)
}
