package service

import (
	"context"

	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// DetailAPI is the part of the API client the detail loader uses.
type DetailAPI interface {
	GetTranslation(ctx context.Context, credential string, id int64) (*domain.Translation, error)
	GetPayment(ctx context.Context, credential string, id int64) (*domain.Payment, error)
}

// SessionSource exposes session snapshots. *Manager implements it.
type SessionSource interface {
	Snapshot() domain.Session
}

// DetailLoader loads one translation for display.
type DetailLoader struct {
	api     DetailAPI
	session SessionSource
	log     logger.Logger
}

// NewDetailLoader creates a DetailLoader.
func NewDetailLoader(api DetailAPI, session SessionSource, log logger.Logger) *DetailLoader {
	if log == nil {
		log = logger.Default()
	}
	return &DetailLoader{api: api, session: session, log: log.With("component", "detail")}
}

// Translation fetches a translation the viewer owns (admins see all).
//
// When the payment arrives as a bare id it is fetched separately; if that
// secondary fetch fails the translation is still returned with the payment
// left unresolved.
func (d *DetailLoader) Translation(ctx context.Context, id int64) (*domain.Translation, error) {
	snap := d.session.Snapshot()
	if !snap.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	t, err := d.api.GetTranslation(ctx, snap.Credential, id)
	if err != nil {
		return nil, domain.AsClientError(err)
	}
	if !t.VisibleTo(*snap.Identity) {
		return nil, domain.ErrPermissionDenied
	}

	if !t.Payment.Loaded() && t.Payment.ID != 0 {
		p, err := d.api.GetPayment(ctx, snap.Credential, t.Payment.ID)
		if err != nil {
			d.log.Warn("payment lookup failed", "translation_id", id, "payment_id", t.Payment.ID, "error", err)
		} else {
			t.Payment = t.Payment.Resolve(p)
		}
	}
	return t, nil
}
