package service

import (
	"context"

	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// OrderAPI is the part of the API client the order service uses.
type OrderAPI interface {
	CreatePayment(ctx context.Context, credential string, order domain.OrderRequest) (*domain.PaymentOrder, error)
	GetPayment(ctx context.Context, credential string, id int64) (*domain.Payment, error)
}

const (
	createPaymentFailed = "failed to create payment"
	loadPaymentFailed   = "failed to load payment"
)

// OrderService places translation orders.
type OrderService struct {
	api     OrderAPI
	session SessionSource
	log     logger.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(api OrderAPI, session SessionSource, log logger.Logger) *OrderService {
	if log == nil {
		log = logger.Default()
	}
	return &OrderService{api: api, session: session, log: log.With("component", "order")}
}

// EstimatePrice returns the price shown before ordering, in whole UAH.
func (s *OrderService) EstimatePrice(text string) int {
	return domain.EstimatePrice(text)
}

// PlaceOrder validates the order locally, then creates the payment. The
// returned order carries the URL where the user pays.
func (s *OrderService) PlaceOrder(ctx context.Context, text, source, target string) (*domain.PaymentOrder, error) {
	req, err := domain.NewOrderRequest(text, source, target)
	if err != nil {
		return nil, err
	}

	snap := s.session.Snapshot()
	if !snap.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	order, err := s.api.CreatePayment(ctx, snap.Credential, req)
	if err != nil {
		return nil, paymentError(err, createPaymentFailed)
	}
	s.log.Info("payment created", "payment_id", order.PaymentID, "amount", order.Amount.String())
	return order, nil
}

// GetPayment fetches a payment by id.
func (s *OrderService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	snap := s.session.Snapshot()
	if !snap.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	p, err := s.api.GetPayment(ctx, snap.Credential, id)
	if err != nil {
		return nil, paymentError(err, loadPaymentFailed)
	}
	return p, nil
}

// paymentError applies the payment endpoints' message precedence:
// "error", then "detail", then fallback.
func paymentError(err error, fallback string) *domain.ClientError {
	ce := domain.AsClientError(err)
	if ce.Kind != domain.KindServer {
		return ce
	}
	msg := ce.Field("error")
	if msg == "" {
		msg = ce.Field("detail")
	}
	if msg == "" {
		msg = fallback
	}
	out := *ce
	out.Message = msg
	out.Fields = nil
	return &out
}
