package connection

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// Endpoint labels used in logs and metrics.
const (
	EndpointRegister       = "register"
	EndpointLogin          = "login"
	EndpointLogout         = "logout"
	EndpointProfile        = "profile"
	EndpointCreatePayment  = "create_payment"
	EndpointGetPayment     = "get_payment"
	EndpointGetTranslation = "get_translation"
	EndpointMyTranslations = "my_translations"
	EndpointStats          = "stats"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	IsRoot   bool   `json:"is_root"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type registerResponse struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

// errNoCredential is returned when a 2xx auth response carries no token.
var errNoCredential = domain.ErrServerRejected.WithMessage("response carried no credential")

// Register creates an account. The caller validates r beforehand.
func (c *HTTPClient) Register(ctx context.Context, r domain.Registration) (*domain.Grant, error) {
	var resp registerResponse
	err := c.do(ctx, call{
		endpoint: EndpointRegister,
		method:   http.MethodPost,
		path:     "/api/users/",
		body: registerRequest{
			Email:     r.Email,
			Username:  r.Username,
			Password:  r.Password,
			Password2: r.ConfirmPassword,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errNoCredential.WithStatus(http.StatusCreated)
	}
	return &domain.Grant{Credential: resp.Token, Identity: resp.User}, nil
}

// Login exchanges a username and password for a credential.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*domain.Grant, error) {
	var resp loginResponse
	err := c.do(ctx, call{
		endpoint: EndpointLogin,
		method:   http.MethodPost,
		path:     "/api/users/login/",
		body:     loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errNoCredential.WithStatus(http.StatusOK)
	}
	return &domain.Grant{
		Credential: resp.Token,
		Identity: domain.Identity{
			ID:       resp.UserID,
			Username: resp.Username,
			Email:    resp.Email,
			IsAdmin:  resp.IsAdmin,
			IsRoot:   resp.IsRoot,
		},
	}, nil
}

// Logout revokes the credential on the server.
func (c *HTTPClient) Logout(ctx context.Context, credential string) error {
	return c.do(ctx, call{
		endpoint:   EndpointLogout,
		method:     http.MethodPost,
		path:       "/api/users/logout/",
		credential: credential,
	}, nil)
}

// Profile returns the identity behind a credential.
func (c *HTTPClient) Profile(ctx context.Context, credential string) (*domain.Identity, error) {
	var id domain.Identity
	err := c.do(ctx, call{
		endpoint:   EndpointProfile,
		method:     http.MethodGet,
		path:       "/api/users/profile/",
		credential: credential,
	}, &id)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreatePayment places a translation order and returns where to pay.
func (c *HTTPClient) CreatePayment(ctx context.Context, credential string, order domain.OrderRequest) (*domain.PaymentOrder, error) {
	var po domain.PaymentOrder
	err := c.do(ctx, call{
		endpoint:   EndpointCreatePayment,
		method:     http.MethodPost,
		path:       "/api/payments/",
		credential: credential,
		body:       order,
	}, &po)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// GetPayment fetches one payment.
func (c *HTTPClient) GetPayment(ctx context.Context, credential string, id int64) (*domain.Payment, error) {
	var p domain.Payment
	err := c.do(ctx, call{
		endpoint:   EndpointGetPayment,
		method:     http.MethodGet,
		path:       fmt.Sprintf("/api/payments/%d/", id),
		credential: credential,
	}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetTranslation fetches one translation.
func (c *HTTPClient) GetTranslation(ctx context.Context, credential string, id int64) (*domain.Translation, error) {
	var t domain.Translation
	err := c.do(ctx, call{
		endpoint:   EndpointGetTranslation,
		method:     http.MethodGet,
		path:       fmt.Sprintf("/api/translations/%d/", id),
		credential: credential,
	}, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListMyTranslations lists the caller's translations. query carries the
// ordering and filter parameters.
func (c *HTTPClient) ListMyTranslations(ctx context.Context, credential string, query url.Values) ([]domain.Translation, error) {
	var items []domain.Translation
	err := c.do(ctx, call{
		endpoint:   EndpointMyTranslations,
		method:     http.MethodGet,
		path:       "/api/translations/my_translations/",
		query:      query,
		credential: credential,
	}, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetStats fetches the admin statistics report.
func (c *HTTPClient) GetStats(ctx context.Context, credential string, query url.Values) (*domain.StatsReport, error) {
	var report domain.StatsReport
	err := c.do(ctx, call{
		endpoint:   EndpointStats,
		method:     http.MethodGet,
		path:       "/api/stats/",
		query:      query,
		credential: credential,
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
