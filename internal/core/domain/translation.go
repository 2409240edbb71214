package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// PaymentStatus is the state of a payment on the server.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailure PaymentStatus = "failure"
)

// Money is an amount in minor units (kopiyky). The API sends decimals as
// strings ("12.30") or numbers depending on the endpoint.
type Money int64

// UnmarshalJSON accepts "12.30", 12.3 and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("money: parse %q: %w", raw, err)
	}
	*m = Money(math.Round(f * 100))
	return nil
}

// MarshalJSON renders the amount the way the API does.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// MarshalYAML renders the amount as a decimal string.
func (m Money) MarshalYAML() (any, error) {
	return m.String(), nil
}

// String formats the amount with two decimals.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Payment is a payment record.
type Payment struct {
	ID        int64         `json:"id" yaml:"id"`
	User      int64         `json:"user" yaml:"user"`
	Amount    Money         `json:"amount" yaml:"amount"`
	Status    PaymentStatus `json:"status" yaml:"status"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	ClosedAt  *time.Time    `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
}

// PaymentRef is either a bare payment id (NotLoaded) or an embedded payment
// record (Loaded). Detail views resolve NotLoaded refs with a secondary fetch.
type PaymentRef struct {
	ID     int64
	Record *Payment
}

// Loaded reports whether the full record is present.
func (r PaymentRef) Loaded() bool {
	return r.Record != nil
}

// Resolve transitions the ref to Loaded.
func (r PaymentRef) Resolve(p *Payment) PaymentRef {
	return PaymentRef{ID: p.ID, Record: p}
}

// UnmarshalJSON decodes a number, an object or null.
func (r *PaymentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = PaymentRef{}
	case len(data) > 0 && data[0] == '{':
		var p Payment
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("payment ref: %w", err)
		}
		*r = PaymentRef{ID: p.ID, Record: &p}
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("payment ref: %w", err)
		}
		*r = PaymentRef{ID: id}
	}
	return nil
}

// MarshalJSON renders the record when loaded, the id otherwise.
func (r PaymentRef) MarshalJSON() ([]byte, error) {
	if r.Record != nil {
		return json.Marshal(r.Record)
	}
	if r.ID == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// MarshalYAML mirrors MarshalJSON.
func (r PaymentRef) MarshalYAML() (any, error) {
	if r.Record != nil {
		return r.Record, nil
	}
	return r.ID, nil
}

// Translation is a translated text owned by a user.
type Translation struct {
	ID             int64      `json:"id" yaml:"id"`
	User           Identity   `json:"user" yaml:"user"`
	Payment        PaymentRef `json:"payment" yaml:"payment"`
	SourceText     string     `json:"source_text" yaml:"source_text"`
	TranslatedText string     `json:"translated_text" yaml:"translated_text"`
	SourceLang     string     `json:"source_lang" yaml:"source_lang"`
	TargetLang     string     `json:"target_lang" yaml:"target_lang"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// VisibleTo reports whether the identity may view the translation.
func (t Translation) VisibleTo(viewer Identity) bool {
	return viewer.Privileged() || t.User.ID == viewer.ID
}

// DailyStats is the admin aggregate returned by the stats endpoint.
type DailyStats struct {
	ID                    int64  `json:"id" yaml:"id"`
	Date                  string `json:"date" yaml:"date"`
	TotalTranslations     int64  `json:"total_translations" yaml:"total_translations"`
	TotalRevenue          Money  `json:"total_revenue" yaml:"total_revenue"`
	AverageCheck          Money  `json:"average_check" yaml:"average_check"`
	TotalUsers            int64  `json:"total_users" yaml:"total_users"`
	UsersWithTranslations int64  `json:"users_with_translations" yaml:"users_with_translations"`
}

// StatsReport is the full stats response.
type StatsReport struct {
	DailyStats   DailyStats    `json:"daily_stats" yaml:"daily_stats"`
	Translations []Translation `json:"translations" yaml:"translations"`
}

// OrderRequest is the body of a translation order.
type OrderRequest struct {
	SourceText string `json:"source_text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// PaymentOrder is the server's answer to an order: where to pay.
type PaymentOrder struct {
	PaymentID      int64  `json:"payment_id" yaml:"payment_id"`
	OrderReference string `json:"order_reference" yaml:"order_reference"`
	Amount         Money  `json:"amount" yaml:"amount"`
	PaymentURL     string `json:"payment_url" yaml:"payment_url"`
	SourceText     string `json:"source_text" yaml:"source_text"`
	SourceLang     string `json:"source_lang" yaml:"source_lang"`
	TargetLang     string `json:"target_lang" yaml:"target_lang"`
}
