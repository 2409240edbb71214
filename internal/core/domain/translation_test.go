package domain

import (
	"encoding/json"
	"testing"
)

func TestPaymentRef_UnmarshalJSON(t *testing.T) {
	var tr Translation
	if err := json.Unmarshal([]byte(`{"id":3,"user":{"id":9},"payment":42}`), &tr); err != nil {
		t.Fatal(err)
	}
	if tr.Payment.Loaded() {
		t.Error("bare id should decode as not loaded")
	}
	if tr.Payment.ID != 42 {
		t.Errorf("ID = %d, want 42", tr.Payment.ID)
	}

	body := `{"id":3,"payment":{"id":42,"user":9,"amount":"12.30","status":"success","created_at":"2025-01-02T03:04:05Z"}}`
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		t.Fatal(err)
	}
	if !tr.Payment.Loaded() {
		t.Fatal("object should decode as loaded")
	}
	if tr.Payment.Record.Amount != 1230 || tr.Payment.Record.Status != PaymentSuccess {
		t.Errorf("record = %+v", tr.Payment.Record)
	}
}

func TestPaymentRef_Resolve(t *testing.T) {
	ref := PaymentRef{ID: 7}
	resolved := ref.Resolve(&Payment{ID: 7, Amount: 100})
	if ref.Loaded() {
		t.Error("Resolve must not mutate the receiver")
	}
	if !resolved.Loaded() || resolved.Record.Amount != 100 {
		t.Errorf("resolved = %+v", resolved)
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
		str  string
	}{
		{`"12.30"`, 1230, "12.30"},
		{`12.3`, 1230, "12.30"},
		{`1`, 100, "1.00"},
		{`"0.05"`, 5, "0.05"},
		{`null`, 0, "0.00"},
	}
	for _, tt := range tests {
		var m Money
		if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if m != tt.want || m.String() != tt.str {
			t.Errorf("Unmarshal(%s) = %d (%s), want %d (%s)", tt.in, m, m, tt.want, tt.str)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestTranslation_VisibleTo(t *testing.T) {
	tr := Translation{User: Identity{ID: 5}}
	if !tr.VisibleTo(Identity{ID: 5}) {
		t.Error("owner should see own translation")
	}
	if tr.VisibleTo(Identity{ID: 6}) {
		t.Error("other user should not see translation")
	}
	if !tr.VisibleTo(Identity{ID: 6, IsAdmin: true}) {
		t.Error("admin should see any translation")
	}
	if !tr.VisibleTo(Identity{ID: 6, IsRoot: true}) {
		t.Error("root should see any translation")
	}
}
