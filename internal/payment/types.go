package payment

import (
	"encoding/json"
	"time"
)

// TransactionRequest is the body of an initialize call. Amount is in minor
// units (kobo for NGN).
type TransactionRequest struct {
	Email    string   `json:"email"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Metadata Metadata `json:"metadata"`
}

// Metadata travels with the transaction and comes back on verify.
type Metadata struct {
	UserID string         `json:"user_id"`
	Cart   map[string]int `json:"cart"`
}

type Initialization struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code,omitempty"`
}

type Verification struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
	PaidAt      *time.Time
	Metadata    *Metadata

	// CustomerEmail is the address the provider charged.
	CustomerEmail string
}

// Amount is AmountMinor in major units, truncated.
func (v *Verification) Amount() int64 {
	return v.AmountMinor / 100
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type verifyData struct {
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    *string         `json:"paid_at"`
	Metadata  json.RawMessage `json:"metadata"`
	Customer  verifyCustomer  `json:"customer"`
}

type verifyCustomer struct {
	Email string `json:"email"`
}

// parseMetadata accepts whatever the provider echoes back. Transactions
// created elsewhere carry no metadata or a plain string.
func parseMetadata(raw json.RawMessage) *Metadata {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	if m.UserID == "" && len(m.Cart) == 0 {
		return nil
	}
	return &m
}

func parsePaidAt(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
