package domain

import "time"

// CartSnapshotItem is a cart line priced at checkout time from the catalog.
type CartSnapshotItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// CartSnapshot represents the full cart state at checkout time. Amounts are
// in major units.
type CartSnapshot struct {
	Items       []CartSnapshotItem `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	Currency    string             `json:"currency"`
	CapturedAt  time.Time          `json:"captured_at"`
}

// Quantities returns the snapshot as name -> quantity.
func (s *CartSnapshot) Quantities() map[string]int {
	out := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		out[it.Name] = it.Quantity
	}
	return out
}
