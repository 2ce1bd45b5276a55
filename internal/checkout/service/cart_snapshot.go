package service

import (
	"sort"
	"time"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	d "github.com/chibyk-cyber/pro-shop/internal/checkout/domain"
)

// buildCartSnapshot prices quantities from the catalog. With strict set an
// item the catalog no longer sells is an error; otherwise it is skipped.
func (s *CheckoutService) buildCartSnapshot(quantities map[string]int, strict bool) (*d.CartSnapshot, []string, error) {
	names := make([]string, 0, len(quantities))
	for name := range quantities {
		names = append(names, name)
	}
	sort.Strings(names)

	snapshot := &d.CartSnapshot{
		Items:      make([]d.CartSnapshotItem, 0, len(names)),
		Currency:   s.currency,
		CapturedAt: time.Now().UTC(),
	}

	var skipped []string
	for _, name := range names {
		qty := quantities[name]
		price, ok := s.catalog.Price(name)
		if !ok || qty <= 0 {
			if strict {
				return nil, nil, apperr.Validation("cart", "item "+name+" is no longer available")
			}
			skipped = append(skipped, name)
			continue
		}

		subtotal := price * int64(qty)
		snapshot.Items = append(snapshot.Items, d.CartSnapshotItem{
			Name:      name,
			Quantity:  qty,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
		snapshot.TotalAmount += subtotal
	}
	return snapshot, skipped, nil
}
