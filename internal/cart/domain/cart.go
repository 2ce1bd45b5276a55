package domain

import (
	"time"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 99

type PriceList interface {
	Price(name string) (int64, bool)
}

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	Name     string    `bson:"name" json:"name"`
	Quantity int       `bson:"quantity" json:"quantity"`
	AddedAt  time.Time `bson:"added_at" json:"added_at"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Add puts qty units of name into the cart, summing with any existing line.
// The cart is left untouched when an error is returned.
func (c *Cart) Add(prices PriceList, name string, qty int) error {
	if qty <= 0 {
		return apperr.Validation("quantity", "must be greater than zero")
	}
	if _, ok := prices.Price(name); !ok {
		return apperr.Validation("item", "unknown item "+name)
	}

	idx := c.indexOf(name)
	current := 0
	if idx >= 0 {
		current = c.Items[idx].Quantity
	}
	if current+qty > MaxQuantity {
		return apperr.Validation("quantity", "cannot exceed 99 per item")
	}

	now := time.Now().UTC()
	if idx >= 0 {
		c.Items[idx].Quantity += qty
		c.Items[idx].AddedAt = now
		return nil
	}
	c.Items = append(c.Items, CartItem{Name: name, Quantity: qty, AddedAt: now})
	return nil
}

// Total is the sum of price times quantity in major units. Lines whose item
// is no longer priced count as zero.
func (c *Cart) Total(prices PriceList) int64 {
	var total int64
	for _, it := range c.Items {
		price, ok := prices.Price(it.Name)
		if !ok {
			continue
		}
		total += price * int64(it.Quantity)
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Quantities returns the cart as name -> quantity.
func (c *Cart) Quantities() map[string]int {
	out := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		out[it.Name] = it.Quantity
	}
	return out
}

func (c *Cart) indexOf(name string) int {
	for i, it := range c.Items {
		if it.Name == name {
			return i
		}
	}
	return -1
}
