package repository

import (
	"context"
	"errors"

	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not in cart")
	// ErrQuantityLimit means the line would go over the allowed quantity.
	ErrQuantityLimit = errors.New("quantity limit reached")
)

// CartRepository is the storage the cart service needs. Item changes are
// applied by the store so concurrent writers do not overwrite each other.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem adds item.Quantity units to the line named item.Name, creating
	// the cart and the line as needed, and returns the updated cart.
	AddItem(ctx context.Context, userID string, item domain.CartItem, maxQty int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, name string) (*domain.Cart, error)
	DeleteCart(ctx context.Context, userID string) error
}
