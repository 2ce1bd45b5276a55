// Package cache keeps a read-through copy of carts in front of the cart
// repository.
package cache

import (
	"context"
	"errors"

	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
)

// CartCache stores carts per user.
//
// Every Delete bumps the user's generation. Set only stores a cart read
// under the current generation, so a fill that races a clear or an update
// is dropped instead of resurrecting the old cart.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Generation returns the user's current generation. Read it before
	// loading the cart that will be passed to Set.
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, gen int64, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleEntry is returned by Set when the cart was deleted after gen was read.
	ErrStaleEntry = errors.New("cache entry is stale")
)
