package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	"github.com/chibyk-cyber/pro-shop/internal/cart/cache"
	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
	"github.com/chibyk-cyber/pro-shop/internal/cart/repository"
)

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	prices domain.PriceList
	log    *slog.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, prices domain.PriceList, log *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		prices: prices,
		log:    log.With(slog.String("component", "cart")),
	}
}

// GetCart returns the user's cart, or a new empty one when none is stored.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cache get failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}

		// read before the repository so a clear that lands in between
		// invalidates this fill
		gen, genErr := s.cache.Generation(ctx, userID)

		cart, err = s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			s.log.WarnContext(ctx, "cache generation failed", slog.String("user_id", userID), slog.String("error", genErr.Error()))
			return cart, nil
		}

		go s.fillCache(userID, gen, clone(cart))

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// callers may mutate the result; singleflight hands the same pointer to all of them
	return clone(v.(*domain.Cart)), nil
}

// AddItem adds qty units of name. Invalid input leaves the stored cart as it was.
func (s *CartService) AddItem(ctx context.Context, userID, name string, qty int) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.Add(s.prices, name, qty); err != nil {
		return nil, err
	}

	item := domain.CartItem{Name: name, Quantity: qty, AddedAt: time.Now().UTC()}
	cart, err = s.repo.AddItem(ctx, userID, item, domain.MaxQuantity)
	if errors.Is(err, repository.ErrQuantityLimit) {
		return nil, apperr.Validation("quantity", "cannot exceed 99 per item")
	}
	if err != nil {
		s.log.ErrorContext(ctx, "add item failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, name string) (*domain.Cart, error) {
	cart, err := s.repo.RemoveItem(ctx, userID, name)
	if errors.Is(err, repository.ErrItemNotFound) {
		return nil, ErrItemNotInCart
	}
	if err != nil {
		s.log.ErrorContext(ctx, "remove item failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

// ClearCart empties the cart. Clearing a cart that does not exist is not an error.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.log.ErrorContext(ctx, "delete cart failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// Total returns the cart total in major units priced from the catalog.
func (s *CartService) Total(ctx context.Context, userID string) (int64, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.Total(s.prices), nil
}

// load reads the cart from the repository, bypassing the cache.
func (s *CartService) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.New(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) fillCache(userID string, gen int64, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.cache.Set(ctx, userID, gen, cart)
	switch {
	case errors.Is(err, cache.ErrStaleEntry):
		s.log.Debug("cache fill skipped, cart changed", slog.String("user_id", userID))
	case err != nil:
		s.log.Warn("cache set failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cache invalidate failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}

func clone(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartItem{}, c.Items...)
	return &out
}
