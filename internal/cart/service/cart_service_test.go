package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chibyk-cyber/pro-shop/internal/apperr"
	"github.com/chibyk-cyber/pro-shop/internal/cart/cache"
	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
	"github.com/chibyk-cyber/pro-shop/internal/logger"
)

func newService() (*CartService, *mockRepository, *mockCache) {
	repo := newMockRepository()
	c := newMockCache()
	return NewCartService(repo, c, shop, logger.Discard()), repo, c
}

func TestGetCart_NotStoredReturnsEmpty(t *testing.T) {
	svc, _, _ := newService()

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.True(t, cart.IsEmpty())
}

func TestGetCart_CacheHitSkipsRepository(t *testing.T) {
	svc, repo, c := newService()
	c.carts["user-1"] = &domain.Cart{UserID: "user-1", Items: []domain.CartItem{{Name: "Jacket", Quantity: 1}}}

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Quantities()["Jacket"])
	assert.Equal(t, int32(0), repo.getCalls.Load())
}

func TestGetCart_MissPopulatesCache(t *testing.T) {
	svc, repo, c := newService()
	repo.put(&domain.Cart{UserID: "user-1", Items: []domain.CartItem{{Name: "Generator", Quantity: 2}}})

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Quantities()["Generator"])

	assert.Eventually(t, func() bool {
		_, err := c.Get(context.Background(), "user-1")
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestGetCart_CacheErrorFallsBackToRepository(t *testing.T) {
	svc, repo, c := newService()
	c.err = errors.New("redis down")
	repo.put(&domain.Cart{UserID: "user-1", Items: []domain.CartItem{{Name: "Jacket", Quantity: 1}}})

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Quantities()["Jacket"])
}

func TestGetCart_RepositoryError(t *testing.T) {
	svc, repo, _ := newService()
	repo.err = errors.New("mongo down")

	_, err := svc.GetCart(context.Background(), "user-1")
	assert.ErrorContains(t, err, "mongo down")
}

func TestGetCart_ConcurrentCallers(t *testing.T) {
	svc, repo, _ := newService()
	repo.put(&domain.Cart{UserID: "user-1", Items: []domain.CartItem{{Name: "Jacket", Quantity: 1}}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := svc.GetCart(context.Background(), "user-1")
			assert.NoError(t, err)
			assert.Equal(t, 1, cart.Quantities()["Jacket"])
		}()
	}
	wg.Wait()
}

func TestAddItem_SavesAndInvalidates(t *testing.T) {
	svc, repo, c := newService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "T-Shirt", 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "user-1", "T-Shirt", 1)
	require.NoError(t, err)

	assert.Equal(t, 3, cart.Quantities()["T-Shirt"])
	stored, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantities()["T-Shirt"])
	assert.Equal(t, int32(2), c.deletes.Load())
}

func TestAddItem_InvalidLeavesCartUnchanged(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", "Jacket", 1)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "user-1", "Jacket", 0)
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.AddItem(ctx, "user-1", "Laptop", 1)
	assert.True(t, apperr.IsValidation(err))

	stored, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Jacket": 1}, stored.Quantities())
}

func TestAddItem_WriteError(t *testing.T) {
	svc, repo, _ := newService()
	repo.writeErr = errors.New("write failed")

	_, err := svc.AddItem(context.Background(), "user-1", "Jacket", 1)
	assert.ErrorContains(t, err, "write failed")
}

func TestRemoveItem(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", "Jacket", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", "Generator", 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user-1", "Jacket")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Generator": 1}, cart.Quantities())

	_, err = svc.RemoveItem(ctx, "user-1", "Jacket")
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestAddItem_QuantityLimitIsValidation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", "Jacket", 99)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "user-1", "Jacket", 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestAddItem_ConcurrentAddsAreSummed(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "user-1", "T-Shirt", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantities()["T-Shirt"])
}

func TestClearCart(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", "Jacket", 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "user-1"))
	require.NoError(t, svc.ClearCart(ctx, "user-1"))

	cart, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, repo.carts)
}

func TestGetCart_FillAfterClearIsDropped(t *testing.T) {
	svc, repo, c := newService()
	ctx := context.Background()
	repo.put(&domain.Cart{UserID: "user-1", Items: []domain.CartItem{{Name: "Generator", Quantity: 1}}})
	c.gate = make(chan struct{})
	c.sets = make(chan error, 2)

	cart, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Quantities()["Generator"])

	// checkout finished and cleared the cart while the fill was in flight
	require.NoError(t, svc.ClearCart(ctx, "user-1"))
	close(c.gate)

	select {
	case err := <-c.sets:
		assert.ErrorIs(t, err, cache.ErrStaleEntry)
	case <-time.After(time.Second):
		t.Fatal("cache fill did not run")
	}

	cart, err = svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestTotal(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "user-1", "Generator", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", "T-Shirt", 2)
	require.NoError(t, err)

	total, err := svc.Total(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), total)
}
