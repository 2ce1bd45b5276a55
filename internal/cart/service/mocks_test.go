package service

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/chibyk-cyber/pro-shop/internal/cart/cache"
	"github.com/chibyk-cyber/pro-shop/internal/cart/domain"
	"github.com/chibyk-cyber/pro-shop/internal/cart/repository"
)

type mockRepository struct {
	m        sync.RWMutex
	carts    map[string]*domain.Cart
	err      error
	writeErr error
	getCalls atomic.Int32
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: map[string]*domain.Cart{}}
}

func (m *mockRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.getCalls.Add(1)
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return copyCart(c), nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = append([]domain.CartItem{}, c.Items...)
	return &cp
}

// put stores c as is, for test setup.
func (m *mockRepository) put(c *domain.Cart) {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[c.UserID] = c
}

func (m *mockRepository) AddItem(_ context.Context, userID string, item domain.CartItem, maxQty int) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	c, ok := m.carts[userID]
	if !ok {
		c = domain.New(userID)
		m.carts[userID] = c
	}
	for i := range c.Items {
		if c.Items[i].Name != item.Name {
			continue
		}
		if c.Items[i].Quantity+item.Quantity > maxQty {
			return nil, repository.ErrQuantityLimit
		}
		c.Items[i].Quantity += item.Quantity
		return copyCart(c), nil
	}
	if item.Quantity > maxQty {
		return nil, repository.ErrQuantityLimit
	}
	c.Items = append(c.Items, item)
	return copyCart(c), nil
}

func (m *mockRepository) RemoveItem(_ context.Context, userID, name string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	n := len(c.Items)
	c.Items = slices.DeleteFunc(c.Items, func(it domain.CartItem) bool { return it.Name == name })
	if len(c.Items) == n {
		return nil, repository.ErrItemNotFound
	}
	return copyCart(c), nil
}

func (m *mockRepository) DeleteCart(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	gens    map[string]int64
	err     error
	deletes atomic.Int32

	// when set, Set waits for gate and reports its result on sets
	gate chan struct{}
	sets chan error
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}, gens: map[string]int64{}}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Generation(_ context.Context, userID string) (int64, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.gens[userID], nil
}

func (m *mockCache) Set(_ context.Context, userID string, gen int64, c *domain.Cart) error {
	if m.gate != nil {
		<-m.gate
	}
	err := m.set(userID, gen, c)
	if m.sets != nil {
		m.sets <- err
	}
	return err
}

func (m *mockCache) set(userID string, gen int64, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.gens[userID] != gen {
		return cache.ErrStaleEntry
	}
	m.carts[userID] = c
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.deletes.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, userID)
	m.gens[userID]++
	return nil
}

type prices map[string]int64

func (p prices) Price(name string) (int64, bool) {
	v, ok := p[name]
	return v, ok
}

var shop = prices{"Generator": 50000, "T-Shirt": 5000, "Jacket": 15000}
