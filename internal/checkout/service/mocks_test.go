package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	cart "github.com/chibyk-cyber/pro-shop/internal/cart/domain"
	orders "github.com/chibyk-cyber/pro-shop/internal/orders/domain"
	"github.com/chibyk-cyber/pro-shop/internal/orders/repository"
	"github.com/chibyk-cyber/pro-shop/internal/payment"
)

type prices map[string]int64

func (p prices) Price(name string) (int64, bool) {
	v, ok := p[name]
	return v, ok
}

var shop = prices{"Generator": 50000, "T-Shirt": 5000, "Jacket": 15000}

type MockCartService struct {
	m          sync.Mutex
	carts      map[string]*cart.Cart
	GetErr     error
	ClearCalls int
}

func newMockCartService() *MockCartService {
	return &MockCartService{carts: map[string]*cart.Cart{}}
}

func (m *MockCartService) put(userID string, quantities map[string]int) {
	c := cart.New(userID)
	for name, qty := range quantities {
		c.Items = append(c.Items, cart.CartItem{Name: name, Quantity: qty})
	}
	m.carts[userID] = c
}

func (m *MockCartService) GetCart(_ context.Context, userID string) (*cart.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.carts[userID]
	if !ok {
		return cart.New(userID), nil
	}
	return c, nil
}

func (m *MockCartService) ClearCart(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.ClearCalls++
	delete(m.carts, userID)
	return nil
}

type MockPaymentClient struct {
	InitRequests []payment.TransactionRequest
	InitResult   *payment.Initialization
	InitErr      error
	Verification *payment.Verification
	VerifyErr    error
	VerifyCalls  int
}

func (m *MockPaymentClient) Initialize(_ context.Context, req payment.TransactionRequest) (*payment.Initialization, error) {
	m.InitRequests = append(m.InitRequests, req)
	if m.InitErr != nil {
		return nil, m.InitErr
	}
	return m.InitResult, nil
}

func (m *MockPaymentClient) Verify(_ context.Context, reference string) (*payment.Verification, error) {
	m.VerifyCalls++
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	v := *m.Verification
	v.Reference = reference
	return &v, nil
}

// MockOrderStore mimics the repository's upsert-by-reference rules.
type MockOrderStore struct {
	m      sync.Mutex
	Orders map[string]*orders.Order
	Err    error
}

func newMockOrderStore() *MockOrderStore {
	return &MockOrderStore{Orders: map[string]*orders.Order{}}
}

func (m *MockOrderStore) UpsertOrder(_ context.Context, o *orders.Order) (*repository.UpsertResult, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	existing, ok := m.Orders[o.Reference]
	if !ok {
		cp := *o
		cp.ID = uuid.New()
		m.Orders[o.Reference] = &cp
		return &repository.UpsertResult{Order: &cp, Created: true, StatusChanged: true}, nil
	}
	if existing.UserID != o.UserID {
		return nil, repository.ErrReferenceOwnedByOtherUser
	}
	if existing.Status.IsTerminal() {
		return &repository.UpsertResult{Order: existing}, nil
	}
	changed := existing.Status != o.Status
	cp := *o
	cp.ID = existing.ID
	m.Orders[o.Reference] = &cp
	return &repository.UpsertResult{Order: &cp, StatusChanged: changed}, nil
}
