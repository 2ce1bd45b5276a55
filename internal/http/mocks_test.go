package http

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	authdomain "github.com/chibyk-cyber/pro-shop/internal/auth/domain"
	cartdomain "github.com/chibyk-cyber/pro-shop/internal/cart/domain"
	catalogdomain "github.com/chibyk-cyber/pro-shop/internal/catalog/domain"
	d "github.com/chibyk-cyber/pro-shop/internal/checkout/domain"
	ordersdomain "github.com/chibyk-cyber/pro-shop/internal/orders/domain"
	"github.com/chibyk-cyber/pro-shop/internal/orders/repository"
	"github.com/chibyk-cyber/pro-shop/internal/profile"
	"github.com/chibyk-cyber/pro-shop/internal/session"
)

type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	deleted  []string
}

func newMockSessionStore(sessions ...*session.Session) *MockSessionStore {
	m := &MockSessionStore{sessions: make(map[string]*session.Session)}
	for _, s := range sessions {
		m.sessions[s.Token] = s
	}
	return m
}

func (m *MockSessionStore) Create(ctx context.Context, u *authdomain.User) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &session.Session{Token: "token-" + u.ID, UserID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: time.Now()}
	m.sessions[s.Token] = s
	return s, nil
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return s, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	m.deleted = append(m.deleted, token)
	return nil
}

func sessionFor(token, userID string) *session.Session {
	return &session.Session{Token: token, UserID: userID, Email: userID + "@example.com", Role: authdomain.RoleCustomer}
}

type MockAuthService struct {
	user *authdomain.User
	err  error
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*authdomain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*authdomain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

type priceList map[string]int64

func (p priceList) Price(name string) (int64, bool) {
	v, ok := p[name]
	return v, ok
}

func (p priceList) Items() []catalogdomain.Product {
	out := make([]catalogdomain.Product, 0, len(p))
	for name, price := range p {
		out = append(out, catalogdomain.Product{Name: name, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p priceList) Lookup(name string) (catalogdomain.Product, bool) {
	price, ok := p[name]
	if !ok {
		return catalogdomain.Product{}, false
	}
	return catalogdomain.Product{Name: name, Price: price}, true
}

var shopPrices = priceList{"Generator": 50000, "T-Shirt": 5000, "Jacket": 15000}

type MockCartService struct {
	mu      sync.Mutex
	carts   map[string]*cartdomain.Cart
	cleared []string
	err     error
}

func newMockCartService() *MockCartService {
	return &MockCartService{carts: make(map[string]*cartdomain.Cart)}
}

func (m *MockCartService) cart(userID string) *cartdomain.Cart {
	c, ok := m.carts[userID]
	if !ok {
		c = cartdomain.New(userID)
		m.carts[userID] = c
	}
	return c
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*cartdomain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.cart(userID), nil
}

func (m *MockCartService) AddItem(ctx context.Context, userID, name string, qty int) (*cartdomain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c := m.cart(userID)
	if err := c.Add(shopPrices, name, qty); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, name string) (*cartdomain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c := m.cart(userID)
	c.Items = slices.DeleteFunc(c.Items, func(it cartdomain.CartItem) bool { return it.Name == name })
	return c, nil
}

func (m *MockCartService) ClearCart(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.carts, userID)
	m.cleared = append(m.cleared, userID)
	return nil
}

type MockProfileService struct {
	saved map[string]profile.Profile
}

func (m *MockProfileService) Get(ctx context.Context, userID, email string) (*profile.Profile, error) {
	if p, ok := m.saved[userID]; ok {
		return &p, nil
	}
	return &profile.Profile{UserID: userID, Email: email}, nil
}

func (m *MockProfileService) Save(ctx context.Context, userID, email string, in profile.Profile) (*profile.Profile, error) {
	in.UserID = userID
	in.Email = email
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if m.saved == nil {
		m.saved = make(map[string]profile.Profile)
	}
	m.saved[userID] = in
	return &in, nil
}

type MockCheckoutService struct {
	initiated *d.CheckoutResponse
	verified  *d.VerifyResponse
	err       error

	gotReference string
	gotSession   *session.Session
}

func (m *MockCheckoutService) Initiate(ctx context.Context, sess *session.Session) (*d.CheckoutResponse, error) {
	m.gotSession = sess
	if m.err != nil {
		return nil, m.err
	}
	return m.initiated, nil
}

func (m *MockCheckoutService) Verify(ctx context.Context, sess *session.Session, reference string) (*d.VerifyResponse, error) {
	m.gotSession = sess
	m.gotReference = reference
	if m.err != nil {
		return nil, m.err
	}
	return m.verified, nil
}

type MockOrderReader struct {
	orders []*ordersdomain.Order
	totals []ordersdomain.SalesTotal
	err    error

	gotLimit  int
	gotOffset int
}

func (m *MockOrderReader) GetOrderByReference(ctx context.Context, reference string) (*ordersdomain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, o := range m.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *MockOrderReader) ListOrdersByUserID(ctx context.Context, userID string) ([]*ordersdomain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*ordersdomain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderReader) ListAllOrders(ctx context.Context, limit, offset int) ([]*ordersdomain.Order, error) {
	m.gotLimit, m.gotOffset = limit, offset
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *MockOrderReader) SalesSummary(ctx context.Context) ([]ordersdomain.SalesTotal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.totals, nil
}
