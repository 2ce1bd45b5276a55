// Package catalog holds the products offered by the shop. The set is read
// once at startup and never changes afterwards.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/chibyk-cyber/pro-shop/internal/catalog/domain"
)

type ProductSource interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
}

type Catalog struct {
	byName map[string]domain.Product
	names  []string
}

func Load(ctx context.Context, src ProductSource) (*Catalog, error) {
	products, err := src.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return New(products)
}

func New(products []*domain.Product) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		if p.Name == "" {
			return nil, fmt.Errorf("product %d has no name", p.ID)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("product %q has non-positive price %d", p.Name, p.Price)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("product %q listed twice", p.Name)
		}
		c.byName[p.Name] = *p
		c.names = append(c.names, p.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

func (c *Catalog) Lookup(name string) (domain.Product, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Price returns the unit price of name in major units.
func (c *Catalog) Price(name string) (int64, bool) {
	p, ok := c.byName[name]
	return p.Price, ok
}

// Items returns copies of all products ordered by name.
func (c *Catalog) Items() []domain.Product {
	out := make([]domain.Product, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.names) }
