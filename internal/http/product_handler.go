package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/chibyk-cyber/pro-shop/internal/catalog/domain"
)

type ProductLister interface {
	Items() []domain.Product
	Lookup(name string) (domain.Product, bool)
}

type ProductHandler struct {
	products ProductLister
	currency string
}

func NewProductHandler(products ProductLister, currency string) *ProductHandler {
	return &ProductHandler{products: products, currency: currency}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Currency string           `json:"currency"`
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProductsResponse{
		Products: h.products.Items(),
		Currency: h.currency,
	})
}

type ProductResponse struct {
	Product  domain.Product `json:"product"`
	Currency string         `json:"currency"`
}

// Get handles GET /api/v1/products/{name}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid product name")
		return
	}
	p, ok := h.products.Lookup(name)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, ProductResponse{Product: p, Currency: h.currency})
}
