package domain

import orders "github.com/chibyk-cyber/pro-shop/internal/orders/domain"

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type VerifyResponse struct {
	Order         *orders.Order `json:"order"`
	Created       bool          `json:"created"`
	StatusChanged bool          `json:"status_changed"`
	CartCleared   bool          `json:"cart_cleared"`
}
