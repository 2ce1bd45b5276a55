package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chibyk-cyber/pro-shop/internal/auth/domain"
)

// RolePublic marks a view that needs no session.
const RolePublic domain.Role = "public"

// View is one named endpoint together with the role it requires.
type View struct {
	Name    string
	Method  string
	Path    string
	Role    domain.Role
	Handler http.HandlerFunc
}

type Handlers struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Profile  *ProfileHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
}

func health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Views lists every endpoint of the storefront.
func Views(h Handlers) []View {
	return []View{
		{"health", http.MethodGet, "/health", RolePublic, health},

		{"register", http.MethodPost, "/api/v1/auth/register", RolePublic, h.Auth.Register},
		{"login", http.MethodPost, "/api/v1/auth/login", RolePublic, h.Auth.Login},
		{"logout", http.MethodPost, "/api/v1/auth/logout", domain.RoleCustomer, h.Auth.Logout},

		{"products", http.MethodGet, "/api/v1/products", RolePublic, h.Products.List},
		{"products.get", http.MethodGet, "/api/v1/products/{name}", RolePublic, h.Products.Get},

		{"profile.get", http.MethodGet, "/api/v1/profile", domain.RoleCustomer, h.Profile.Get},
		{"profile.save", http.MethodPut, "/api/v1/profile", domain.RoleCustomer, h.Profile.Save},

		{"cart.get", http.MethodGet, "/api/v1/cart", domain.RoleCustomer, h.Cart.GetCart},
		{"cart.add", http.MethodPost, "/api/v1/cart/items", domain.RoleCustomer, h.Cart.AddItem},
		{"cart.remove", http.MethodDelete, "/api/v1/cart/items/{name}", domain.RoleCustomer, h.Cart.RemoveItem},
		{"cart.clear", http.MethodDelete, "/api/v1/cart", domain.RoleCustomer, h.Cart.ClearCart},

		{"checkout.initiate", http.MethodPost, "/api/v1/checkout", domain.RoleCustomer, h.Checkout.Initiate},
		{"checkout.verify", http.MethodPost, "/api/v1/checkout/verify", domain.RoleCustomer, h.Checkout.Verify},

		{"orders.list", http.MethodGet, "/api/v1/orders", domain.RoleCustomer, h.Orders.List},
		{"orders.get", http.MethodGet, "/api/v1/orders/{reference}", domain.RoleCustomer, h.Orders.Get},

		{"admin.orders", http.MethodGet, "/api/v1/admin/orders", domain.RoleAdmin, h.Orders.ListAll},
		{"admin.sales", http.MethodGet, "/api/v1/admin/sales", domain.RoleAdmin, h.Orders.Sales},
	}
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	// TracerProvider defaults to the global provider when nil.
	TracerProvider trace.TracerProvider
}

// routeTagged names the server span after the view's route and labels the
// request metrics with it.
func routeTagged(v View, next http.Handler) http.Handler {
	route := attribute.String("http.route", v.Path)
	spanName := v.Method + " " + v.Path
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		span.SetName(spanName)
		span.SetAttributes(route, attribute.String("storefront.view", v.Name))
		if labeler, ok := otelhttp.LabelerFromContext(r.Context()); ok {
			labeler.Add(route)
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter registers every view on a chi router. Views other than public
// ones are wrapped with a role check.
func NewRouter(views []View, sessions SessionStore, cfg RouterConfig, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.Compress(5))
	r.Use(Authenticate(sessions))

	for _, v := range views {
		var h http.Handler = v.Handler
		if v.Role != RolePublic {
			h = RequireRole(v.Role)(h)
		}
		r.Method(v.Method, v.Path, routeTagged(v, h))
		log.Debug("view registered",
			slog.String("name", v.Name),
			slog.String("method", v.Method),
			slog.String("path", v.Path),
			slog.String("role", string(v.Role)))
	}

	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	return otelhttp.NewHandler(r, "storefront", opts...)
}
