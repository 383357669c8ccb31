package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novapos/novapos-backend/api/controllers"
	"github.com/novapos/novapos-backend/api/middleware"
	"github.com/novapos/novapos-backend/internal/auth"
	"github.com/novapos/novapos-backend/internal/catalog"
	"github.com/novapos/novapos-backend/internal/customers"
	"github.com/novapos/novapos-backend/internal/inventory"
	"github.com/novapos/novapos-backend/internal/orders"
	"github.com/novapos/novapos-backend/internal/payments"
	"github.com/novapos/novapos-backend/internal/tax"
	"github.com/novapos/novapos-backend/pkg/auth/session"
	"github.com/novapos/novapos-backend/pkg/config"
	"github.com/novapos/novapos-backend/pkg/enums"
	"github.com/novapos/novapos-backend/pkg/logger"
	"github.com/novapos/novapos-backend/pkg/redis"
)

// Pinger answers a readiness ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              Pinger
	Redis           *redis.Client
	Sessions        session.AccessSessionChecker
	AuthService     auth.Service
	RegisterService auth.RegisterService
	CatalogService  catalog.Service
	CustomerService customers.Service
	OrderService    orders.Service
	PaymentService  payments.Service
	TaxService      tax.Service
	InventorySvc    inventory.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Post("/auth/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.With(middleware.RequireRole(logg, enums.MemberRoleAdmin)).
			Post("/auth/register", controllers.AuthRegister(deps.RegisterService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.CatalogService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.MemberRoleAdmin, enums.MemberRoleManager))
				r.Post("/", controllers.CreateProduct(deps.CatalogService, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(deps.CatalogService, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(deps.CatalogService, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(deps.CustomerService, logg))
			r.Get("/{customerID}", controllers.GetCustomer(deps.CustomerService, logg))
			r.Post("/", controllers.CreateCustomer(deps.CustomerService, logg))
			r.Patch("/{customerID}", controllers.UpdateCustomer(deps.CustomerService, logg))

			r.With(middleware.RequireRole(logg, enums.MemberRoleAdmin, enums.MemberRoleManager)).
				Delete("/{customerID}", controllers.DeleteCustomer(deps.CustomerService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.OrderService, logg))
			r.Get("/", controllers.ListOrders(deps.OrderService, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.OrderService, logg))
			r.Post("/{orderID}/returns", controllers.CreateReturn(deps.OrderService, logg))
			r.Post("/{orderID}/payment", controllers.CreatePaymentIntent(deps.PaymentService, logg))
			r.Get("/{orderID}/payment", controllers.GetOrderPayment(deps.PaymentService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/{intentID}", controllers.GetPaymentIntent(deps.PaymentService, logg))
			r.Post("/{intentID}/transition", controllers.TransitionPayment(deps.PaymentService, logg))
		})

		r.Route("/tax", func(r chi.Router) {
			r.Get("/resolve", controllers.ResolveTaxRate(deps.TaxService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.MemberRoleAdmin))
				r.Put("/overrides", controllers.SetTaxOverride(deps.TaxService, logg))
				r.Get("/overrides", controllers.ListTaxOverrides(deps.TaxService, logg))
				r.Delete("/overrides/{overrideID}", controllers.DeleteTaxOverride(deps.TaxService, logg))
			})
		})

		r.Route("/locations/{locationID}/stock", func(r chi.Router) {
			r.Get("/", controllers.ListStockLevels(deps.InventorySvc, logg))
			r.Get("/{productID}", controllers.GetStockLevel(deps.InventorySvc, logg))

			r.With(middleware.RequireRole(logg, enums.MemberRoleAdmin, enums.MemberRoleManager)).
				Post("/{productID}/adjust", controllers.AdjustStock(deps.InventorySvc, logg))
		})
	})

	return r
}
