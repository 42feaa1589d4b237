package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mahbub-Sajon/srs-publications-server/api/controllers"
	"github.com/Mahbub-Sajon/srs-publications-server/api/middleware"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/cart"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/orders"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/payments"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/products"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/statistics"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/users"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	pkgredis "github.com/Mahbub-Sajon/srs-publications-server/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs. Redis-backed
// fields may be nil when Redis is not configured; idempotency and rate
// limiting are then skipped.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimiter pkgredis.RateLimiter
	Gatherer    prometheus.Gatherer

	Users      users.Service
	Products   products.Service
	Cart       cart.Service
	Orders     orders.Service
	Payments   payments.Service
	Statistics statistics.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Storefront.AllowedOrigins),
		middleware.Idempotency(deps.Idempotency, cfg.Idempotency.TTL, logg),
	)

	paymentPolicy := middleware.RateLimitPolicy{
		Name:   "create-payment",
		Window: cfg.RateLimit.PaymentWindow,
		Limit:  cfg.RateLimit.PaymentIPLimit,
	}

	r.Get("/", controllers.Root())
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg,
			controllers.Dependency{Name: "db", Pinger: deps.DB},
			controllers.Dependency{Name: "redis", Pinger: deps.Redis},
		))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", controllers.CreateUser(deps.Users, logg))
		r.Get("/", controllers.ListUsers(deps.Users, logg))
		r.Get("/admin/{email}", controllers.CheckAdmin(deps.Users, logg))
		r.Get("/{email}", controllers.GetUser(deps.Users, logg))
		r.Put("/{email}", controllers.UpdateUser(deps.Users, logg))
		r.Delete("/{id}", controllers.DeleteUser(deps.Users, logg))
	})
	r.Patch("/users/admin/{id}", controllers.PromoteUser(deps.Users, logg))

	r.Post("/api/cart", controllers.AddToCart(deps.Cart, logg))
	r.Route("/cart/{userId}", func(r chi.Router) {
		r.Get("/", controllers.ListCart(deps.Cart, logg))
		r.Delete("/", controllers.ClearCart(deps.Cart, logg))
	})

	r.Post("/api/orders", controllers.PlaceOrder(deps.Orders, logg))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Post("/", controllers.CreateProduct(deps.Products, logg))
	})
	r.Get("/api/products/{productId}", controllers.GetProduct(deps.Products, logg))

	r.With(middleware.RateLimit(paymentPolicy, deps.RateLimiter, logg)).
		Post("/create-payment", controllers.CreatePayment(deps.Payments, logg))
	r.Post("/success", controllers.PaymentSuccess(deps.Payments, logg))
	r.Post("/fail", controllers.PaymentFail(deps.Payments))
	r.Post("/cancel", controllers.PaymentCancel(deps.Payments))
	r.Post("/ipn", controllers.PaymentIPN(deps.Payments, logg))

	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/", controllers.ListPaymentsByEmail(deps.Payments, logg))
		r.Get("/statistics", controllers.PaymentStatistics(deps.Statistics, logg))
		r.Get("/transaction/{transactionId}", controllers.GetPaymentByTransaction(deps.Payments, logg))
	})

	return r
}
