package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateoreyes/drivehub-backend/api/controllers"
	"github.com/mateoreyes/drivehub-backend/api/middleware"
	"github.com/mateoreyes/drivehub-backend/internal/address"
	"github.com/mateoreyes/drivehub-backend/internal/auth"
	checkoutsvc "github.com/mateoreyes/drivehub-backend/internal/checkout"
	"github.com/mateoreyes/drivehub-backend/internal/coupons"
	"github.com/mateoreyes/drivehub-backend/internal/orders"
	"github.com/mateoreyes/drivehub-backend/internal/products"
	"github.com/mateoreyes/drivehub-backend/internal/shipping"
	"github.com/mateoreyes/drivehub-backend/internal/tax"
	"github.com/mateoreyes/drivehub-backend/pkg/auth/session"
	"github.com/mateoreyes/drivehub-backend/pkg/config"
	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/logger"
	"github.com/mateoreyes/drivehub-backend/pkg/metrics"
	"github.com/mateoreyes/drivehub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	registerService auth.RegisterService,
	addressService address.Service,
	productService products.Service,
	couponService coupons.Service,
	shippingService shipping.Service,
	taxService tax.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, logg))
		r.Post("/refresh-token", controllers.AuthRefresh(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(authService, logg))
			r.Put("/me", controllers.AuthUpdateProfile(authService, logg))
		})
	})

	r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
		Post("/api/admin/login", controllers.AdminAuthLogin(authService, logg))

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(productService, logg))
		r.Get("/{productId}", controllers.ProductsGet(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/", controllers.ProductsCreate(productService, logg))
			r.Put("/{productId}", controllers.ProductsUpdate(productService, logg))
			r.Delete("/{productId}", controllers.ProductsDelete(productService, logg))
		})
	})

	r.Route("/api/address-book", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Get("/", controllers.AddressList(addressService, logg))
		r.Post("/", controllers.AddressCreate(addressService, logg))
		r.Put("/{addressId}", controllers.AddressUpdate(addressService, logg))
		r.Delete("/{addressId}", controllers.AddressDelete(addressService, logg))
		r.Post("/{addressId}/primary", controllers.AddressSetPrimary(addressService, logg))
	})

	r.Get("/api/shipping", controllers.ShippingMethods(shippingService, logg))
	r.Post("/api/coupons/validate", controllers.CouponsValidate(couponService, logg))
	r.Post("/api/tax/calculate", controllers.TaxCalculate(taxService, logg))

	// Checkout sessions are capability-addressed so guests can buy without an
	// account; the session ID itself is the credential. A bearer token, when
	// presented, still ties the session to its owner.
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Post("/", controllers.CheckoutStart(checkoutService, logg))
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", controllers.CheckoutGet(checkoutService, logg))
			r.Get("/quote", controllers.CheckoutQuote(checkoutService, logg))
			r.Post("/items", controllers.CheckoutAddItem(checkoutService, logg))
			r.Put("/items/{sku}", controllers.CheckoutUpdateItemQty(checkoutService, logg))
			r.Delete("/items/{sku}", controllers.CheckoutRemoveItem(checkoutService, logg))
			r.Put("/addresses", controllers.CheckoutSetAddresses(checkoutService, logg))
			r.Put("/shipping-method", controllers.CheckoutSetShippingMethod(checkoutService, logg))
			r.Post("/coupon", controllers.CheckoutApplyCoupon(checkoutService, logg))
			r.Delete("/coupon", controllers.CheckoutRemoveCoupon(checkoutService, logg))
			r.Put("/payment-method", controllers.CheckoutSetPaymentMethod(checkoutService, logg))
			r.Post("/advance", controllers.CheckoutAdvance(checkoutService, logg))
			r.Post("/back", controllers.CheckoutBack(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/", controllers.OrdersListMine(ordersService, logg))
		r.Get("/{orderId}", controllers.OrdersGet(ordersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, "admin", "superadmin"))
			r.Get("/all", controllers.AdminOrdersList(ordersService, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(ordersService, logg))
			r.Post("/{orderId}/tracking", controllers.AdminOrderAddTracking(ordersService, logg))
			r.Post("/{orderId}/paid", controllers.AdminOrderMarkPaid(ordersService, logg))
		})
	})

	return r
}
