package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vasiliy-maslov/quickmemo/internal/cache"
	"github.com/vasiliy-maslov/quickmemo/internal/config"
	"github.com/vasiliy-maslov/quickmemo/internal/customer"
	handler "github.com/vasiliy-maslov/quickmemo/internal/handler/http"
	"github.com/vasiliy-maslov/quickmemo/internal/invoice"
	"github.com/vasiliy-maslov/quickmemo/internal/order"
	"github.com/vasiliy-maslov/quickmemo/internal/product"
	"github.com/vasiliy-maslov/quickmemo/internal/seller"
	"github.com/vasiliy-maslov/quickmemo/internal/storefront"
)

// NewRouter собирает все слои и маршруты сервиса.
func NewRouter(dbPool *pgxpool.Pool, c cache.Cache, cfg *config.Config) *chi.Mux {
	sellerRepo := seller.NewRepository(dbPool)
	customerRepo := customer.NewRepository(dbPool)
	productRepo := product.NewRepository(dbPool)
	orderRepo := order.NewRepository(dbPool)
	invoiceRepo := invoice.NewRepository(dbPool)

	storefrontSvc := storefront.NewService(sellerRepo, productRepo, c, cfg.Redis.CacheTTL)
	customerSvc := customer.NewService(customerRepo)
	productSvc := product.NewService(productRepo, storefrontSvc)
	invoiceSvc := invoice.NewService(invoiceRepo)
	orderSvc := order.NewService(orderRepo, invoiceSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(handler.MetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Публичная витрина, без заголовка продавца.
	handler.NewStorefrontHandler(storefrontSvc).RegisterRoutes(r)

	// Продавцовое API, всё под X-Seller-ID.
	r.Group(func(r chi.Router) {
		r.Use(handler.SellerContext)

		handler.NewOrderHandler(orderSvc).RegisterRoutes(r)
		handler.NewInvoiceHandler(invoiceSvc).RegisterRoutes(r)
		handler.NewProductHandler(productSvc).RegisterRoutes(r)
		handler.NewCustomerHandler(customerSvc).RegisterRoutes(r)
	})

	return r
}
