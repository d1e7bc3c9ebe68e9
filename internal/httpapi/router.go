package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Catalog    *CatalogHandler
	Cart       *CartHandler
	Wishlist   *WishlistHandler
	Promo      *PromoHandler
	Checkout   *CheckoutHandler
	Orders     *OrdersHandler
	Newsletter *NewsletterHandler
}

// NewRouter wires the HTTP surface. Catalog reads are public; everything
// that touches a user's cart, wishlist or orders requires identity.
func NewRouter(h Handlers, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(RateLimitMiddleware)
	r.Use(AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.Catalog.ListBooks)
			r.Get("/{book_id}", h.Catalog.GetBook)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{book_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{book_id}", h.Cart.RemoveItem)
			r.Delete("/", h.Cart.ClearCart)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.Wishlist.GetWishlist)
			r.Post("/items", h.Wishlist.AddEntry)
			r.Delete("/items/{book_id}", h.Wishlist.RemoveEntry)
		})

		r.Post("/newsletter/subscribe", h.Newsletter.Subscribe)
		r.Post("/promo/apply", h.Promo.ApplyPromo)
		r.Post("/checkout", h.Checkout.Submit)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{order_id}", h.Orders.GetOrder)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
