package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/realtime"
)

// RouterDeps carries everything the HTTP surface needs. Wishlists and Items
// are usually the same service; they are separate here so handlers depend on
// no more than they use.
type RouterDeps struct {
	Wishlists      WishlistManager
	Items          ItemManager
	Reservations   Reserver
	Contributions  Contributor
	Hub            *realtime.Hub
	Log            *logrus.Logger
	Metrics        *Metrics
	AllowedOrigins []string
}

// NewRouter wires every route. Capabilities are path segments throughout, so
// they stay out of query strings and the logs that capture them.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(deps.Log))
	if deps.Metrics != nil {
		r.Use(RequestMetrics(deps.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/wishlists", func(r chi.Router) {
		r.Post("/", HandleCreateWishlist(deps.Wishlists))

		r.Route("/m/{creatorSecret}", func(r chi.Router) {
			r.Get("/", HandleGetManagedWishlist(deps.Wishlists))
			r.Patch("/", HandleUpdateWishlist(deps.Wishlists))
			r.Delete("/", HandleDeleteWishlist(deps.Wishlists))
			r.Post("/items", HandleAddItem(deps.Items))
			r.Patch("/items/{itemID}", HandleUpdateItem(deps.Items))
			r.Delete("/items/{itemID}", HandleDeleteItem(deps.Items))
		})

		r.Route("/s/{slug}", func(r chi.Router) {
			r.Get("/", HandleGetPublicWishlist(deps.Wishlists))
			r.Post("/items/{itemID}/reserve", HandleReserveItem(deps.Reservations))
			r.Post("/items/{itemID}/contribute", HandleContributeItem(deps.Contributions))
		})

		r.Get("/ws/{slug}", HandleWishlistSocket(deps.Wishlists, deps.Hub, deps.AllowedOrigins, deps.Log))
	})

	r.Route("/reservations/{reserverSecret}", func(r chi.Router) {
		r.Get("/", HandleGetReservation(deps.Reservations))
		r.Delete("/", HandleCancelReservation(deps.Reservations))
	})

	r.Route("/contributions/{contributorSecret}", func(r chi.Router) {
		r.Get("/", HandleGetContribution(deps.Contributions))
		r.Delete("/", HandleCancelContribution(deps.Contributions))
	})

	return r
}
