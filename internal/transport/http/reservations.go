package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishwell/api/internal/app"
	"github.com/wishwell/api/internal/domain"
)

// Reserver is the minimal interface for the reservation track.
type Reserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (app.ReserveResult, error)
	Get(ctx context.Context, reserverSecret string) (domain.ReservationView, error)
	Cancel(ctx context.Context, reserverSecret string) error
}

type reserveRequest struct {
	ReserverName string `json:"reserver_name"`
}

type reserveResponse struct {
	ReserverSecret string `json:"reserver_secret"`
}

// HandleReserveItem returns the handler for
// POST /wishlists/s/{slug}/items/{itemID}/reserve. The reserver secret in
// the response is the only copy ever handed out.
func HandleReserveItem(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reserveRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		result, err := svc.Reserve(r.Context(), app.ReserveInput{
			Slug:         chi.URLParam(r, "slug"),
			ItemID:       chi.URLParam(r, "itemID"),
			ReserverName: req.ReserverName,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reserveResponse{ReserverSecret: result.ReserverSecret})
	}
}

// HandleGetReservation returns the handler for GET /reservations/{reserverSecret}:
// the holder's own private view.
func HandleGetReservation(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), chi.URLParam(r, "reserverSecret"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleCancelReservation returns the handler for DELETE /reservations/{reserverSecret}.
// The secret stops resolving afterwards; the item becomes reservable again.
func HandleCancelReservation(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Cancel(r.Context(), chi.URLParam(r, "reserverSecret")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
