package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wishwell/api/internal/app"
	"github.com/wishwell/api/internal/domain"
)

const dateLayout = "2006-01-02"

// WishlistManager is the minimal interface for wishlist-level operations.
type WishlistManager interface {
	Create(ctx context.Context, in app.CreateWishlistInput) (domain.ManagedWishlist, error)
	GetManaged(ctx context.Context, creatorSecret string) (domain.ManagedWishlist, error)
	GetPublic(ctx context.Context, slug string) (domain.PublicWishlist, error)
	Update(ctx context.Context, creatorSecret string, in app.UpdateWishlistInput) (domain.ManagedWishlist, error)
	Delete(ctx context.Context, creatorSecret string) error
}

type createWishlistRequest struct {
	Title     string `json:"title"`
	Occasion  string `json:"occasion"`
	EventDate string `json:"event_date"`
	Currency  string `json:"currency"`
}

// HandleCreateWishlist returns the handler for POST /wishlists. The response
// is the only place the creator secret is ever sent.
func HandleCreateWishlist(svc WishlistManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createWishlistRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		eventDate, ok := parseDate(req.EventDate)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "event_date must be YYYY-MM-DD")
			return
		}

		created, err := svc.Create(r.Context(), app.CreateWishlistInput{
			Title:     req.Title,
			Occasion:  req.Occasion,
			EventDate: eventDate,
			Currency:  req.Currency,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// HandleGetManagedWishlist returns the handler for GET /wishlists/m/{creatorSecret}.
func HandleGetManagedWishlist(svc WishlistManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetManaged(r.Context(), chi.URLParam(r, "creatorSecret"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleGetPublicWishlist returns the handler for GET /wishlists/s/{slug}.
func HandleGetPublicWishlist(svc WishlistManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetPublic(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

type updateWishlistRequest struct {
	Title     *string `json:"title"`
	Occasion  *string `json:"occasion"`
	EventDate *string `json:"event_date"`
	Currency  *string `json:"currency"`
}

// HandleUpdateWishlist returns the handler for PATCH /wishlists/m/{creatorSecret}.
// Absent fields stay unchanged.
func HandleUpdateWishlist(svc WishlistManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateWishlistRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.UpdateWishlistInput{
			Title:    req.Title,
			Occasion: req.Occasion,
			Currency: req.Currency,
		}
		if req.EventDate != nil {
			eventDate, ok := parseDate(*req.EventDate)
			if !ok {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "event_date must be YYYY-MM-DD")
				return
			}
			in.EventDate = eventDate
		}

		view, err := svc.Update(r.Context(), chi.URLParam(r, "creatorSecret"), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleDeleteWishlist returns the handler for DELETE /wishlists/m/{creatorSecret}.
// Items, reservations and contributions cascade with the wishlist.
func HandleDeleteWishlist(svc WishlistManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "creatorSecret")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseDate(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, false
	}
	return &t, true
}
