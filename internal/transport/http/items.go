package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishwell/api/internal/app"
	"github.com/wishwell/api/internal/domain"
)

// ItemManager is the minimal interface for owner-side item CRUD.
type ItemManager interface {
	AddItem(ctx context.Context, creatorSecret string, in app.ItemInput) (domain.PublicItem, error)
	UpdateItem(ctx context.Context, creatorSecret, itemID string, in app.UpdateItemInput) (domain.PublicItem, error)
	DeleteItem(ctx context.Context, creatorSecret, itemID string) error
}

type createItemRequest struct {
	Title           string `json:"title"`
	Link            string `json:"link"`
	Price           *int64 `json:"price"`
	MinContribution *int64 `json:"min_contribution"`
	ImageURL        string `json:"image_url"`
}

// HandleAddItem returns the handler for POST /wishlists/m/{creatorSecret}/items.
func HandleAddItem(svc ItemManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		item, err := svc.AddItem(r.Context(), chi.URLParam(r, "creatorSecret"), app.ItemInput{
			Title:           req.Title,
			Link:            req.Link,
			Price:           req.Price,
			MinContribution: req.MinContribution,
			ImageURL:        req.ImageURL,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

type updateItemRequest struct {
	Title           *string `json:"title"`
	Link            *string `json:"link"`
	Price           *int64  `json:"price"`
	MinContribution *int64  `json:"min_contribution"`
	ImageURL        *string `json:"image_url"`
	SortOrder       *int    `json:"sort_order"`
}

// HandleUpdateItem returns the handler for PATCH /wishlists/m/{creatorSecret}/items/{itemID}.
func HandleUpdateItem(svc ItemManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateItemRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		item, err := svc.UpdateItem(r.Context(),
			chi.URLParam(r, "creatorSecret"),
			chi.URLParam(r, "itemID"),
			app.UpdateItemInput{
				Title:           req.Title,
				Link:            req.Link,
				Price:           req.Price,
				MinContribution: req.MinContribution,
				ImageURL:        req.ImageURL,
				SortOrder:       req.SortOrder,
			})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

// HandleDeleteItem returns the handler for DELETE /wishlists/m/{creatorSecret}/items/{itemID}.
// A reserved or funded item deletes all the same; its guests' secrets stop
// resolving.
func HandleDeleteItem(svc ItemManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteItem(r.Context(), chi.URLParam(r, "creatorSecret"), chi.URLParam(r, "itemID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
