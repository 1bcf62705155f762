package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishwell/api/internal/app"
	"github.com/wishwell/api/internal/domain"
)

// Contributor is the minimal interface for the contribution track.
type Contributor interface {
	Contribute(ctx context.Context, in app.ContributeInput) (app.ContributeResult, error)
	Get(ctx context.Context, contributorSecret string) (domain.ContributionView, error)
	Cancel(ctx context.Context, contributorSecret string) error
}

type contributeRequest struct {
	ContributorName string `json:"contributor_name"`
	Amount          int64  `json:"amount"`
}

type contributeResponse struct {
	ContributorSecret string `json:"contributor_secret"`
}

// HandleContributeItem returns the handler for
// POST /wishlists/s/{slug}/items/{itemID}/contribute.
func HandleContributeItem(svc Contributor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contributeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		result, err := svc.Contribute(r.Context(), app.ContributeInput{
			Slug:            chi.URLParam(r, "slug"),
			ItemID:          chi.URLParam(r, "itemID"),
			ContributorName: req.ContributorName,
			Amount:          req.Amount,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, contributeResponse{ContributorSecret: result.ContributorSecret})
	}
}

// HandleGetContribution returns the handler for GET /contributions/{contributorSecret}.
func HandleGetContribution(svc Contributor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), chi.URLParam(r, "contributorSecret"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleCancelContribution returns the handler for DELETE /contributions/{contributorSecret}.
func HandleCancelContribution(svc Contributor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Cancel(r.Context(), chi.URLParam(r, "contributorSecret")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
