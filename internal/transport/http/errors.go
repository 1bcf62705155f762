package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wishwell/api/internal/domain"
)

const (
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeMethodNotAllowed   = "method_not_allowed"
	codeTitleRequired      = "title_required"
	codeNameRequired       = "name_required"
	codeInvalidAmount      = "invalid_amount"
	codeInvalidPrice       = "invalid_price"
	codeInvalidCurrency    = "invalid_currency"
	codePriceBelowTotal    = "price_below_contributed_total"
	codeItemNotPriced      = "item_not_priced"
	codeItemReserved       = "item_reserved"
	codeBelowMinimum       = "below_minimum_contribution"
	codeAlreadyReserved    = "already_reserved"
	codeExceedsRemaining   = "exceeds_remaining"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError translates the domain taxonomy to HTTP: not-found 404,
// validation 422, lost races 409, everything else an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrTitleRequired):
		writeError(w, http.StatusUnprocessableEntity, codeTitleRequired, err.Error())
	case errors.Is(err, domain.ErrNameRequired):
		writeError(w, http.StatusUnprocessableEntity, codeNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidCurrency):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidCurrency, err.Error())
	case errors.Is(err, domain.ErrPriceBelowTotal):
		writeError(w, http.StatusUnprocessableEntity, codePriceBelowTotal, err.Error())
	case errors.Is(err, domain.ErrItemNotPriced):
		writeError(w, http.StatusUnprocessableEntity, codeItemNotPriced, err.Error())
	case errors.Is(err, domain.ErrItemReserved):
		writeError(w, http.StatusUnprocessableEntity, codeItemReserved, err.Error())
	case errors.Is(err, domain.ErrBelowMinimum):
		writeError(w, http.StatusUnprocessableEntity, codeBelowMinimum, err.Error())
	case errors.Is(err, domain.ErrAlreadyReserved):
		writeError(w, http.StatusConflict, codeAlreadyReserved, err.Error())
	case errors.Is(err, domain.ErrExceedsRemaining):
		writeError(w, http.StatusConflict, codeExceedsRemaining, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
