package loyalty

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/stampkit/binder"
	"github.com/dmitrymomot/stampkit/pkg/memberid"
	loyaltysvc "github.com/dmitrymomot/stampkit/svc/loyalty"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP semantics. Quota exhaustion is an
// upgrade prompt, not a client mistake, so it gets 402 with a stable code the
// frontend keys its paywall on.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case loyaltysvc.IsQuotaError(err), errors.Is(err, loyaltysvc.ErrLogoNotAllowed):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: err.Error(), Code: "upgrade_required"})
	case errors.Is(err, loyaltysvc.ErrStampCooldown):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error(), Code: "cooldown"})
	case errors.Is(err, loyaltysvc.ErrCardNotFound),
		errors.Is(err, loyaltysvc.ErrBusinessNotFound),
		errors.Is(err, loyaltysvc.ErrCustomerNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, memberid.ErrInvalidFormat),
		errors.Is(err, loyaltysvc.ErrStampCountOutOfRange):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_input"})
	case errors.Is(err, loyaltysvc.ErrCardFinalized),
		errors.Is(err, loyaltysvc.ErrCardFull),
		errors.Is(err, loyaltysvc.ErrCardNotReady):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "card_state"})
	case errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType),
		errors.Is(err, binder.ErrInvalidQuery),
		errors.Is(err, binder.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}
