// Package billing exposes checkout, customer portal and webhook intake over
// HTTP.
package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/stampkit/binder"
	billingsvc "github.com/dmitrymomot/stampkit/svc/billing"
	loyaltysvc "github.com/dmitrymomot/stampkit/svc/loyalty"
)

// maxWebhookBody bounds webhook request bodies; provider payloads are small.
const maxWebhookBody = 1 << 20

// signatureHeader carries the provider's payload signature.
const signatureHeader = "Paddle-Signature"

// Module wires billing sessions and webhook intake into an HTTP router.
type Module struct {
	svc        *billingsvc.Service
	provider   billingsvc.Provider
	reconciler *billingsvc.Reconciler
	log        *slog.Logger
}

// NewModule creates the billing HTTP module. Panics on nil dependencies to
// fail fast during initialization.
func NewModule(svc *billingsvc.Service, provider billingsvc.Provider, reconciler *billingsvc.Reconciler, log *slog.Logger) *Module {
	if svc == nil {
		panic("billing module: service is required")
	}
	if provider == nil {
		panic("billing module: provider is required")
	}
	if reconciler == nil {
		panic("billing module: reconciler is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Module{svc: svc, provider: provider, reconciler: reconciler, log: log}
}

// Handle returns the module's router.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/plans", m.plans)
	r.Post("/checkout", m.checkout)
	r.Post("/portal", m.portal)
	r.Post("/webhook", m.webhook)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billingsvc.ErrPlanNotFound),
		errors.Is(err, loyaltysvc.ErrBusinessNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, billingsvc.ErrMissingCustomerRef):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "no_subscription"})
	case errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func (m *Module) plans(w http.ResponseWriter, r *http.Request) {
	plans, err := m.svc.PublicPlans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

type checkoutRequest struct {
	BusinessID string `json:"business_id"`
	PlanID     string `json:"plan_id"`
	SuccessURL string `json:"success_url"`
}

func (m *Module) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := binder.BindJSON()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	link, err := m.svc.CreateCheckoutLink(r.Context(), req.BusinessID, req.PlanID, req.SuccessURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url":        link.URL,
		"session_id": link.SessionID,
	})
}

type portalRequest struct {
	BusinessID string `json:"business_id"`
}

func (m *Module) portal(w http.ResponseWriter, r *http.Request) {
	var req portalRequest
	if err := binder.BindJSON()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	link, err := m.svc.GetCustomerPortalLink(r.Context(), req.BusinessID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
}

// webhook ingests signed provider notifications. Only a failed signature
// check earns a 400; everything else is acknowledged with 200 so the
// provider stops redelivering events we have already decided to drop.
func (m *Module) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		m.log.ErrorContext(r.Context(), "failed to read webhook body", slog.Any("error", err))
		w.WriteHeader(http.StatusOK)
		return
	}

	event, err := m.provider.ParseWebhook(r.Context(), payload, r.Header.Get(signatureHeader))
	if err != nil {
		if errors.Is(err, billingsvc.ErrInvalidSignature) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.log.ErrorContext(r.Context(), "failed to parse webhook", slog.Any("error", err))
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := m.reconciler.Apply(r.Context(), event); err != nil {
		m.log.ErrorContext(r.Context(), "failed to apply billing event",
			slog.String("provider_event", event.ProviderEvent),
			slog.String("event_id", event.ID),
			slog.Any("error", err),
		)
	}
	w.WriteHeader(http.StatusOK)
}
