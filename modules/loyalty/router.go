// Package loyalty exposes the stamp-card operations over HTTP: scanning,
// redemption, member badges and business settings.
package loyalty

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/stampkit/binder"
	"github.com/dmitrymomot/stampkit/pkg/qrcode"
	loyaltysvc "github.com/dmitrymomot/stampkit/svc/loyalty"
)

// maxLogoBody bounds logo upload request bodies.
const maxLogoBody = 4 << 20

// bindPath binds chi route parameters into tagged request structs.
var bindPath = binder.Path(chi.URLParam)

// businessRequest carries the business ID shared by the settings endpoints.
type businessRequest struct {
	BusinessID string `path:"businessID"`
}

// Module wires the loyalty service into an HTTP router.
type Module struct {
	svc *loyaltysvc.Service
	log *slog.Logger
}

// NewModule creates the loyalty HTTP module. Panics on a nil service to fail
// fast during initialization.
func NewModule(svc *loyaltysvc.Service, log *slog.Logger) *Module {
	if svc == nil {
		panic("loyalty module: service is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Module{svc: svc, log: log}
}

// Handle returns the module's router.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/users", m.createUser)
	r.Get("/members/{memberID}/badge", m.memberBadge)

	r.Post("/scan", m.scan)
	r.Post("/cards/{cardID}/redeem", m.redeem)

	r.Post("/businesses", m.createBusiness)
	r.Put("/businesses/{businessID}/card-config", m.updateCardConfig)
	r.Post("/businesses/{businessID}/logo", m.uploadLogo)
	r.Get("/businesses/{businessID}/activity", m.activity)

	return r
}

type createUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	UserType    string `json:"user_type"`
}

func (m *Module) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := binder.BindJSON()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	userType := loyaltysvc.UserType(req.UserType)
	if userType != loyaltysvc.UserTypeCustomer && userType != loyaltysvc.UserTypeBusiness {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "unknown user type", Code: "invalid_input"})
		return
	}

	user, err := m.svc.CreateUser(r.Context(), loyaltysvc.CreateUserParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		UserType:    userType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type memberBadgeRequest struct {
	MemberID string `path:"memberID"`
	Size     int    `query:"size"`
}

// memberBadge serves the customer's QR badge as PNG. The badge encodes the
// member ID only; scanning it is what kicks off the stamp flow.
func (m *Module) memberBadge(w http.ResponseWriter, r *http.Request) {
	var req memberBadgeRequest
	if err := bindPath(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := binder.BindQuery()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := m.svc.CustomerByMemberID(r.Context(), req.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}

	size := qrcode.DefaultSize
	if req.Size > 0 && req.Size <= 1024 {
		size = req.Size
	}

	png, err := qrcode.Badge(user.MemberID, size)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	_, _ = w.Write(png)
}

type scanRequest struct {
	MemberID   string `json:"member_id"`
	BusinessID string `json:"business_id"`
	IssuerID   string `json:"issuer_id"`
}

type scanResponse struct {
	Card       *loyaltysvc.StampCard `json:"card"`
	StampCount int                   `json:"stamp_count"`
	Completed  bool                  `json:"completed"`
}

func (m *Module) scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := binder.BindJSON()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, res, err := m.svc.Scan(r.Context(), req.MemberID, req.BusinessID, req.IssuerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Card:       card,
		StampCount: res.StampCount,
		Completed:  res.Completed,
	})
}

type redeemRequest struct {
	CardID   string `path:"cardID" json:"-"`
	IssuerID string `json:"issuer_id"`
}

func (m *Module) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := bindPath(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := binder.BindJSON()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := m.svc.RedeemReward(r.Context(), req.CardID, req.IssuerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createBusinessRequest struct {
	OwnerID      string                      `json:"owner_id"`
	Name         string                      `json:"name"`
	BusinessType string                      `json:"business_type"`
	Email        string                      `json:"email"`
	Config       *loyaltysvc.StampCardConfig `json:"config,omitempty"`
}

func (m *Module) createBusiness(w http.ResponseWriter, r *http.Request) {
	var req createBusinessRequest
	if err := binder.BindJSON()(r, &req); err != nil {
		writeError(w, err)
		return
	}

	business, err := m.svc.CreateBusiness(r.Context(), loyaltysvc.CreateBusinessParams{
		OwnerID:      req.OwnerID,
		Name:         req.Name,
		BusinessType: req.BusinessType,
		Email:        req.Email,
		Config:       req.Config,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, business)
}

func (m *Module) updateCardConfig(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := bindPath(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var cfg loyaltysvc.StampCardConfig
	if err := binder.BindJSON()(r, &cfg); err != nil {
		writeError(w, err)
		return
	}

	business, err := m.svc.UpdateStampCardConfig(r.Context(), req.BusinessID, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, business)
}

// uploadLogo takes the raw image as the request body; the Content-Type
// header declares the format.
func (m *Module) uploadLogo(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := bindPath(r, &req); err != nil {
		writeError(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxLogoBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body", Code: "bad_request"})
		return
	}

	url, err := m.svc.UploadLogo(r.Context(), req.BusinessID, data, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"logo_url": url})
}

func (m *Module) activity(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := bindPath(r, &req); err != nil {
		writeError(w, err)
		return
	}

	feed, err := m.svc.RecentActivity(r.Context(), req.BusinessID)
	if err != nil {
		writeError(w, err)
		return
	}
	if feed == nil {
		feed = []loyaltysvc.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": feed})
}
