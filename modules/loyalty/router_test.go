package loyalty_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stampkit/modules/loyalty"
	"github.com/dmitrymomot/stampkit/pkg/locker"
	loyaltysvc "github.com/dmitrymomot/stampkit/svc/loyalty"
)

type fixture struct {
	handler  http.Handler
	store    *loyaltysvc.MemoryStore
	svc      *loyaltysvc.Service
	business *loyaltysvc.Business
	customer *loyaltysvc.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := loyaltysvc.NewMemoryStore()
	svc := loyaltysvc.NewService(store, store, store, store, store, locker.NewMemoryLocker())

	business, err := svc.CreateBusiness(ctx, loyaltysvc.CreateBusinessParams{
		OwnerID:      "owner-1",
		Name:         "Roast Club",
		BusinessType: "cafe",
		Email:        "hello@roast.club",
	})
	require.NoError(t, err)

	customer, err := svc.CreateUser(ctx, loyaltysvc.CreateUserParams{
		Email:       "jo@example.com",
		DisplayName: "Jo",
		UserType:    loyaltysvc.UserTypeCustomer,
	})
	require.NoError(t, err)

	return &fixture{
		handler:  loyalty.NewModule(svc, nil).Handle(),
		store:    store,
		svc:      svc,
		business: business,
		customer: customer,
	}
}

func (f *fixture) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestScanEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("stamps on scan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.postJSON(t, "/scan", map[string]string{
			"member_id":   f.customer.MemberID,
			"business_id": f.business.ID,
			"issuer_id":   "owner-1",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			StampCount int  `json:"stamp_count"`
			Completed  bool `json:"completed"`
			Card       struct {
				BusinessName string `json:"business_name"`
			} `json:"card"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.StampCount)
		assert.False(t, resp.Completed)
		assert.Equal(t, "Roast Club", resp.Card.BusinessName)
	})

	t.Run("malformed member ID", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.postJSON(t, "/scan", map[string]string{
			"member_id":   "not-a-member-id",
			"business_id": f.business.ID,
			"issuer_id":   "owner-1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("cooldown maps to 429", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		first := f.postJSON(t, "/scan", map[string]string{
			"member_id":   f.customer.MemberID,
			"business_id": f.business.ID,
			"issuer_id":   "owner-1",
		})
		require.Equal(t, http.StatusOK, first.Code)

		second := f.postJSON(t, "/scan", map[string]string{
			"member_id":   f.customer.MemberID,
			"business_id": f.business.ID,
			"issuer_id":   "owner-1",
		})
		assert.Equal(t, http.StatusTooManyRequests, second.Code)

		var resp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
		assert.Equal(t, "cooldown", resp.Code)
	})

	t.Run("quota exhaustion maps to 402 upgrade_required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		b, err := f.store.BusinessByID(ctx, f.business.ID)
		require.NoError(t, err)
		b.Stats.TotalCustomers = b.Usage.MaxCustomers
		require.NoError(t, f.store.SaveBusiness(ctx, b))

		rec := f.postJSON(t, "/scan", map[string]string{
			"member_id":   f.customer.MemberID,
			"business_id": f.business.ID,
			"issuer_id":   "owner-1",
		})
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)

		var resp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "upgrade_required", resp.Code)
	})

	t.Run("rejects non-JSON body", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader([]byte("member_id=x")))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMemberBadgeEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("serves a PNG", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/members/"+f.customer.MemberID+"/badge?size=128", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 0x50, 0x4E, 0x47}))
	})

	t.Run("non-numeric size rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/members/"+f.customer.MemberID+"/badge?size=huge", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "bad_request")
	})

	t.Run("out-of-range size falls back to the default", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/members/"+f.customer.MemberID+"/badge?size=9999", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	})

	t.Run("unknown member", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/members/RC-2025-999999/badge", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRedeemEndpoint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)

	card, err := f.svc.FindOrCreateCard(ctx, f.customer.ID, f.business.ID)
	require.NoError(t, err)

	t.Run("incomplete card conflicts", func(t *testing.T) {
		rec := f.postJSON(t, "/cards/"+card.ID+"/redeem", map[string]string{"issuer_id": "owner-1"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("completed card redeems", func(t *testing.T) {
		stored, err := f.store.CardByID(ctx, card.ID)
		require.NoError(t, err)
		now := time.Now().UTC()
		stored.CurrentStamps = stored.TotalStamps
		stored.IsCompleted = true
		stored.CompletedAt = &now
		require.NoError(t, f.store.SaveCard(ctx, stored))

		rec := f.postJSON(t, "/cards/"+card.ID+"/redeem", map[string]string{"issuer_id": "owner-1"})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown card", func(t *testing.T) {
		rec := f.postJSON(t, "/cards/missing/redeem", map[string]string{"issuer_id": "owner-1"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBusinessEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("creates a business", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.postJSON(t, "/businesses", map[string]any{
			"owner_id":      "owner-2",
			"name":          "Bean Bar",
			"business_type": "cafe",
			"email":         "hi@beanbar.io",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var created struct {
			ID    string `json:"id"`
			Usage struct {
				MaxCustomers int `json:"max_customers"`
			} `json:"usage"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, 50, created.Usage.MaxCustomers)
	})

	t.Run("card config out of tier range", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		raw, err := json.Marshal(map[string]any{"total_stamps": 5, "reward": "Free Tea"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/businesses/"+f.business.ID+"/card-config", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("logo upload gated on free tier", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/businesses/"+f.business.ID+"/logo", bytes.NewReader([]byte("png")))
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("activity feed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.postJSON(t, "/scan", map[string]string{
			"member_id":   f.customer.MemberID,
			"business_id": f.business.ID,
			"issuer_id":   "owner-1",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/businesses/"+f.business.ID+"/activity", nil)
		feedRec := httptest.NewRecorder()
		f.handler.ServeHTTP(feedRec, req)

		require.Equal(t, http.StatusOK, feedRec.Code)
		var resp struct {
			Transactions []struct {
				Type string `json:"type"`
			} `json:"transactions"`
		}
		require.NoError(t, json.Unmarshal(feedRec.Body.Bytes(), &resp))
		require.Len(t, resp.Transactions, 2)
		assert.Equal(t, "stamp_added", resp.Transactions[0].Type)
	})
}
