package binder_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stampkit/binder"
)

func TestPath(t *testing.T) {
	t.Parallel()

	type cardRequest struct {
		CardID     string `path:"cardID"`
		BusinessID string `path:"businessID"`
		Revision   int    `path:"revision"`
		Internal   string `path:"-"`
	}

	extractorFor := func(params map[string]string) func(r *http.Request, name string) string {
		return func(r *http.Request, name string) string { return params[name] }
	}

	t.Run("binds tagged fields from route params", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cards/c-1", nil)

		var result cardRequest
		err := binder.Path(extractorFor(map[string]string{
			"cardID":     "c-1",
			"businessID": "biz-1",
			"revision":   "3",
			"Internal":   "nope",
		}))(req, &result)

		require.NoError(t, err)
		assert.Equal(t, "c-1", result.CardID)
		assert.Equal(t, "biz-1", result.BusinessID)
		assert.Equal(t, 3, result.Revision)
		assert.Empty(t, result.Internal, "dash tag skips the field")
	})

	t.Run("missing params leave zero values", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cards/c-1", nil)

		var result cardRequest
		err := binder.Path(extractorFor(map[string]string{"cardID": "c-1"}))(req, &result)

		require.NoError(t, err)
		assert.Equal(t, "c-1", result.CardID)
		assert.Empty(t, result.BusinessID)
		assert.Zero(t, result.Revision)
	})

	t.Run("non-numeric value for int field", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cards/c-1", nil)

		var result cardRequest
		err := binder.Path(extractorFor(map[string]string{"revision": "latest"}))(req, &result)

		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("untagged field falls back to the lowercase name", func(t *testing.T) {
		t.Parallel()
		type plain struct {
			MemberID string
		}
		req := httptest.NewRequest(http.MethodGet, "/members/RC-2025-123456", nil)

		var result plain
		err := binder.Path(extractorFor(map[string]string{"memberid": "RC-2025-123456"}))(req, &result)

		require.NoError(t, err)
		assert.Equal(t, "RC-2025-123456", result.MemberID)
	})

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cards/c-1", nil)

		var result cardRequest
		err := binder.Path(nil)(req, &result)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cards/c-1", nil)

		err := binder.Path(extractorFor(nil))(req, cardRequest{})
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})
}
