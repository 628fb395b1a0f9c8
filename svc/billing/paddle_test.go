package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaddlePayload(t *testing.T) {
	t.Parallel()

	t.Run("transaction completed", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{
			"event_id": "evt_01",
			"event_type": "transaction.completed",
			"occurred_at": "2025-06-01T12:00:00Z",
			"data": {
				"id": "txn_01",
				"subscription_id": "sub_01",
				"customer_id": "ctm_01",
				"status": "completed",
				"custom_data": {"business_id": "biz-1", "email": "hello@roast.club"},
				"billing_period": {
					"starts_at": "2025-06-01T12:00:00Z",
					"ends_at": "2025-07-01T12:00:00Z"
				},
				"items": [{"price": {"id": "pri_pro_monthly"}}]
			}
		}`)

		event, err := parsePaddlePayload(payload)
		require.NoError(t, err)
		assert.Equal(t, EventCheckoutCompleted, event.Type)
		assert.Equal(t, "transaction.completed", event.ProviderEvent)
		assert.Equal(t, "evt_01", event.ID)
		assert.Equal(t, "biz-1", event.BusinessID)
		assert.Equal(t, "ctm_01", event.CustomerRef)
		assert.Equal(t, "sub_01", event.SubscriptionRef)
		assert.Equal(t, "pri_pro_monthly", event.PriceRef)
		require.NotNil(t, event.CurrentPeriodEnd)
		assert.Equal(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC), *event.CurrentPeriodEnd)
	})

	t.Run("subscription updated with scheduled cancellation", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{
			"event_id": "evt_02",
			"event_type": "subscription.updated",
			"occurred_at": "2025-06-15T08:30:00Z",
			"data": {
				"id": "sub_01",
				"customer_id": "ctm_01",
				"status": "active",
				"custom_data": {"business_id": "biz-1"},
				"current_billing_period": {
					"starts_at": "2025-06-01T12:00:00Z",
					"ends_at": "2025-07-01T12:00:00Z"
				},
				"scheduled_change": {
					"action": "cancel",
					"effective_at": "2025-07-01T12:00:00Z"
				},
				"items": [{"price": {"id": "pri_pro_monthly"}}]
			}
		}`)

		event, err := parsePaddlePayload(payload)
		require.NoError(t, err)
		assert.Equal(t, EventSubscriptionUpdated, event.Type)
		assert.Equal(t, "sub_01", event.SubscriptionRef)
		assert.Equal(t, "active", event.Status)
		assert.True(t, event.CancelAtPeriodEnd)
		require.NotNil(t, event.CancelAt)
		assert.Equal(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC), *event.CancelAt)
	})

	t.Run("scheduled pause is not a cancellation", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{
			"event_id": "evt_03",
			"event_type": "subscription.updated",
			"occurred_at": "2025-06-15T08:30:00Z",
			"data": {
				"id": "sub_01",
				"customer_id": "ctm_01",
				"status": "active",
				"scheduled_change": {"action": "pause", "effective_at": "2025-07-01T12:00:00Z"}
			}
		}`)

		event, err := parsePaddlePayload(payload)
		require.NoError(t, err)
		assert.False(t, event.CancelAtPeriodEnd)
		assert.Nil(t, event.CancelAt)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		_, err := parsePaddlePayload([]byte(`{"event_type": "subscription.updated", "data": "not-an-object"}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestMapPaddleEventType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want EventType
	}{
		{"transaction.completed", EventCheckoutCompleted},
		{"subscription.updated", EventSubscriptionUpdated},
		{"subscription.resumed", EventSubscriptionUpdated},
		{"subscription.canceled", EventSubscriptionCanceled},
		{"transaction.payment_succeeded", EventPaymentSucceeded},
		{"transaction.payment_failed", EventPaymentFailed},
		{"address.created", EventUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapPaddleEventType(tt.in), tt.in)
	}
}
