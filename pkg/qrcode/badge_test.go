package qrcode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stampkit/pkg/qrcode"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47}

func TestBadge(t *testing.T) {
	t.Parallel()

	t.Run("renders a PNG", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Badge("RC-2025-123456", 128)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, pngHeader))
	})

	t.Run("defaults the size", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Badge("RC-2025-123456", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Badge("   ", 128)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestBadgeDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.BadgeDataURI("RC-2025-123456", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = qrcode.BadgeDataURI("", 128)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
