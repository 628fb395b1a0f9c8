// Package qrcode renders QR badges as PNG bytes or data URIs, wrapping
// github.com/skip2/go-qrcode with validation and defaults.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent     = errors.New("qr content cannot be empty")
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// DefaultSize is the badge edge length in pixels when none is requested.
const DefaultSize = 256

// Badge renders content as a PNG QR code. High error correction keeps the
// code scannable from worn print-outs and dim phone screens.
func Badge(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.High, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// BadgeDataURI renders content as a data URI for direct embedding in an
// <img> tag.
func BadgeDataURI(content string, size int) (string, error) {
	png, err := Badge(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
