package utils

import (
	"encoding/base64"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// QRGenerator produces the opaque token stored on a visitor and scanned at
// entry/exit. The token must be unique per visitor; both strategies get that
// from the millisecond timestamp component.
type QRGenerator interface {
	Generate(name, aadhaarNumber string, now time.Time) (string, error)
}

// IdentityQRGenerator stores the plain identity string.
type IdentityQRGenerator struct{}

func (IdentityQRGenerator) Generate(name, aadhaarNumber string, now time.Time) (string, error) {
	return fmt.Sprintf("VISITOR:%s:%s:%d", name, aadhaarNumber, now.UnixMilli()), nil
}

// ImageQRGenerator encodes the identity string as a scannable PNG and stores
// it as a base64 data URL.
type ImageQRGenerator struct {
	Size int
}

func (g ImageQRGenerator) Generate(name, aadhaarNumber string, now time.Time) (string, error) {
	data, err := IdentityQRGenerator{}.Generate(name, aadhaarNumber, now)
	if err != nil {
		return "", err
	}

	size := g.Size
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("qr code generation failed: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
