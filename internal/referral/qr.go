package referral

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRSize is the default edge length of a referral QR image in pixels.
const QRSize = 256

// QRCode renders link as a PNG QR code of size×size pixels.
func QRCode(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, errors.New("empty referral link")
	}
	if size <= 0 {
		size = QRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode referral qr: %w", err)
	}
	return png, nil
}
