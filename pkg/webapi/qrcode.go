package webapi

import (
	"encoding/hex"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQRCodePNG renders content as a PNG QR code. fg and bg are
// optional hex colours (rgb or rrggbb).
func GenerateQRCodePNG(content string, size int, fg string, bg string) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return []byte{}, err
	}
	if c, ok := parseColor(fg); ok {
		q.ForegroundColor = c
	}
	if c, ok := parseColor(bg); ok {
		q.BackgroundColor = c
	}
	return q.PNG(size)
}

func parseColor(s string) (color.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return nil, false
	}
	rgb, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 0xff}, true
}
