package service

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

type DefaultQRGenerator struct {
	BaseURL string
	Size    int
}

func (g DefaultQRGenerator) MenuURL(token string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/menu/" + token
}

func (g DefaultQRGenerator) Generate(token string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.MenuURL(token), qrcode.Medium, size)
}
