package catalog

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const maxImageBytes = 6 << 20

var vnd = message.NewPrinter(language.Vietnamese)

// formatVND renders a price the way vi-VN shows đồng: grouped with dots, no
// fraction, symbol last.
func formatVND(v float64) string {
	return vnd.Sprintf("%v ₫", number.Decimal(v, number.MaxFractionDigits(0)))
}

// imageDataURL reads an uploaded file into a data URL, typing it by content
// rather than by the client-supplied name.
func imageDataURL(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	mt := mimetype.Detect(raw)
	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mt.String())
	b.WriteString(";base64,")
	enc := base64.NewEncoder(base64.StdEncoding, &b)
	_, _ = io.Copy(enc, bytes.NewReader(raw))
	_ = enc.Close()
	return b.String(), nil
}

// imageSrc lets inline image data URLs through html/template, which would
// otherwise replace any data: URL.
func imageSrc(s string) any {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return s
}
