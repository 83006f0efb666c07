package qr

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

const (
	minSize     = 64
	maxSize     = 1024
	defaultSize = 256
)

// Options controls the rendered PNG. Level accepts the usual single letter
// error correction names; empty means M.
type Options struct {
	Size  int
	Level string
}

// Generate renders the content as a QR code PNG.
func Generate(content string, opts Options) ([]byte, error) {
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content required")
	}

	size := opts.Size
	if size == 0 {
		size = defaultSize
	}
	if size < minSize || size > maxSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("size must be between %d and %d", minSize, maxSize))
	}

	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(content, level, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr code")
	}
	return png, nil
}

// GenerateProfileURL renders the QR code for a public profile page.
func GenerateProfileURL(baseURL, username string, opts Options) ([]byte, error) {
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || !parsed.IsAbs() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base url must be absolute")
	}
	return Generate(parsed.JoinPath(username).String(), opts)
}

func recoveryLevel(level string) (qrcode.RecoveryLevel, error) {
	switch level {
	case "", "M":
		return qrcode.Medium, nil
	case "L":
		return qrcode.Low, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "level must be one of L, M, Q, H")
	}
}
