package shop

import (
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxImageBytes = 5 << 20

var (
	ErrNotImage      = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image too large")
	ErrEmptyImage    = errors.New("empty image")
)

// EncodeImage reads an uploaded file and returns it as a data URI suitable
// for Product.Image.
func EncodeImage(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", ErrEmptyImage
	}
	if len(b) > MaxImageBytes {
		return "", ErrImageTooLarge
	}

	mime := mimetype.Detect(b).String()
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
