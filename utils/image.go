package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxImageSize caps attached images, before encoding.
const MaxImageSize = 5 * 1024 * 1024

var (
	ErrImageTooLarge = errors.New("image is larger than 5 MB")
	ErrNotAnImage    = errors.New("file is not an image")
	ErrBadDataURI    = errors.New("malformed data URI")
)

// ImageDataURI sniffs data and returns it as a base64 data URI.
func ImageDataURI(data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w (detected %s)", ErrNotAnImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ParseImageDataURI checks that uri is a base64 image data URI within
// MaxImageSize and returns its media type.
func ParseImageDataURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", ErrBadDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", ErrBadDataURI
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotAnImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+2 {
		return "", ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	return mime, nil
}
