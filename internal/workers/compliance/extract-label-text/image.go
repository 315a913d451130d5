package extractlabeltext

import (
	"encoding/base64"
	"net/http"
	"strings"

	"label-compliance/internal/common/errors"
)

// sniffedTypes maps DetectContentType results to short image type names.
var sniffedTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// validateImage decodes the payload and checks size and format, in that order.
// It returns the decoded bytes and the sniffed type.
func validateImage(encoded string, maxSize int64, allowed []string) ([]byte, string, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, "", errors.NewBase64ValidationError("Image data is required")
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return nil, "", errors.NewBase64ValidationError("Invalid base64 image data")
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, "", errors.NewImageSizeError(int64(len(data)), maxSize)
	}

	detected := sniffImageType(data)
	if !typeAllowed(detected, allowed) {
		return nil, "", errors.NewUnsupportedImageTypeError(detected, allowed)
	}
	return data, detected, nil
}

// decodeBase64 accepts a data URI prefix, embedded whitespace and missing padding.
func decodeBase64(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return data, err
}

func sniffImageType(data []byte) string {
	if t, ok := sniffedTypes[http.DetectContentType(data)]; ok {
		return t
	}
	return "unknown"
}

func typeAllowed(detected string, allowed []string) bool {
	for _, a := range allowed {
		a = strings.TrimPrefix(strings.ToLower(a), "image/")
		if a == detected || (a == "jpg" && detected == "jpeg") {
			return true
		}
	}
	return false
}
