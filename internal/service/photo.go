package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

// DefaultPhotoMaxBytes caps decoded photo payloads when no limit is configured.
const DefaultPhotoMaxBytes int64 = 2 * 1024 * 1024

var allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/webp"}

// PhotoBodyLimit is the request body cap for JSON payloads that may carry a photo of
// maxBytes as a base64 data URI, leaving room for the other fields.
func PhotoBodyLimit(maxBytes int64) int64 {
	if maxBytes <= 0 {
		maxBytes = DefaultPhotoMaxBytes
	}
	return int64(base64.StdEncoding.EncodedLen(int(maxBytes))) + 64<<10
}

func photoTooLarge(maxBytes int64) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("photo exceeds %d bytes", maxBytes))
}

// EncodePhoto sniffs the payload type and renders it as a canonical data URI.
func EncodePhoto(payload []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultPhotoMaxBytes
	}
	if len(payload) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "photo is empty")
	}
	if int64(len(payload)) > maxBytes {
		return "", photoTooLarge(maxBytes)
	}

	detected := mimetype.Detect(payload)
	for _, allowed := range allowedPhotoTypes {
		if detected.Is(allowed) {
			return "data:" + allowed + ";base64," + base64.StdEncoding.EncodeToString(payload), nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "photo must be a JPEG, PNG or WebP image")
}

// NormalizePhoto validates a data URI photo and re-encodes it canonically. The declared
// media type is ignored in favour of the sniffed one. Whitespace after "data:" and after
// the comma is tolerated. An empty input yields an empty photo. Oversized payloads are
// rejected from their encoded length, before decoding.
func NormalizePhoto(raw string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultPhotoMaxBytes
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	payload, err := decodeDataURI(raw, maxBytes)
	if errors.Is(err, errPhotoTooLarge) {
		return "", photoTooLarge(maxBytes)
	}
	if err != nil {
		return "", appErrors.Validation(err, "photo must be a base64 data URI")
	}
	return EncodePhoto(payload, maxBytes)
}

var errPhotoTooLarge = errors.New("photo too large")

func decodeDataURI(raw string, maxBytes int64) ([]byte, error) {
	if !strings.HasPrefix(strings.ToLower(raw), "data:") {
		return nil, fmt.Errorf("missing data: scheme")
	}
	header, body, found := strings.Cut(raw[len("data:"):], ",")
	if !found {
		return nil, fmt.Errorf("missing payload separator")
	}
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(header)), ";base64") {
		return nil, fmt.Errorf("payload is not base64 encoded")
	}

	body = strings.Join(strings.Fields(body), "")
	if int64(base64.RawStdEncoding.DecodedLen(len(strings.TrimRight(body, "=")))) > maxBytes {
		return nil, errPhotoTooLarge
	}
	payload, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		payload, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
	}
	return payload, nil
}
