package service

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

func TestEncodePhotoSniffsType(t *testing.T) {
	uri, err := EncodePhoto(pngBytes(t), 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestEncodePhotoRejectsNonImages(t *testing.T) {
	_, err := EncodePhoto([]byte("plain text, not a picture"), 0)
	requireCode(t, err, appErrors.ErrValidation)
}

func TestEncodePhotoRejectsOversize(t *testing.T) {
	_, err := EncodePhoto(pngBytes(t), 10)
	requireCode(t, err, appErrors.ErrValidation)
}

func TestNormalizePhotoToleratesClientSpacing(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(pngBytes(t))
	uri, err := NormalizePhoto("data: image/jpeg;base64, "+b64, 0)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+b64, uri)
}

func TestNormalizePhotoEmpty(t *testing.T) {
	uri, err := NormalizePhoto("   ", 0)
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestNormalizePhotoRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"https://example.com/me.png",
		"data:image/png,rawbytes",
		"data:image/png;base64",
		"data:image/png;base64,!!!not-base64!!!",
	} {
		_, err := NormalizePhoto(raw, 0)
		requireCode(t, err, appErrors.ErrValidation)
	}
}

func TestNormalizePhotoRejectsOversizeBeforeDecoding(t *testing.T) {
	// Not valid base64: a size error proves the body was never decoded.
	_, err := NormalizePhoto("data:image/png;base64,"+strings.Repeat("!", 4096), 1024)
	requireCode(t, err, appErrors.ErrValidation)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "photo exceeds 1024 bytes", appErr.Message)
}

func TestNormalizePhotoAcceptsPayloadAtLimit(t *testing.T) {
	payload := pngBytes(t)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		uri, err := NormalizePhoto("data:image/png;base64,"+enc.EncodeToString(payload), int64(len(payload)))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	}
}

func TestPhotoBodyLimitCoversEncodedPhoto(t *testing.T) {
	limit := PhotoBodyLimit(1024)
	assert.Greater(t, limit, int64(base64.StdEncoding.EncodedLen(1024)))
	assert.Equal(t, PhotoBodyLimit(DefaultPhotoMaxBytes), PhotoBodyLimit(0))
}
