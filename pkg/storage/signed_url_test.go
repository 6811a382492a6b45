package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, link, err := signer.Sign("user-1", "user-1/transcript.pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "v1.user-1."))

	verified, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, link.OwnerID, verified.OwnerID)
	assert.Equal(t, "user-1/transcript.pdf", verified.Name)
	assert.True(t, link.ExpiresAt.Equal(verified.ExpiresAt))
}

func TestSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Now()
	signer.now = func() time.Time { return base }
	token, _, err := signer.Sign("user-1", "user-1/transcript.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	link, err := signer.Verify(token)
	assert.ErrorIs(t, err, ErrLinkExpired)
	assert.Equal(t, "user-1", link.OwnerID)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Sign("user-1", "user-1/transcript.csv")
	require.NoError(t, err)

	forged := strings.Replace(token, "user-1", "user-2", 1)
	_, err = signer.Verify(forged)
	assert.ErrorIs(t, err, ErrLinkInvalid)

	_, err = NewSignedURLSigner("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrLinkInvalid)

	_, err = signer.Verify("a.b.c.d")
	assert.ErrorIs(t, err, ErrLinkInvalid)
}

func TestSignerRequiresSecretAndCleanOwner(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Sign("user-1", "file.csv")
	assert.Error(t, err)

	_, _, err = NewSignedURLSigner("secret", time.Hour).Sign("user.1", "file.csv")
	assert.Error(t, err)
}
