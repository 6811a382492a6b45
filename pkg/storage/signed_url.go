package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const tokenVersion = "v1"

var (
	// ErrLinkInvalid covers malformed, forged and foreign tokens.
	ErrLinkInvalid = errors.New("invalid download link")
	// ErrLinkExpired is returned for a genuine token past its expiry.
	ErrLinkExpired = errors.New("download link expired")
)

// Link is what a signed download token vouches for.
type Link struct {
	OwnerID   string
	Name      string
	ExpiresAt time.Time
}

// SignedURLSigner issues and verifies HMAC-SHA256 download tokens of the form
// v1.<owner>.<unix expiry>.<base64 name>.<base64 mac>.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer. A non-positive ttl means one hour.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token granting ownerID's link to the stored file name.
func (s *SignedURLSigner) Sign(ownerID, name string) (string, Link, error) {
	if ownerID == "" || name == "" {
		return "", Link{}, fmt.Errorf("owner and name required")
	}
	if strings.Contains(ownerID, ".") {
		return "", Link{}, fmt.Errorf("owner id %q cannot contain '.'", ownerID)
	}
	if len(s.secret) == 0 {
		return "", Link{}, fmt.Errorf("signing secret missing")
	}

	link := Link{OwnerID: ownerID, Name: name, ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second)}
	payload := strings.Join([]string{
		tokenVersion,
		ownerID,
		strconv.FormatInt(link.ExpiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(name)),
	}, ".")
	return payload + "." + s.mac(payload), link, nil
}

// Verify checks the token signature and expiry. An expired but genuine token
// returns its Link together with ErrLinkExpired.
func (s *SignedURLSigner) Verify(token string) (Link, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 || parts[0] != tokenVersion {
		return Link{}, ErrLinkInvalid
	}
	payload := strings.Join(parts[:4], ".")
	if !hmac.Equal([]byte(s.mac(payload)), []byte(parts[4])) {
		return Link{}, ErrLinkInvalid
	}

	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Link{}, ErrLinkInvalid
	}
	name, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return Link{}, ErrLinkInvalid
	}

	link := Link{OwnerID: parts[1], Name: string(name), ExpiresAt: time.Unix(expUnix, 0)}
	if s.now().After(link.ExpiresAt) {
		return link, ErrLinkExpired
	}
	return link, nil
}

func (s *SignedURLSigner) mac(payload string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}
