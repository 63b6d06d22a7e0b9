package live

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
)

// TokenIssuer mints session-scoped tokens that bind a live channel to the
// user who started the session. A zero-length secret disables verification.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (t *TokenIssuer) Enabled() bool {
	return len(t.secret) > 0
}

// Issue returns an empty token when verification is disabled.
func (t *TokenIssuer) Issue(username, sessionID string) string {
	if !t.Enabled() {
		return ""
	}

	exp := t.clock.Now().Add(t.ttl).Unix()
	payload := strings.Join([]string{username, sessionID, strconv.FormatInt(exp, 10)}, "|")
	enc := base64.RawURLEncoding

	return enc.EncodeToString([]byte(payload)) + "." + enc.EncodeToString(t.sign(payload))
}

// Verify checks token against username and returns the session it was issued for.
func (t *TokenIssuer) Verify(username, token string) (string, error) {
	if !t.Enabled() {
		return "", nil
	}
	if token == "" {
		return "", ErrTokenRequired
	}

	encPayload, encSig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}

	enc := base64.RawURLEncoding
	rawPayload, err := enc.DecodeString(encPayload)
	if err != nil {
		return "", ErrInvalidToken
	}
	sig, err := enc.DecodeString(encSig)
	if err != nil {
		return "", ErrInvalidToken
	}

	payload := string(rawPayload)
	if !hmac.Equal(sig, t.sign(payload)) {
		return "", ErrInvalidToken
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 3 || parts[0] != username {
		return "", ErrInvalidToken
	}

	exp, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if t.clock.Now().Unix() > exp {
		return "", ErrTokenExpired
	}

	return parts[1], nil
}

func (t *TokenIssuer) sign(payload string) []byte {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
