package live

import (
	"errors"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/clock"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour, clock.Fixed(now))

	token := issuer.Issue("alice", "session-1")
	if token == "" {
		t.Fatal("expected a token")
	}

	sessionID, err := issuer.Verify("alice", token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if sessionID != "session-1" {
		t.Errorf("expected session-1, got %s", sessionID)
	}
}

func TestTokenIssuerVerifyRejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour, clock.Fixed(now))
	token := issuer.Issue("alice", "session-1")

	other := NewTokenIssuer("other-secret", time.Hour, clock.Fixed(now))
	later := NewTokenIssuer("secret", time.Hour, clock.Fixed(now.Add(2*time.Hour)))

	tests := []struct {
		name     string
		issuer   *TokenIssuer
		username string
		token    string
		wantErr  error
	}{
		{name: "missing token", issuer: issuer, username: "alice", token: "", wantErr: ErrTokenRequired},
		{name: "other user", issuer: issuer, username: "bob", token: token, wantErr: ErrInvalidToken},
		{name: "wrong secret", issuer: other, username: "alice", token: token, wantErr: ErrInvalidToken},
		{name: "garbage", issuer: issuer, username: "alice", token: "not-a-token", wantErr: ErrInvalidToken},
		{name: "tampered", issuer: issuer, username: "alice", token: token + "x", wantErr: ErrInvalidToken},
		{name: "expired", issuer: later, username: "alice", token: token, wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Verify(tt.username, tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTokenIssuerDisabled(t *testing.T) {
	issuer := NewTokenIssuer("", time.Hour, nil)

	if issuer.Enabled() {
		t.Fatal("expected issuer without secret to be disabled")
	}
	if token := issuer.Issue("alice", "s"); token != "" {
		t.Errorf("expected empty token, got %q", token)
	}
	if _, err := issuer.Verify("alice", ""); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}
