package live

import "errors"

var (
	ErrNotConnected    = errors.New("no live connection for user")
	ErrConnClosed      = errors.New("live connection closed")
	ErrOutboundFull    = errors.New("live connection outbound buffer full")
	ErrInvalidToken    = errors.New("invalid live token")
	ErrTokenExpired    = errors.New("live token expired")
	ErrTokenRequired   = errors.New("live token required")
	ErrOriginForbidden = errors.New("origin not allowed")
)
