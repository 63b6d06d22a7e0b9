package classifier

import "errors"

var (
	ErrUnexpectedStatus  = errors.New("unexpected status from classifier")
	ErrMalformedResponse = errors.New("malformed classifier response")
)
