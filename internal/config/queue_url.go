package config

import (
	"fmt"
	"net/url"
)

// validateCallbackURL checks a URL the task queue will post reminder fires to.
func validateCallbackURL(env, raw string, requireHTTPS bool) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%s: %w", env, ErrInvalidCallbackURL)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if requireHTTPS {
			return fmt.Errorf("%s must use https: %w", env, ErrInvalidCallbackURL)
		}
	default:
		return fmt.Errorf("%s: %w", env, ErrInvalidCallbackURL)
	}
	return nil
}
