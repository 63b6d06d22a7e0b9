package reminder

import "errors"

var ErrNoBackend = errors.New("reminder backend not configured")
