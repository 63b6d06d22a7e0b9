//go:build !gcloud

package classifier

import "net/http"

// newHTTPClient returns an unauthenticated client for local classifiers.
func newHTTPClient(_ string) *http.Client {
	return &http.Client{Timeout: remoteTimeout}
}
