//go:build gcloud

package classifier

import (
	"context"
	"log/slog"
	"net/http"

	"google.golang.org/api/idtoken"
)

// newHTTPClient returns a client that attaches a Google ID token for the
// classifier's audience.
func newHTTPClient(baseURL string) *http.Client {
	httpClient, err := idtoken.NewClient(context.Background(), baseURL)
	if err != nil {
		slog.Error("failed to create idtoken client for classifier, falling back to unauthenticated client",
			slog.String("event", "classifier.idtoken.fail"),
			slog.String("error", err.Error()),
		)
		return &http.Client{Timeout: remoteTimeout}
	}
	httpClient.Timeout = remoteTimeout
	return httpClient
}
