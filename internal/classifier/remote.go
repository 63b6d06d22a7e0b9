package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/logging"
	"github.com/KasumiMercury/primind-focusguard/internal/observability/tracing"
)

const (
	classifyPath  = "/v1/classify"
	healthPath    = "/healthz"
	remoteTimeout = 5 * time.Second
)

type classifyRequest struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords,omitempty"`
}

type classifyResponse struct {
	Category       string  `json:"category"`
	IsDistraction  bool    `json:"is_distraction"`
	Confidence     float64 `json:"confidence"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
	Reasoning      string  `json:"reasoning"`
}

// RemoteCapability calls the external classification service over HTTP.
type RemoteCapability struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteCapability(baseURL string) *RemoteCapability {
	return &RemoteCapability{
		baseURL:    baseURL,
		httpClient: newHTTPClient(baseURL),
	}
}

func (c *RemoteCapability) Classify(ctx context.Context, req Request) (domain.Verdict, error) {
	u, err := c.endpoint(classifyPath)
	if err != nil {
		return domain.Verdict{}, err
	}

	ctx, span := tracing.StartExternalAPISpan(ctx, "classify", u)
	defer span.End()

	body, err := json.Marshal(classifyRequest{Title: req.Title, Keywords: req.Keywords})
	if err != nil {
		tracing.RecordResult(span, err)
		return domain.Verdict{}, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		tracing.RecordResult(span, err)
		return domain.Verdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(ctx, httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		tracing.RecordResult(span, err)
		return domain.Verdict{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
		tracing.RecordResult(span, err)
		return domain.Verdict{}, err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		tracing.RecordResult(span, err)
		return domain.Verdict{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var out classifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		tracing.RecordResult(span, err)
		return domain.Verdict{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if !domain.Category(out.Category).IsValid() {
		slog.WarnContext(ctx, "classifier returned unknown category",
			slog.String("category", out.Category),
		)
	}

	tracing.RecordResult(span, nil)

	return domain.Verdict{
		Category:       domain.Category(out.Category),
		IsDistraction:  out.IsDistraction,
		Confidence:     out.Confidence,
		Sentiment:      domain.Sentiment(out.Sentiment),
		SentimentScore: out.SentimentScore,
		Reasoning:      out.Reasoning,
		Source:         domain.VerdictSourcePrimary,
	}, nil
}

func (c *RemoteCapability) Probe(ctx context.Context) error {
	u, err := c.endpoint(healthPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

func (c *RemoteCapability) endpoint(path string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = path
	return u.String(), nil
}

func (c *RemoteCapability) decorate(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-request-id", logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx)))
	tracing.InjectToHTTPRequest(ctx, req)
}
