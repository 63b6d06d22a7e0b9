package agent

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

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type StartedSession struct {
	SessionID string    `json:"session_id"`
	LiveToken string    `json:"live_token"`
	StartedAt time.Time `json:"started_at"`
}

type ActivityResult struct {
	Category         domain.Category  `json:"category"`
	IsDistraction    bool             `json:"is_distraction"`
	Confidence       float64          `json:"confidence"`
	Sentiment        domain.Sentiment `json:"sentiment"`
	SentimentScore   float64          `json:"sentiment_score"`
	Reasoning        string           `json:"reasoning"`
	Source           string           `json:"source"`
	NotificationSent bool             `json:"notification_sent"`
	DispatchOutcome  string           `json:"dispatch_outcome"`
}

type CompletedSession struct {
	ID                string    `json:"id"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at"`
	Completed         bool      `json:"completed"`
	DistractionCount  int       `json:"distraction_count"`
	ProductivityScore float64   `json:"productivity_score"`
}

type Notification struct {
	ID               string    `json:"id"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	SoundType        string    `json:"sound_type"`
	WindowTitle      string    `json:"window_title"`
	CreatedAt        time.Time `json:"created_at"`
	Read             bool      `json:"read"`
	Delivered        bool      `json:"delivered"`
}

type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *API) StartSession(ctx context.Context, cfg Config) (*StartedSession, error) {
	body := map[string]any{
		"username":         cfg.Username,
		"task_description": cfg.TaskDescription,
		"keywords":         cfg.Keywords,
		"duration_minutes": int(cfg.Duration / time.Minute),
	}

	var out StartedSession
	if err := a.do(ctx, http.MethodPost, "/api/v1/sessions", body, &out); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return &out, nil
}

func (a *API) ReportActivity(ctx context.Context, sessionID, title string, observedAt time.Time) (*ActivityResult, error) {
	body := map[string]any{
		"window_title": title,
		"observed_at":  observedAt.UTC(),
	}

	var out ActivityResult
	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/monitor-activity"
	if err := a.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, fmt.Errorf("failed to report activity: %w", err)
	}
	return &out, nil
}

func (a *API) CompleteSession(ctx context.Context, sessionID string) (*CompletedSession, error) {
	var out CompletedSession
	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/complete"
	if err := a.do(ctx, http.MethodPut, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	return &out, nil
}

func (a *API) ListNotifications(ctx context.Context, username string) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	path := "/api/v1/users/" + url.PathEscape(username) + "/notifications"
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out.Notifications, nil
}

func (a *API) MarkRead(ctx context.Context, username, id string) error {
	path := "/api/v1/users/" + url.PathEscape(username) + "/notifications/" + url.PathEscape(id) + "/read"
	if err := a.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (a *API) TestNotification(ctx context.Context, username string) error {
	path := "/api/v1/users/" + url.PathEscape(username) + "/test-notification"
	if err := a.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("failed to send test notification: %w", err)
	}
	return nil
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = path

	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		slog.Debug("request to focusguard server failed",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil {
			apiErr.Code, apiErr.Message = e.Error, e.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
