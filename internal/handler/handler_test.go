package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-focusguard/internal/dispatch"
	"github.com/KasumiMercury/primind-focusguard/internal/domain"
	"github.com/KasumiMercury/primind-focusguard/internal/live"
	"github.com/KasumiMercury/primind-focusguard/internal/pipeline"
	"github.com/KasumiMercury/primind-focusguard/internal/progress"
)

type stubPipeline struct {
	observeErr error
	lastStart  pipeline.StartRequest
	completed  pipeline.CompleteRequest
}

func (s *stubPipeline) StartSession(_ context.Context, req pipeline.StartRequest) (*domain.SessionRecord, error) {
	s.lastStart = req
	return &domain.SessionRecord{ID: "s1", Username: req.Username, StartedAt: time.Unix(0, 0)}, nil
}

func (s *stubPipeline) Observe(_ context.Context, obs domain.Observation) (*pipeline.Result, error) {
	if s.observeErr != nil {
		return nil, s.observeErr
	}
	if obs.SessionID != "s1" {
		return nil, domain.ErrSessionNotFound
	}
	return &pipeline.Result{
		Verdict: domain.Verdict{
			Category:      domain.CategoryStreaming,
			IsDistraction: true,
			Confidence:    0.9,
			Sentiment:     domain.SentimentNeutral,
			Source:        domain.VerdictSourcePrimary,
		},
		NotificationSent: true,
		Outcome:          dispatch.OutcomeDelivered,
	}, nil
}

func (s *stubPipeline) CompleteSession(_ context.Context, id string, req pipeline.CompleteRequest) (*domain.SessionRecord, error) {
	s.completed = req
	count := 0
	if req.DistractionCount != nil {
		count = *req.DistractionCount
	}
	return &domain.SessionRecord{ID: id, Username: "alice", Completed: true, DistractionCount: count}, nil
}

func (s *stubPipeline) CancelSession(_ context.Context, id string) (*domain.SessionRecord, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubPipeline) DistractionStats(username string) pipeline.DistractionStats {
	return pipeline.DistractionStats{Username: username, Sessions: []pipeline.SessionStats{}}
}

type stubTokens struct{}

func (stubTokens) Issue(username, sessionID string) string { return username + "." + sessionID }

type stubProgress struct{}

func (stubProgress) Progress(_ context.Context, username string, days int) (*progress.Report, error) {
	return &progress.Report{Username: username, CurrentStreak: days}, nil
}

func (stubProgress) Recompute(context.Context, string) (domain.StreakState, error) {
	return domain.StreakState{CurrentStreak: 1, LongestStreak: 2}, nil
}

type stubScheduler struct{}

func (stubScheduler) Arm(_ context.Context, r *domain.Reminder) (domain.ReminderOutcome, error) {
	switch r.LocalTime {
	case "bad":
		return "", domain.ErrInvalidLocalTime
	case "00:00":
		return domain.ReminderSkipped, nil
	}
	r.FireAt = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	return domain.ReminderArmed, nil
}

func (stubScheduler) Cancel(context.Context, string, string) error {
	return domain.ErrReminderNotFound
}

func (stubScheduler) Fire(_ context.Context, key string, _ time.Time) (domain.ReminderOutcome, error) {
	if key == "missing" {
		return "", domain.ErrReminderNotFound
	}
	return domain.ReminderFired, nil
}

type stubLive struct{}

func (stubLive) Authorize(_, token string) error {
	if token != "ok" {
		return live.ErrTokenRequired
	}
	return nil
}

func (stubLive) Serve(w http.ResponseWriter, _ *http.Request, _ string) {
	w.WriteHeader(http.StatusOK)
}

type stubTester struct{}

func (stubTester) SendTestNotification(context.Context, string) error {
	return fmt.Errorf("send test notification: %w", live.ErrNotConnected)
}

func newRouter(t *testing.T, h Handlers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	Register(r, r.Group("/api/v1"), h)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestSessionRoutes(t *testing.T) {
	sp := &stubPipeline{}
	r := newRouter(t, Handlers{Sessions: NewSessionHandler(sp, stubTokens{})})

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "start session",
			method:     http.MethodPost,
			path:       "/api/v1/sessions",
			body:       map[string]any{"username": "alice", "keywords": []string{"thesis"}, "duration_minutes": 25},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "start session without username",
			method:     http.MethodPost,
			path:       "/api/v1/sessions",
			body:       map[string]any{"duration_minutes": 25},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "activity",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/s1/activity",
			body:       map[string]any{"window_title": "YouTube"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "monitor-activity alias",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/s1/monitor-activity",
			body:       map[string]any{"window_title": "YouTube"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "activity for unknown session",
			method:     http.MethodPost,
			path:       "/api/v1/sessions/nope/activity",
			body:       map[string]any{"window_title": "YouTube"},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "complete",
			method:     http.MethodPut,
			path:       "/api/v1/sessions/s1/complete",
			body:       map[string]any{"distraction_count": 2},
			wantStatus: http.StatusOK,
		},
		{
			name:       "cancel unknown",
			method:     http.MethodDelete,
			path:       "/api/v1/sessions/nope",
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "distraction stats",
			method:     http.MethodGet,
			path:       "/api/v1/users/alice/distraction-stats",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantError != "" {
				if got := decode(t, w)["error"]; got != tt.wantError {
					t.Errorf("error = %v, want %s", got, tt.wantError)
				}
			}
		})
	}

	w := do(r, http.MethodPost, "/api/v1/sessions", map[string]any{"username": "alice"})
	body := decode(t, w)
	if body["session_id"] != "s1" || body["live_token"] != "alice.s1" {
		t.Errorf("unexpected start response %v", body)
	}

	w = do(r, http.MethodPost, "/api/v1/sessions/s1/activity", map[string]any{"window_title": "YouTube"})
	body = decode(t, w)
	if body["category"] != "streaming" || body["notification_sent"] != true || body["is_distraction"] != true {
		t.Errorf("unexpected activity response %v", body)
	}
}

func TestActivityBusyReturns429(t *testing.T) {
	r := newRouter(t, Handlers{Sessions: NewSessionHandler(&stubPipeline{observeErr: pipeline.ErrSessionBusy}, nil)})

	w := do(r, http.MethodPost, "/api/v1/sessions/s1/activity", map[string]any{"window_title": "x"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestNotificationRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifications := domain.NewMockNotificationRepository(ctrl)
	prefs := domain.NewMockPreferenceRepository(ctrl)

	r := newRouter(t, Handlers{Notifications: NewNotificationHandler(notifications, prefs)})

	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	notifications.EXPECT().List(gomock.Any(), "alice", historyLimit).Return([]*domain.Alert{
		{ID: "a2", Type: domain.NotificationTypeReminder, Tier: domain.TierDefault, CreatedAt: created.Add(time.Minute)},
		{ID: "a1", Type: domain.NotificationTypeDistraction, Tier: domain.TierEscalated, CreatedAt: created, Read: true},
	}, nil)

	w := do(r, http.MethodGet, "/api/v1/users/alice/notifications", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	list := decode(t, w)["notifications"].([]any)
	if len(list) != 2 || list[0].(map[string]any)["id"] != "a2" {
		t.Errorf("unexpected list %v", list)
	}

	notifications.EXPECT().MarkRead(gomock.Any(), "alice", "zzz").Return(domain.ErrNotificationNotFound)
	if w := do(r, http.MethodPut, "/api/v1/users/alice/notifications/zzz/read", nil); w.Code != http.StatusNotFound {
		t.Errorf("mark read status = %d, want 404", w.Code)
	}

	notifications.EXPECT().MarkAllRead(gomock.Any(), "alice").Return(3, nil)
	w = do(r, http.MethodPut, "/api/v1/users/alice/notifications/read-all", nil)
	if w.Code != http.StatusOK || decode(t, w)["updated"] != float64(3) {
		t.Errorf("read-all: %d %s", w.Code, w.Body.String())
	}

	prefs.EXPECT().SavePreferences(gomock.Any(), &domain.Preferences{Username: "alice", CustomAudioRef: "blob:xyz"}).Return(nil)
	if w := do(r, http.MethodPut, "/api/v1/users/alice/preferences", map[string]any{"custom_audio_ref": "blob:xyz"}); w.Code != http.StatusOK {
		t.Errorf("preferences status = %d", w.Code)
	}
}

func TestProgressRoutes(t *testing.T) {
	r := newRouter(t, Handlers{Progress: NewProgressHandler(stubProgress{})})

	w := do(r, http.MethodGet, "/api/v1/users/alice/progress", nil)
	if w.Code != http.StatusOK || decode(t, w)["current_streak"] != float64(progress.DefaultReportDays) {
		t.Errorf("default days not applied: %s", w.Body.String())
	}

	if w := do(r, http.MethodGet, "/api/v1/users/alice/progress?days=0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("days=0 status = %d, want 400", w.Code)
	}

	w = do(r, http.MethodGet, "/api/v1/users/alice/streak", nil)
	body := decode(t, w)
	if body["current_streak"] != float64(1) || body["longest_streak"] != float64(2) {
		t.Errorf("unexpected streak %v", body)
	}
}

func TestReminderRoutes(t *testing.T) {
	r := newRouter(t, Handlers{Reminders: NewReminderHandler(stubScheduler{})})

	w := do(r, http.MethodPost, "/api/v1/users/alice/reminders", map[string]any{
		"reminders": []map[string]any{
			{"id": "r1", "text": "stretch", "time": "09:00"},
			{"id": "r2", "text": "water", "time": "00:00"},
			{"id": "r3", "text": "oops", "time": "bad"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("arm status = %d (%s)", w.Code, w.Body.String())
	}

	body := decode(t, w)
	if body["armed"] != float64(1) {
		t.Errorf("armed = %v, want 1", body["armed"])
	}
	results := body["results"].([]any)
	if results[1].(map[string]any)["outcome"] != "skipped" || results[2].(map[string]any)["error"] == nil {
		t.Errorf("unexpected results %v", results)
	}

	if w := do(r, http.MethodDelete, "/api/v1/users/alice/reminders/r9", nil); w.Code != http.StatusNotFound {
		t.Errorf("cancel status = %d, want 404", w.Code)
	}

	fire := func(key string) map[string]any {
		w := do(r, http.MethodPost, "/api/v1/reminders/fire", map[string]any{
			"key": key, "username": "alice", "scheduled_at": time.Now().UTC(),
		})
		if w.Code != http.StatusOK {
			t.Fatalf("fire %s status = %d", key, w.Code)
		}
		return decode(t, w)
	}
	if got := fire("alice_r1")["outcome"]; got != "fired" {
		t.Errorf("fire outcome = %v", got)
	}
	if got := fire("missing")["outcome"]; got != "skipped" {
		t.Errorf("unknown fire outcome = %v", got)
	}

	if w := do(r, http.MethodPost, "/api/v1/reminders/fire", map[string]any{"key": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("fire without scheduled_at status = %d", w.Code)
	}
}

func TestLiveRoutes(t *testing.T) {
	r := newRouter(t, Handlers{Live: NewLiveHandler(stubLive{}, stubTester{})})

	if w := do(r, http.MethodGet, "/ws/alice", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("ws without token status = %d, want 401", w.Code)
	}
	if w := do(r, http.MethodGet, "/ws/alice?token=ok", nil); w.Code != http.StatusOK {
		t.Errorf("ws with token status = %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/v1/users/alice/test-notification", nil)
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "not_connected" {
		t.Errorf("test notification: %d %s", w.Code, w.Body.String())
	}
}
