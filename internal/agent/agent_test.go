package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-focusguard/internal/live"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agent.yaml")
		raw := "server_url: https://focus.example.com/\nusername: alice\nkeywords: [golang, channels]\nduration: 45m\ninclude_process: false\n"
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "https://focus.example.com", cfg.ServerURL)
		assert.Equal(t, "alice", cfg.Username)
		assert.Equal(t, []string{"golang", "channels"}, cfg.Keywords)
		assert.Equal(t, 45*time.Minute, cfg.Duration)
		assert.Equal(t, defaultSampleInterval, cfg.SampleInterval)
		assert.False(t, cfg.IncludeProcess)
		assert.True(t, cfg.Live)
		assert.Equal(t, "wss://focus.example.com/ws/alice", cfg.LiveURL())
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agent.yaml")
		require.NoError(t, os.WriteFile(path, []byte("duration: [nope"), 0o600))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.Validate(), ErrUsernameRequired)

	cfg.Username = "bob"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "ws://localhost:8080/ws/bob", cfg.LiveURL())
}

func TestWindowLabel(t *testing.T) {
	tests := []struct {
		name    string
		w       Window
		process bool
		want    string
	}{
		{"with process", Window{Title: "YouTube", Process: "firefox"}, true, "firefox - YouTube"},
		{"process disabled", Window{Title: "YouTube", Process: "firefox"}, false, "YouTube"},
		{"no process name", Window{Title: "main.go"}, true, "main.go"},
		{"no title", Window{Process: "code"}, true, "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.w.Label(tt.process))
		})
	}
}

func TestXdotoolSource(t *testing.T) {
	responses := map[string]string{
		"getwindowname": "Inbox - Mail",
		"getwindowpid":  "4242",
	}
	src := &XdotoolSource{
		run: func(_ context.Context, name string, args ...string) (string, error) {
			require.Equal(t, "xdotool", name)
			return responses[args[len(args)-1]], nil
		},
		processName: func(_ context.Context, pid int32) (string, error) {
			assert.Equal(t, int32(4242), pid)
			return "thunderbird", nil
		},
	}

	w, err := src.ActiveWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thunderbird - Inbox - Mail", w.Label(true))

	responses["getwindowname"] = ""
	_, err = src.ActiveWindow(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveWindow)
}

type stubSource struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (s *stubSource) ActiveWindow(context.Context) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Window{}, s.err
	}
	t := s.titles[0]
	if len(s.titles) > 1 {
		s.titles = s.titles[1:]
	}
	return Window{Title: t}, nil
}

func TestFallbackSource(t *testing.T) {
	failing := &stubSource{err: errors.New("no display")}
	ok := &stubSource{titles: []string{"Linux Terminal - alice@box"}}

	w, err := FallbackSource{failing, ok}.ActiveWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Linux Terminal - alice@box", w.Title)

	_, err = FallbackSource{failing}.ActiveWindow(context.Background())
	assert.Error(t, err)
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"session not found"}`))
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).CompleteSession(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
}

type fakeServer struct {
	mu       sync.Mutex
	titles   []string
	complete int
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"session_id":"s-1","started_at":"2026-10-14T09:00:00Z"}`))
	})
	mux.HandleFunc("POST /api/v1/sessions/s-1/monitor-activity", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WindowTitle string `json:"window_title"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		f.mu.Lock()
		f.titles = append(f.titles, body.WindowTitle)
		f.mu.Unlock()

		if strings.Contains(body.WindowTitle, "YouTube") {
			_, _ = w.Write([]byte(`{"category":"entertainment","is_distraction":true,"confidence":0.9,"sentiment":"neutral","reasoning":"video site","source":"fallback","notification_sent":true,"dispatch_outcome":"delivered"}`))
			return
		}
		_, _ = w.Write([]byte(`{"category":"work","is_distraction":false,"confidence":0.8,"sentiment":"positive","reasoning":"editor","source":"fallback"}`))
	})
	mux.HandleFunc("PUT /api/v1/sessions/s-1/complete", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.complete++
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"id":"s-1","completed":true,"distraction_count":1,"productivity_score":0.9}`))
	})
	return mux
}

func TestMonitorReportsOnlyTitleChanges(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(t))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.ServerURL = srv.URL
	cfg.Username = "alice"
	cfg.Live = false
	cfg.Duration = 150 * time.Millisecond
	cfg.SampleInterval = 5 * time.Millisecond

	src := &stubSource{titles: []string{"main.go", "main.go", "YouTube - Cats", "YouTube - Cats", "main.go"}}

	var out bytes.Buffer
	m := NewMonitor(cfg, NewAPI(srv.URL), src, &out)

	done, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, 1, done.DistractionCount)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, []string{"main.go", "YouTube - Cats", "main.go"}, fs.titles)
	assert.Equal(t, 1, fs.complete)
	assert.Contains(t, out.String(), "category=entertainment")
	assert.Contains(t, out.String(), "notification sent (delivered)")
}

func TestMonitorCompletesOnCancel(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(t))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.ServerURL = srv.URL
	cfg.Username = "alice"
	cfg.Live = false
	cfg.SampleInterval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	_, err := NewMonitor(cfg, NewAPI(srv.URL), &stubSource{titles: []string{"main.go"}}, &out).Run(ctx)
	require.NoError(t, err)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, 1, fs.complete)
	assert.Contains(t, out.String(), "Monitoring interrupted")
}

func TestMonitorRequiresUsername(t *testing.T) {
	_, err := NewMonitor(DefaultConfig(), NewAPI("http://127.0.0.1:0"), &stubSource{titles: []string{"x"}}, &bytes.Buffer{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrUsernameRequired)
}

func TestPullUnreadShowsDeliveredButUnreadOnce(t *testing.T) {
	var (
		mu     sync.Mutex
		marked []string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/alice/notifications", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"notifications":[
			{"id":"a1","message":"shown live","sound_type":"default","delivered":true},
			{"id":"a2","message":"lost after write","sound_type":"default","delivered":true},
			{"id":"a3","message":"already read","sound_type":"default","read":true,"delivered":true}
		]}`))
	})
	mux.HandleFunc("PUT /api/v1/users/alice/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		marked = append(marked, r.PathValue("id"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"notification marked as read"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.ServerURL = srv.URL
	cfg.Username = "alice"

	var out bytes.Buffer
	m := NewMonitor(cfg, NewAPI(srv.URL), &stubSource{titles: []string{"x"}}, &out)

	m.printAlert(live.NotificationPayload{ID: "a1", Message: "shown live", SoundType: "default"})
	m.pullUnread(context.Background())
	m.pullUnread(context.Background())

	assert.Equal(t, 1, strings.Count(out.String(), "shown live"))
	assert.Equal(t, 1, strings.Count(out.String(), "lost after write"))
	assert.NotContains(t, out.String(), "already read")
	assert.Equal(t, 2, m.Alerts())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, marked, "a1")
	assert.Contains(t, marked, "a2")
	assert.NotContains(t, marked, "a3")
}
