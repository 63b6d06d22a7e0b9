package taskqueue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPrimindTasksClientScheduleReminderFire(t *testing.T) {
	fireAt := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	var got PrimindTaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks/reminders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(PrimindTaskResponse{
			Name:         "tasks/" + got.Task.Name,
			ScheduleTime: got.Task.ScheduleTime,
			CreateTime:   fireAt.Add(-time.Hour).Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	client := NewPrimindTasksClient(srv.URL, "reminders", "http://api/api/v1/reminders/fire", 1)
	task := &ReminderFireTask{
		TaskID:      TaskID("alice_r1", fireAt),
		ScheduleAt:  fireAt,
		Key:         "alice_r1",
		Username:    "alice",
		ScheduledAt: fireAt,
	}

	resp, err := client.ScheduleReminderFire(context.Background(), task)
	if err != nil {
		t.Fatalf("ScheduleReminderFire() error = %v", err)
	}
	if !resp.ScheduleTime.Equal(fireAt) {
		t.Errorf("expected schedule time %v, got %v", fireAt, resp.ScheduleTime)
	}

	if got.Task.Name != "alice_r1-1740821400" {
		t.Errorf("unexpected task name %q", got.Task.Name)
	}
	if got.Task.HTTPRequest.URL != "http://api/api/v1/reminders/fire" {
		t.Errorf("unexpected target url %q", got.Task.HTTPRequest.URL)
	}

	body, err := base64.StdEncoding.DecodeString(got.Task.HTTPRequest.Body)
	if err != nil {
		t.Fatalf("body not base64: %v", err)
	}
	var decoded ReminderFireTask
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Key != "alice_r1" || !decoded.ScheduledAt.Equal(fireAt) {
		t.Errorf("unexpected callback body %+v", decoded)
	}
}

func TestPrimindTasksClientRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(PrimindTaskResponse{Name: "ok"})
	}))
	defer srv.Close()

	client := NewPrimindTasksClient(srv.URL, "default", "", 3)
	if _, err := client.ScheduleReminderFire(context.Background(), &ReminderFireTask{TaskID: "t"}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestPrimindTasksClientDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/tasks/gone" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewPrimindTasksClient(srv.URL, "", "", 1)
	if err := client.DeleteTask(context.Background(), "gone"); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
