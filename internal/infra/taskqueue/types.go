package taskqueue

import (
	"fmt"
	"time"
)

// ReminderFireTask is the callback body posted to /api/v1/reminders/fire.
type ReminderFireTask struct {
	TaskID     string    `json:"-"`
	ScheduleAt time.Time `json:"-"`

	Key         string    `json:"key"`
	Username    string    `json:"username"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// TaskID names the task for one arming of a reminder so a re-arm never
// collides with the task it replaces.
func TaskID(key string, fireAt time.Time) string {
	return fmt.Sprintf("%s-%d", key, fireAt.Unix())
}

type TaskResponse struct {
	Name         string    `json:"name"`
	ScheduleTime time.Time `json:"schedule_time"`
	CreateTime   time.Time `json:"create_time"`
}

type PrimindTaskRequest struct {
	Task PrimindTask `json:"task"`
}

type PrimindTask struct {
	Name         string             `json:"name,omitempty"`
	HTTPRequest  PrimindHTTPRequest `json:"httpRequest"`
	ScheduleTime string             `json:"scheduleTime,omitempty"`
}

type PrimindHTTPRequest struct {
	URL     string            `json:"url,omitempty"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type PrimindTaskResponse struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime"`
	CreateTime   string `json:"createTime"`
}
