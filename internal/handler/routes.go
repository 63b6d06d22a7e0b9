package handler

import "github.com/gin-gonic/gin"

type Handlers struct {
	Sessions      *SessionHandler
	Notifications *NotificationHandler
	Progress      *ProgressHandler
	Reminders     *ReminderHandler
	Live          *LiveHandler
}

// Register mounts the API under api and the live channel under root.
func Register(root gin.IRouter, api gin.IRouter, h Handlers) {
	if h.Sessions != nil {
		api.POST("/sessions", h.Sessions.StartSession)
		api.POST("/sessions/:id/activity", h.Sessions.ObserveActivity)
		api.POST("/sessions/:id/monitor-activity", h.Sessions.ObserveActivity)
		api.PUT("/sessions/:id/complete", h.Sessions.CompleteSession)
		api.DELETE("/sessions/:id", h.Sessions.CancelSession)
		api.GET("/users/:username/distraction-stats", h.Sessions.DistractionStats)
	}

	if h.Notifications != nil {
		api.GET("/users/:username/notifications", h.Notifications.List)
		api.PUT("/users/:username/notifications/read-all", h.Notifications.MarkAllRead)
		api.PUT("/users/:username/notifications/:id/read", h.Notifications.MarkRead)
		api.PUT("/users/:username/preferences", h.Notifications.UpdatePreferences)
	}

	if h.Progress != nil {
		api.GET("/users/:username/progress", h.Progress.Progress)
		api.GET("/users/:username/streak", h.Progress.Streak)
	}

	if h.Reminders != nil {
		api.POST("/users/:username/reminders", h.Reminders.ArmReminders)
		api.DELETE("/users/:username/reminders/:id", h.Reminders.CancelReminder)
		api.POST("/reminders/fire", h.Reminders.Fire)
	}

	if h.Live != nil {
		api.POST("/users/:username/test-notification", h.Live.TestNotification)
		root.GET("/ws/:username", h.Live.Connect)
	}
}
