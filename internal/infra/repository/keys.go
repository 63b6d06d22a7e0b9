package repository

const keyPrefix = "focusguard:"

const (
	notificationKeyPrefix      = keyPrefix + "notification:"
	notificationIndexKeyPrefix = keyPrefix + "notifications:"
	sessionKeyPrefix           = keyPrefix + "session:"
	sessionIndexKeyPrefix      = keyPrefix + "sessions:"
	usersKey                   = keyPrefix + "users"
	outcomeKeyPrefix           = keyPrefix + "outcomes:"
	streakNotifiedKeyPrefix    = keyPrefix + "streak-notified:"
	preferenceKeyPrefix        = keyPrefix + "preferences:"
	reminderKeyPrefix          = keyPrefix + "reminder:"
	reminderFiredKeyPrefix     = keyPrefix + "reminder-fired:"
)
