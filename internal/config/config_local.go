//go:build !gcloud

package config

// Validate accepts an empty queue configuration; reminders then use
// in-process timers. With PRIMIND_TASKS_URL set the callback must be reachable.
func (c *TaskQueueConfig) Validate() error {
	if c.PrimindTasksURL == "" {
		return nil
	}
	if err := validateCallbackURL("PRIMIND_TASKS_URL", c.PrimindTasksURL, false); err != nil {
		return err
	}
	return validateCallbackURL("REMINDER_FIRE_URL", c.FireURL, false)
}
