//go:build gcloud

package config

import (
	"errors"
	"fmt"
)

// Validate requires the Cloud Tasks queue coordinates and an https target for
// the reminder fire callback.
func (c *TaskQueueConfig) Validate() error {
	var errs []error

	required := []struct{ env, value string }{
		{"GCLOUD_PROJECT_ID", c.GCloudProjectID},
		{"GCLOUD_LOCATION_ID", c.GCloudLocationID},
		{"GCLOUD_QUEUE_ID", c.GCloudQueueID},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.env))
		}
	}

	if c.GCloudTargetURL == "" {
		errs = append(errs, errors.New("GCLOUD_TARGET_URL is required"))
	} else if err := validateCallbackURL("GCLOUD_TARGET_URL", c.GCloudTargetURL, true); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("task queue configuration errors: %w", errors.Join(errs...))
	}
	return nil
}
