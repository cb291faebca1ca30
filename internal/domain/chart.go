package domain

import (
	"fmt"
	"regexp"
	"time"
)

var chartNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Chart is one saved Gantt chart: its settings plus the current
// snapshot. History lives beside it in storage.
type Chart struct {
	ID        string
	Name      string
	Settings  Settings
	Snapshot  Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateName checks that Name is non-empty and usable as a command-line
// handle: letters, digits, dot, dash or underscore, up to 64 characters.
func (c *Chart) ValidateName() error {
	if c.Name == "" {
		return fmt.Errorf("chart name is required")
	}
	if !chartNamePattern.MatchString(c.Name) {
		return fmt.Errorf("chart name %q must start with a letter or digit and contain only letters, digits, '.', '-' or '_'", c.Name)
	}
	return nil
}

// DisplayID returns the first 8 characters of ID.
func (c *Chart) DisplayID() string {
	if len(c.ID) >= 8 {
		return c.ID[:8]
	}
	return c.ID
}
