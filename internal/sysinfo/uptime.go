package sysinfo

import (
	"fmt"
	"strings"
	"time"
)

// Uptime measures time elapsed since a fixed start instant. The start is
// captured once at process start and never changes.
type Uptime struct {
	start time.Time
}

// NewUptime returns an Uptime anchored at start.
func NewUptime(start time.Time) Uptime {
	return Uptime{start: start.UTC()}
}

// Started returns the start instant in UTC.
func (u Uptime) Started() time.Time {
	return u.start
}

// At returns the elapsed time at now, never negative.
func (u Uptime) At(now time.Time) time.Duration {
	elapsed := now.Sub(u.start)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Seconds returns whole elapsed seconds at now.
func (u Uptime) Seconds(now time.Time) int64 {
	return int64(u.At(now) / time.Second)
}

// Human formats whole seconds as "2 hours, 1 minute, 5 seconds". Zero hours
// and minutes are omitted; seconds are shown when non-zero or nothing else is.
func Human(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	remaining := seconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if remaining > 0 || len(parts) == 0 {
		parts = append(parts, plural(remaining, "second"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
