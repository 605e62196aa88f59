package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockToSeconds converts a clock-style duration ("4:13", "1:02:03") into
// seconds. Empty input yields 0.
func ClockToSeconds(clock string) (int, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0, nil
	}

	parts := strings.Split(clock, ":")
	total := 0
	multiplier := 1
	for i := len(parts) - 1; i >= 0; i-- {
		value, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", clock, err)
		}
		total += value * multiplier
		multiplier *= 60
	}

	return total, nil
}

// SecondsToClock formats seconds the way YouTube renders durations:
// "m:ss" below an hour, "h:mm:ss" above.
func SecondsToClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
