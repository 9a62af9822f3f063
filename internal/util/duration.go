package util

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseWaitMillis converts a wait duration string (e.g., "1.5s", "800ms", "2")
// to milliseconds. A bare number is read as seconds. If the string is empty,
// it returns 0.
func ParseWaitMillis(wait string) (int64, error) {
	wait = strings.TrimSpace(wait)
	if wait == "" {
		return 0, nil
	}

	var value float64
	var unit string

	n, err := fmt.Sscanf(wait, "%f%s", &value, &unit)
	if err != nil && n == 0 {
		return 0, eris.Errorf("invalid wait duration: %s", wait)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, eris.Errorf("wait duration out of range: %s", wait)
	}

	if n == 1 {
		return int64(math.Round(value * 1000)), nil
	}

	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "ms", "msec", "millis":
		return int64(math.Round(value)), nil
	case "s", "sec", "secs", "second", "seconds":
		return int64(math.Round(value * 1000)), nil
	case "m", "min", "mins", "minute", "minutes":
		return int64(math.Round(value * 60_000)), nil
	default:
		return 0, eris.Errorf("unknown wait unit: %s", unit)
	}
}
