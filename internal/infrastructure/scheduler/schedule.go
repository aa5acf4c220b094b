package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// Default daily run time, 02:00 UTC
const (
	defaultHour   = 2
	defaultMinute = 0
)

// ParseCronSchedule reads the minute and hour fields of a cron expression
// "minute hour * * *". An empty expression yields 02:00. Only fixed values
// are supported; "*" in either field keeps the default.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = defaultHour, defaultMinute

	parts := strings.Fields(cronExpr)
	if len(parts) == 0 {
		return hour, minute, nil
	}
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q needs minute and hour fields", ErrInvalidSchedule, cronExpr)
	}

	if minute, err = parseField(parts[0], defaultMinute, 59); err != nil {
		return 0, 0, fmt.Errorf("%w: minute: %v", ErrInvalidSchedule, err)
	}
	if hour, err = parseField(parts[1], defaultHour, 23); err != nil {
		return 0, 0, fmt.Errorf("%w: hour: %v", ErrInvalidSchedule, err)
	}
	return hour, minute, nil
}

func parseField(s string, defaultVal, maxVal int) (int, error) {
	if s == "*" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if val < 0 || val > maxVal {
		return 0, fmt.Errorf("must be 0-%d, got %d", maxVal, val)
	}
	return val, nil
}
