package scheduler

import "errors"

// ErrInvalidSchedule is returned for schedule expressions outside "minute hour * * *"
var ErrInvalidSchedule = errors.New("invalid refresh schedule")
