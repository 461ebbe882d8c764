package pointers

import "time"

func Float64(v float64) *float64 { return &v }

// Time returns nil for the zero time.
func Time(v time.Time) *time.Time {
	if v.IsZero() {
		return nil
	}
	return &v
}
