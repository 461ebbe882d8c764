package calls

import (
	"testing"
	"time"
)

func TestDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name string
		call ScheduledCall
		want bool
	}{
		{"scheduled past", ScheduledCall{ScheduledTime: &past}, true},
		{"scheduled future", ScheduledCall{ScheduledTime: &future}, false},
		{"inside window", ScheduledCall{StartTimeWindow: &past, EndTimeWindow: &future}, true},
		{"window not open", ScheduledCall{StartTimeWindow: &future}, false},
		{"window closed", ScheduledCall{EndTimeWindow: &past}, false},
		{"no time at all", ScheduledCall{}, false},
	}
	for _, tc := range cases {
		if got := tc.call.Due(now); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestRetryIntervalDefault(t *testing.T) {
	if got := (&ScheduledCall{}).RetryInterval(); got != time.Hour {
		t.Fatalf("RetryInterval: want=1h got=%s", got)
	}
	if got := (&ScheduledCall{RetryIntervalMinutes: 5}).RetryInterval(); got != 5*time.Minute {
		t.Fatalf("RetryInterval: want=5m got=%s", got)
	}
}
