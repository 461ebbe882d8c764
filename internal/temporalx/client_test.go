package temporalx

import (
	"testing"
	"time"
)

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	c, err := NewClient(nil, Config{})
	if err != nil || c != nil {
		t.Fatalf("NewClient: want=nil,nil got=%v,%v", c, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	t.Setenv("TEMPORAL_TASK_QUEUE", "")
	cfg := LoadConfig()
	if cfg.Enabled() {
		t.Fatalf("Enabled: want=false")
	}
	if cfg.TaskQueue != "novo-contact" || cfg.DialTimeout != 5*time.Second {
		t.Fatalf("defaults: %+v", cfg)
	}
	t.Setenv("TEMPORAL_ADDRESS", "localhost:7233")
	if !LoadConfig().Enabled() {
		t.Fatalf("Enabled: want=true")
	}
}

func TestClampBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{6, time.Second},
	}
	for _, tc := range cases {
		if got := clampBackoff(100*time.Millisecond, time.Second, tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: want=%v got=%v", tc.attempt, tc.want, got)
		}
	}
}

func TestLoadTLSConfigRequiresPair(t *testing.T) {
	if _, err := loadTLSConfig(Config{ClientCAPath: "/tmp/ca.pem"}); err == nil {
		t.Fatalf("expected error without cert and key")
	}
}
