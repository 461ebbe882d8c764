package temporalx

import (
	"time"

	"github.com/yungbote/novo-contact-backend/internal/pkg/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	DialTimeout    time.Duration
	DialMaxWait    time.Duration
	DialBackoff    time.Duration
	DialBackoffMax time.Duration
}

// Enabled reports whether scheduled calls should be driven by Temporal
// instead of the in-process ticker.
func (c Config) Enabled() bool { return c.Address != "" }

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "novo-contact"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "novo-contact"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		DialTimeout:    seconds(envutil.Int("TEMPORAL_DIAL_TIMEOUT_SECONDS", 5)),
		DialMaxWait:    seconds(envutil.Int("TEMPORAL_DIAL_MAX_WAIT_SECONDS", 60)),
		DialBackoff:    millis(envutil.Int("TEMPORAL_DIAL_BACKOFF_MS", 250)),
		DialBackoffMax: millis(envutil.Int("TEMPORAL_DIAL_BACKOFF_MAX_MS", 5000)),
	}
}

func seconds(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * time.Second
}

func millis(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * time.Millisecond
}
