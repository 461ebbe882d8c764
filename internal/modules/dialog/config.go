package dialog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed dialog.yaml
var defaultConfigYAML []byte

// Asset names served under /api/voice/assets.
const (
	AssetGreeting  = "greeting"
	AssetGoodbye   = "goodbye"
	AssetFollowup1 = "followup_1"
	AssetFollowup2 = "followup_2"
	AssetRepeat    = "repeat"
)

var AssetNames = []string{AssetGreeting, AssetGoodbye, AssetFollowup1, AssetFollowup2, AssetRepeat}

type Config struct {
	Language         string            `yaml:"language"`
	GatherTimeoutSec int               `yaml:"gather_timeout_seconds"`
	ClassifierPrompt string            `yaml:"classifier_prompt"`
	ResponderPrompt  string            `yaml:"responder_prompt"`
	FallbackReply    string            `yaml:"fallback_reply"`
	Temperature      float64           `yaml:"temperature"`
	Assets           map[string]string `yaml:"assets"`
}

func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("dialog: embedded config: %v", err))
	}
	return cfg
}

// LoadConfig overlays the file at path onto the embedded defaults. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read dialog config: %w", err)
	}
	var override Config
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Config{}, fmt.Errorf("parse dialog config: %w", err)
	}
	cfg.merge(override)
	return cfg, cfg.validate()
}

func (c *Config) merge(o Config) {
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.GatherTimeoutSec > 0 {
		c.GatherTimeoutSec = o.GatherTimeoutSec
	}
	if o.ClassifierPrompt != "" {
		c.ClassifierPrompt = o.ClassifierPrompt
	}
	if o.ResponderPrompt != "" {
		c.ResponderPrompt = o.ResponderPrompt
	}
	if o.FallbackReply != "" {
		c.FallbackReply = o.FallbackReply
	}
	if o.Temperature > 0 {
		c.Temperature = o.Temperature
	}
	for k, v := range o.Assets {
		if c.Assets == nil {
			c.Assets = map[string]string{}
		}
		c.Assets[k] = v
	}
}

func (c Config) validate() error {
	for _, name := range AssetNames {
		if strings.TrimSpace(c.Assets[name]) == "" {
			return fmt.Errorf("dialog config: asset %q has no phrase", name)
		}
	}
	if c.FallbackReply == "" {
		return fmt.Errorf("dialog config: fallback_reply is required")
	}
	return nil
}
