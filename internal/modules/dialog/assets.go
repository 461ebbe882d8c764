package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/modules/voice"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/wav"
)

var ErrUnknownAsset = errors.New("unknown asset")

// Assets serves the fixed prompt clips. A clip comes from dir/<name>.wav
// when present, otherwise from synthesizing the configured phrase once.
// When neither works a short silence is served and synthesis is retried
// on the next request.
type Assets struct {
	log     *logger.Logger
	dir     string
	phrases map[string]string
	synth   *voice.Synthesizer

	mu    sync.Mutex
	cache map[string][]byte
}

func NewAssets(log *logger.Logger, dir string, cfg Config, synth *voice.Synthesizer) *Assets {
	return &Assets{
		log:     log.With("service", "PromptAssets"),
		dir:     strings.TrimSpace(dir),
		phrases: cfg.Assets,
		synth:   synth,
		cache:   map[string][]byte{},
	}
}

func (a *Assets) Get(ctx context.Context, name string) ([]byte, error) {
	phrase, ok := a.phrases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, name)
	}
	a.mu.Lock()
	cached, ok := a.cache[name]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	if data := a.fromDisk(name); data != nil {
		a.store(name, data)
		return data, nil
	}
	if a.synth != nil {
		data, err := a.synth.SynthesizeStrict(ctx, phrase)
		if err == nil {
			a.store(name, data)
			return data, nil
		}
		a.log.Warn("Asset synthesis failed, serving silence", "asset", name, "error", err)
	}
	return wav.Silence(500 * time.Millisecond), nil
}

func (a *Assets) fromDisk(name string) []byte {
	if a.dir == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(a.dir, name+".wav"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.log.Warn("Asset read failed", "asset", name, "error", err)
		}
		return nil
	}
	return data
}

func (a *Assets) store(name string, data []byte) {
	a.mu.Lock()
	a.cache[name] = data
	a.mu.Unlock()
}
