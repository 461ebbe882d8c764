package dialog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/novo-contact-backend/internal/modules/voice"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/wav"
)

func TestAssetsPreferDisk(t *testing.T) {
	dir := t.TempDir()
	clip := wav.Encode(make([]byte, 64))
	if err := os.WriteFile(filepath.Join(dir, AssetGreeting+".wav"), clip, 0o600); err != nil {
		t.Fatal(err)
	}
	a := NewAssets(logger.Nop(), dir, DefaultConfig(), nil)
	got, err := a.Get(context.Background(), AssetGreeting)
	if err != nil || len(got) != len(clip) {
		t.Fatalf("Get: err=%v len=%d", err, len(got))
	}
}

func TestAssetsSynthesizeMissing(t *testing.T) {
	synth := voice.NewSynthesizer(logger.Nop(), fakeTTS{pcm: make([]byte, 100)})
	a := NewAssets(logger.Nop(), "", DefaultConfig(), synth)
	got, err := a.Get(context.Background(), AssetGoodbye)
	if err != nil || len(got) != wav.HeaderSize+100 {
		t.Fatalf("Get: err=%v len=%d", err, len(got))
	}
}

func TestAssetsSilenceWithoutSynthesis(t *testing.T) {
	a := NewAssets(logger.Nop(), "", DefaultConfig(), voice.NewSynthesizer(logger.Nop(), nil))
	got, err := a.Get(context.Background(), AssetRepeat)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, _, err := wav.Decode(got); err != nil {
		t.Fatalf("silence should be a valid wav: %v", err)
	}
	if _, err := a.Get(context.Background(), "jingle"); !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("Get(unknown): want ErrUnknownAsset got=%v", err)
	}
}
