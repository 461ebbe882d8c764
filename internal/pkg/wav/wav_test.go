package wav

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0x7f, 0x00, 0x80, 0x10, 0x20}
	out := Encode(pcm)

	if len(out) != len(pcm)+HeaderSize {
		t.Fatalf("length: want=%d got=%d", len(pcm)+HeaderSize, len(out))
	}
	f, payload, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Channels != 1 {
		t.Fatalf("channels: want=1 got=%d", f.Channels)
	}
	if f.BitsPerSample != 16 {
		t.Fatalf("sample width: want=16 got=%d", f.BitsPerSample)
	}
	if f.SampleRate != 24000 {
		t.Fatalf("frame rate: want=24000 got=%d", f.SampleRate)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("payload mismatch: want=%v got=%v", pcm, payload)
	}
}

func TestEncodeEmpty(t *testing.T) {
	out := Encode(nil)
	if len(out) != HeaderSize {
		t.Fatalf("empty length: want=%d got=%d", HeaderSize, len(out))
	}
	if _, payload, err := Decode(out); err != nil || len(payload) != 0 {
		t.Fatalf("Decode empty: err=%v len=%d", err, len(payload))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not a wav file at all, definitely not 44 bytes")); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestSilence(t *testing.T) {
	out := Silence(500 * time.Millisecond)
	want := HeaderSize + 12000*2
	if len(out) != want {
		t.Fatalf("silence length: want=%d got=%d", want, len(out))
	}
}
