// Package wav wraps raw PCM into the minimal RIFF/WAVE container the
// telephony provider can fetch and play.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
	HeaderSize    = 44

	ContentType = "audio/wav"
)

var ErrInvalid = errors.New("wav: invalid container")

type Format struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// Encode wraps 16-bit little-endian mono PCM at SampleRate.
func Encode(pcm []byte) []byte {
	return EncodeFormat(pcm, Format{Channels: Channels, SampleRate: SampleRate, BitsPerSample: BitsPerSample})
}

func EncodeFormat(pcm []byte, f Format) []byte {
	blockAlign := f.Channels * f.BitsPerSample / 8
	byteRate := f.SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.BitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// Decode reads back a container produced by Encode. Only the canonical
// 44-byte header layout is accepted.
func Decode(data []byte) (Format, []byte, error) {
	if len(data) < HeaderSize ||
		string(data[0:4]) != "RIFF" ||
		string(data[8:12]) != "WAVE" ||
		string(data[12:16]) != "fmt " ||
		string(data[36:40]) != "data" {
		return Format{}, nil, ErrInvalid
	}
	le := binary.LittleEndian
	f := Format{
		Channels:      int(le.Uint16(data[22:24])),
		SampleRate:    int(le.Uint32(data[24:28])),
		BitsPerSample: int(le.Uint16(data[34:36])),
	}
	size := int(le.Uint32(data[40:44]))
	if HeaderSize+size > len(data) {
		return Format{}, nil, ErrInvalid
	}
	return f, data[HeaderSize : HeaderSize+size], nil
}

// Silence returns a container holding d of zero samples.
func Silence(d time.Duration) []byte {
	samples := int(d.Seconds() * SampleRate)
	return Encode(make([]byte, samples*Channels*BitsPerSample/8))
}
