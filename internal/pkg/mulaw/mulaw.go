// Package mulaw converts 16-bit linear PCM into 8 kHz G.711 mu-law, the
// payload format of provider media streams.
package mulaw

import "encoding/binary"

const (
	SampleRate = 8000

	bias = 0x84
	clip = 32635
)

// EncodeSample compresses one linear sample.
func EncodeSample(s int16) byte {
	sample := int(s)
	sign := 0
	if sample < 0 {
		sign = 0x80
		sample = -sample
	}
	if sample > clip {
		sample = clip
	}
	sample += bias

	exponent := 7
	for mask := 0x4000; sample&mask == 0 && exponent > 0; mask >>= 1 {
		exponent--
	}
	mantissa := (sample >> (exponent + 3)) & 0x0f
	return ^byte(sign | exponent<<4 | mantissa)
}

// DecodeSample expands one mu-law byte.
func DecodeSample(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := int(b>>4) & 0x07
	mantissa := int(b & 0x0f)
	sample := ((mantissa << 3) + bias) << exponent
	sample -= bias
	if sign != 0 {
		return int16(-sample)
	}
	return int16(sample)
}

// FromPCM16 downsamples little-endian mono PCM at fromRate to 8 kHz by
// averaging whole frames, then encodes. fromRate must be a multiple of 8000.
func FromPCM16(pcm []byte, fromRate int) []byte {
	step := fromRate / SampleRate
	if step < 1 {
		step = 1
	}
	samples := len(pcm) / 2
	out := make([]byte, 0, samples/step+1)
	for i := 0; i+step <= samples; i += step {
		sum := 0
		for j := 0; j < step; j++ {
			sum += int(int16(binary.LittleEndian.Uint16(pcm[(i+j)*2:])))
		}
		out = append(out, EncodeSample(int16(sum/step)))
	}
	return out
}

// ToPCM16 decodes 8 kHz μ-law into little-endian 16-bit PCM at the same rate.
func ToPCM16(ulaw []byte) []byte {
	out := make([]byte, len(ulaw)*2)
	for i, b := range ulaw {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(DecodeSample(b)))
	}
	return out
}
