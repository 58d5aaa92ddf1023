// Package wavio decodes 16-bit PCM WAV payloads into mono float samples for
// the CLI and HTTP boundaries. The diagnosis core only ever sees decoded
// samples; container handling stops here.
package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrUnsupported = errors.New("unsupported wav format")

// Signal is a decoded mono audio signal.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Decode parses a RIFF/WAVE payload containing 16-bit PCM audio. Multi-channel
// audio is downmixed to mono by averaging.
func Decode(data []byte) (*Signal, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE payload", ErrUnsupported)
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrUnsupported)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("%w: only PCM audio is supported (format %d)", ErrUnsupported, format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrUnsupported)
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("%w: only 16-bit samples are supported (%d-bit)", ErrUnsupported, bitsPerSample)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: missing data chunk", ErrUnsupported)
	}

	frameBytes := channels * 2
	frames := len(pcm) / frameBytes
	samples := make([]float64, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		base := f * frameBytes
		for ch := 0; ch < channels; ch++ {
			raw := int16(binary.LittleEndian.Uint16(pcm[base+ch*2 : base+ch*2+2]))
			sum += float64(raw) / 32768.0
		}
		samples[f] = sum / float64(channels)
	}

	return &Signal{Samples: samples, SampleRate: sampleRate}, nil
}
