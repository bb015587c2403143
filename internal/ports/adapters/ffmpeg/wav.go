package ffmpeg

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// readWavMono16 reads a canonical RIFF/WAVE file holding 16-bit mono PCM and
// returns the samples plus the sample rate.
func readWavMono16(path string) ([]int16, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read wav: %w", err)
	}
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file: %s", path)
	}

	var (
		sampleRate int
		bitsPer    int
		channels   int
		data       []byte
	)
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if body+size > len(b) {
			size = len(b) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("short fmt chunk in %s", path)
			}
			channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			bitsPer = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
		case "data":
			data = b[body : body+size]
		}
		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if sampleRate == 0 || data == nil {
		return nil, 0, fmt.Errorf("missing fmt/data chunk in %s", path)
	}
	if channels != 1 || bitsPer != 16 {
		return nil, 0, fmt.Errorf("expected 16-bit mono PCM, got %d-bit %d-channel in %s", bitsPer, channels, path)
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i : 2*i+2]))
	}
	return samples, sampleRate, nil
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}
