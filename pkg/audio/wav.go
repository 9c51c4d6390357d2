package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EncodeWAV wraps raw S16LE PCM in a minimal RIFF/WAVE container. The
// downstream transcription API expects a standard audio file, not bare PCM.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	// fmt sub-chunk: 16-byte PCM header
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	byteRate := uint32(sampleRate * channels * BytesPerSample)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	blockAlign := uint16(channels * BytesPerSample)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(8*BytesPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// Dumper saves captured phrases as timestamped WAV files, for debugging and
// for building test corpora. Enable it from the demo binaries with an env
// flag; it is never on in the detection path itself.
type Dumper struct {
	dir        string
	prefix     string
	sampleRate int
	channels   int
}

// NewDumper creates a dumper writing into dir, creating it if needed.
func NewDumper(dir, prefix string, sampleRate, channels int) (*Dumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dump directory: %w", err)
	}
	return &Dumper{
		dir:        dir,
		prefix:     prefix,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Dump writes one PCM buffer as a WAV file and returns its path.
func (d *Dumper) Dump(pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", fmt.Errorf("no audio data to dump")
	}
	name := fmt.Sprintf("%s_%s.wav", d.prefix, time.Now().Format("20060102_150405.000"))
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, EncodeWAV(pcm, d.sampleRate, d.channels), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
