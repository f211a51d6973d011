package oto

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
)

// pcmReader streams an encoded buffer to oto and counts the bytes handed
// over. oto reads from its own goroutine, so the position is atomic.
type pcmReader struct {
	data []byte
	pos  atomic.Int64
}

func newPCMReader(data []byte) *pcmReader {
	return &pcmReader{data: data}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	pos := r.pos.Load()
	if pos >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[pos:])
	r.pos.Add(int64(n))
	return n, nil
}

// Pos returns how many bytes have been read.
func (r *pcmReader) Pos() int64 {
	return r.pos.Load()
}

// Len returns the total stream size in bytes.
func (r *pcmReader) Len() int64 {
	return int64(len(r.data))
}

// encodePCM converts buf to interleaved 16-bit little-endian stereo at the
// context sample rate. Mono is copied to both sides; extra channels are
// folded into the mono mix.
func encodePCM(buf *domain.AudioBuffer) []byte {
	buf = dsp.ResampleTo(buf, SampleRate)

	left, right := stereoPair(buf)
	out := make([]byte, len(left)*bytesPerFrame)
	for i := range left {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint16(out[off:], uint16(toInt16(left[i])))
		binary.LittleEndian.PutUint16(out[off+bytesPerSample:], uint16(toInt16(right[i])))
	}
	return out
}

func stereoPair(buf *domain.AudioBuffer) (left, right []float64) {
	switch buf.ChannelCount() {
	case 0:
		return nil, nil
	case 1:
		return buf.Channels[0], buf.Channels[0]
	case 2:
		return buf.Channels[0], buf.Channels[1]
	default:
		mono := buf.Mono()
		return mono, mono
	}
}

func toInt16(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	return int16(max(-32768, min(32767, math.Round(v*32767))))
}

// bytesToSeconds converts a stream offset to a playback time.
func bytesToSeconds(n int64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) / bytesPerSecond
}
