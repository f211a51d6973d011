package testutil

import (
	"math"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// SineBuffer returns a buffer holding a sine wave on every channel.
func SineBuffer(freq float64, sampleRate int, seconds float64, channels int, amplitude float64) *domain.AudioBuffer {
	n := int(seconds * float64(sampleRate))
	data := make([][]float64, channels)
	for c := range data {
		ch := make([]float64, n)
		for i := range ch {
			ch[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		}
		data[c] = ch
	}
	return domain.NewAudioBuffer(data, sampleRate, 16, "/tmp/sine.wav", "wav")
}

// RampBuffer returns a mono buffer whose samples rise linearly from -1 to 1.
// Its sample order makes reversal easy to observe.
func RampBuffer(n, sampleRate int) *domain.AudioBuffer {
	ch := make([]float64, n)
	for i := range ch {
		if n > 1 {
			ch[i] = -1 + 2*float64(i)/float64(n-1)
		}
	}
	return domain.NewAudioBuffer([][]float64{ch}, sampleRate, 16, "/tmp/ramp.wav", "wav")
}
