// Package oto implements ports.PlaybackEngine on top of ebitengine/oto.
package oto

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Output format of the shared device context.
const (
	SampleRate     = 44100
	ChannelCount   = 2
	bytesPerSample = 2 // 16-bit
	bytesPerFrame  = ChannelCount * bytesPerSample
	bytesPerSecond = SampleRate * bytesPerFrame
)

var (
	sharedContext *oto.Context
	contextOnce   sync.Once
	contextErr    error
)

// initContext creates the process-wide oto context. oto allows only one
// context per process, so every engine shares it.
func initContext() (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		sharedContext, ready, contextErr = oto.NewContext(op)
		if contextErr == nil {
			<-ready
		}
	})
	return sharedContext, contextErr
}
