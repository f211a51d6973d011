package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/revscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/logger"
	"github.com/tejashwikalptaru/revscope/internal/testutil"
)

// Helper to create a test audio service with one registered file
func newTestAudioService() (*AudioService, *mock.Processor, *eventbus.SyncEventBus) {
	processor := mock.NewProcessor()
	processor.AddFile("/music/ramp.wav", testutil.RampBuffer(1000, 1000))
	bus := eventbus.NewSyncEventBus()

	return NewAudioService(logger.NewTestLogger(), processor, bus), processor, bus
}

func TestAudioService_LoadFile(t *testing.T) {
	service, _, bus := newTestAudioService()

	var loaded domain.AudioLoadedEvent
	bus.Subscribe(domain.EventAudioLoaded, func(e domain.Event) {
		loaded = e.(domain.AudioLoadedEvent)
	})

	buf, err := service.LoadFile("/music/ramp.wav")
	require.NoError(t, err)

	assert.Same(t, buf, service.Original())
	assert.Nil(t, service.Processed())
	assert.Same(t, buf, loaded.Buffer)
	assert.Equal(t, "ramp.wav", loaded.Metadata.FileName)
	assert.Equal(t, "WAV", loaded.Metadata.Format)
	assert.Equal(t, 1000, service.Metadata().SampleRate)
}

func TestAudioService_LoadFileError(t *testing.T) {
	service, _, bus := newTestAudioService()

	var errEvent domain.AudioErrorEvent
	bus.Subscribe(domain.EventAudioError, func(e domain.Event) {
		errEvent = e.(domain.AudioErrorEvent)
	})

	_, err := service.LoadFile("/music/missing.mp3")

	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "/music/missing.mp3", decodeErr.Path)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.Equal(t, "load", errEvent.Op)
	assert.ErrorIs(t, errEvent.Error, domain.ErrFileNotFound)
	assert.Nil(t, service.Original())
}

func TestAudioService_ReverseRequiresSignal(t *testing.T) {
	service, _, _ := newTestAudioService()

	_, err := service.Reverse()
	assert.ErrorIs(t, err, domain.ErrNoSignal)

	_, err = service.Export("")
	assert.ErrorIs(t, err, domain.ErrNoReversedSignal)
}

func TestAudioService_Reverse(t *testing.T) {
	service, _, bus := newTestAudioService()
	_, err := service.LoadFile("/music/ramp.wav")
	require.NoError(t, err)

	var reversed domain.AudioReversedEvent
	bus.Subscribe(domain.EventAudioReversed, func(e domain.Event) {
		reversed = e.(domain.AudioReversedEvent)
	})

	buf, err := service.Reverse()
	require.NoError(t, err)

	samples := buf.Channels[0]
	assert.InDelta(t, 1.0, samples[0], 1e-12)
	assert.InDelta(t, -1.0, samples[len(samples)-1], 1e-12)
	assert.Same(t, buf, service.Processed())
	assert.Same(t, buf, reversed.Buffer)
	assert.Equal(t, 1.0, reversed.Speed)

	// The original is untouched.
	assert.InDelta(t, -1.0, service.Original().Channels[0][0], 1e-12)
}

func TestAudioService_SetSpeed(t *testing.T) {
	service, _, bus := newTestAudioService()

	var changes []domain.SpeedChangedEvent
	bus.Subscribe(domain.EventSpeedChanged, func(e domain.Event) {
		changes = append(changes, e.(domain.SpeedChangedEvent))
	})

	// Before reversal only the factor is stored.
	require.NoError(t, service.SetSpeed(2.0))
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Buffer)

	_, err := service.LoadFile("/music/ramp.wav")
	require.NoError(t, err)
	buf, err := service.Reverse()
	require.NoError(t, err)
	assert.Equal(t, 500, buf.Frames(), "reverse applies the stored speed")

	require.NoError(t, service.SetSpeed(0.5))
	require.Len(t, changes, 2)
	assert.Equal(t, 2000, changes[1].Buffer.Frames())
	assert.Same(t, changes[1].Buffer, service.Processed())
	assert.Equal(t, 0.5, service.Speed())

	// Same speed is a no-op.
	require.NoError(t, service.SetSpeed(0.5))
	assert.Len(t, changes, 2)
}

func TestAudioService_SetSpeedOutOfRange(t *testing.T) {
	service, _, _ := newTestAudioService()

	for _, speed := range []float64{0.4, 2.1, 0} {
		err := service.SetSpeed(speed)
		assert.ErrorIs(t, err, domain.ErrInvalidSpeed, "speed %v", speed)
	}
	assert.Equal(t, 1.0, service.Speed())
}

func TestAudioService_LoadDiscardsReversal(t *testing.T) {
	service, _, _ := newTestAudioService()
	_, err := service.LoadFile("/music/ramp.wav")
	require.NoError(t, err)
	_, err = service.Reverse()
	require.NoError(t, err)

	_, err = service.LoadFile("/music/ramp.wav")
	require.NoError(t, err)
	assert.Nil(t, service.Processed())
}

func TestAudioService_Export(t *testing.T) {
	service, processor, bus := newTestAudioService()
	_, err := service.LoadFile("/music/ramp.wav")
	require.NoError(t, err)
	buf, err := service.Reverse()
	require.NoError(t, err)

	var exported domain.AudioExportedEvent
	bus.Subscribe(domain.EventAudioExported, func(e domain.Event) {
		exported = e.(domain.AudioExportedEvent)
	})

	path, err := service.Export("/out/reversed.wav")
	require.NoError(t, err)
	assert.Equal(t, "/out/reversed.wav", path)
	assert.Equal(t, path, exported.Path)

	written, ok := processor.Exported(path)
	require.True(t, ok)
	assert.Same(t, buf, written)
}
