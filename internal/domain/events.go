// Package domain defines events for the event-driven architecture.
// Events decouple services from the UI presenter.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Signal processing events
	EventAudioLoaded    EventType = "audio.loaded"
	EventAudioReversed  EventType = "audio.reversed"
	EventSpeedChanged   EventType = "audio.speed_changed"
	EventAudioExported  EventType = "audio.exported"
	EventAudioError     EventType = "audio.error"
	EventProcessingBusy EventType = "audio.processing"

	// Playback events
	EventPlaybackStarted   EventType = "playback.started"
	EventPlaybackPaused    EventType = "playback.paused"
	EventPlaybackStopped   EventType = "playback.stopped"
	EventPlaybackCompleted EventType = "playback.completed"
	EventVolumeChanged     EventType = "volume.changed"

	// Animator events
	EventAnimatorStateChanged EventType = "animator.state_changed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// AudioLoadedEvent is published when a file has been decoded.
type AudioLoadedEvent struct {
	baseEvent
	Buffer   *AudioBuffer
	Metadata AudioMetadata
}

// Type returns the event type.
func (e AudioLoadedEvent) Type() EventType {
	return EventAudioLoaded
}

// NewAudioLoadedEvent creates a new AudioLoadedEvent.
func NewAudioLoadedEvent(buffer *AudioBuffer, metadata AudioMetadata) AudioLoadedEvent {
	return AudioLoadedEvent{
		baseEvent: newBaseEvent(),
		Buffer:    buffer,
		Metadata:  metadata,
	}
}

// AudioReversedEvent is published when the reversed (and speed-adjusted) buffer is ready.
type AudioReversedEvent struct {
	baseEvent
	Buffer *AudioBuffer
	Speed  float64
}

// Type returns the event type.
func (e AudioReversedEvent) Type() EventType {
	return EventAudioReversed
}

// NewAudioReversedEvent creates a new AudioReversedEvent.
func NewAudioReversedEvent(buffer *AudioBuffer, speed float64) AudioReversedEvent {
	return AudioReversedEvent{
		baseEvent: newBaseEvent(),
		Buffer:    buffer,
		Speed:     speed,
	}
}

// SpeedChangedEvent is published when the timebase speed factor changes.
// Buffer is nil when no reversed signal exists yet.
type SpeedChangedEvent struct {
	baseEvent
	Speed  float64
	Buffer *AudioBuffer
}

// Type returns the event type.
func (e SpeedChangedEvent) Type() EventType {
	return EventSpeedChanged
}

// NewSpeedChangedEvent creates a new SpeedChangedEvent.
func NewSpeedChangedEvent(speed float64, buffer *AudioBuffer) SpeedChangedEvent {
	return SpeedChangedEvent{
		baseEvent: newBaseEvent(),
		Speed:     speed,
		Buffer:    buffer,
	}
}

// AudioExportedEvent is published after a WAV export succeeds.
type AudioExportedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e AudioExportedEvent) Type() EventType {
	return EventAudioExported
}

// NewAudioExportedEvent creates a new AudioExportedEvent.
func NewAudioExportedEvent(path string) AudioExportedEvent {
	return AudioExportedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
	}
}

// AudioErrorEvent is published when loading or processing fails.
type AudioErrorEvent struct {
	baseEvent
	Op    string
	Error error
}

// Type returns the event type.
func (e AudioErrorEvent) Type() EventType {
	return EventAudioError
}

// NewAudioErrorEvent creates a new AudioErrorEvent.
func NewAudioErrorEvent(op string, err error) AudioErrorEvent {
	return AudioErrorEvent{
		baseEvent: newBaseEvent(),
		Op:        op,
		Error:     err,
	}
}

// ProcessingEvent is published when a long-running operation begins.
type ProcessingEvent struct {
	baseEvent
	Op string
}

// Type returns the event type.
func (e ProcessingEvent) Type() EventType {
	return EventProcessingBusy
}

// NewProcessingEvent creates a new ProcessingEvent.
func NewProcessingEvent(op string) ProcessingEvent {
	return ProcessingEvent{
		baseEvent: newBaseEvent(),
		Op:        op,
	}
}

// PlaybackStartedEvent is published when playback starts or resumes.
type PlaybackStartedEvent struct {
	baseEvent
	Speed float64
}

// Type returns the event type.
func (e PlaybackStartedEvent) Type() EventType {
	return EventPlaybackStarted
}

// NewPlaybackStartedEvent creates a new PlaybackStartedEvent.
func NewPlaybackStartedEvent(speed float64) PlaybackStartedEvent {
	return PlaybackStartedEvent{
		baseEvent: newBaseEvent(),
		Speed:     speed,
	}
}

// PlaybackPausedEvent is published when playback is paused.
type PlaybackPausedEvent struct {
	baseEvent
	Position time.Duration
}

// Type returns the event type.
func (e PlaybackPausedEvent) Type() EventType {
	return EventPlaybackPaused
}

// NewPlaybackPausedEvent creates a new PlaybackPausedEvent.
func NewPlaybackPausedEvent(position time.Duration) PlaybackPausedEvent {
	return PlaybackPausedEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
	}
}

// PlaybackStoppedEvent is published when playback is stopped by the user.
type PlaybackStoppedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e PlaybackStoppedEvent) Type() EventType {
	return EventPlaybackStopped
}

// NewPlaybackStoppedEvent creates a new PlaybackStoppedEvent.
func NewPlaybackStoppedEvent() PlaybackStoppedEvent {
	return PlaybackStoppedEvent{baseEvent: newBaseEvent()}
}

// PlaybackCompletedEvent is published when the engine reaches the end of the buffer.
type PlaybackCompletedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e PlaybackCompletedEvent) Type() EventType {
	return EventPlaybackCompleted
}

// NewPlaybackCompletedEvent creates a new PlaybackCompletedEvent.
func NewPlaybackCompletedEvent() PlaybackCompletedEvent {
	return PlaybackCompletedEvent{baseEvent: newBaseEvent()}
}

// VolumeChangedEvent is published when volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// AnimatorStateChangedEvent is published on every frame animator transition.
// Err is set when the transition was forced by a failed frame.
type AnimatorStateChangedEvent struct {
	baseEvent
	From AnimatorState
	To   AnimatorState
	Err  error
}

// Type returns the event type.
func (e AnimatorStateChangedEvent) Type() EventType {
	return EventAnimatorStateChanged
}

// NewAnimatorStateChangedEvent creates a new AnimatorStateChangedEvent.
func NewAnimatorStateChangedEvent(from, to AnimatorState, err error) AnimatorStateChangedEvent {
	return AnimatorStateChangedEvent{
		baseEvent: newBaseEvent(),
		From:      from,
		To:        to,
		Err:       err,
	}
}
