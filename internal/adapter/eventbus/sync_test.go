package eventbus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	subID := bus.Subscribe(domain.EventAudioExported, func(event domain.Event) {
		received = event
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	bus.Publish(domain.NewAudioExportedEvent("/tmp/out.wav"))

	if received == nil {
		t.Fatal("Handler did not receive event")
	}
	exported, ok := received.(domain.AudioExportedEvent)
	if !ok {
		t.Fatalf("Expected AudioExportedEvent, got %T", received)
	}
	if exported.Path != "/tmp/out.wav" {
		t.Errorf("Expected path /tmp/out.wav, got %s", exported.Path)
	}
}

// TestDeliveryOrder tests that handlers run in subscription order, wildcard last,
// and that order survives an unsubscribe.
func TestDeliveryOrder(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []string
	record := func(name string) domain.EventHandler {
		return func(domain.Event) { order = append(order, name) }
	}

	bus.SubscribeAll(record("all"))
	bus.Subscribe(domain.EventPlaybackStarted, record("a"))
	b := bus.Subscribe(domain.EventPlaybackStarted, record("b"))
	bus.Subscribe(domain.EventPlaybackStarted, record("c"))
	bus.Subscribe(domain.EventPlaybackStarted, record("d"))

	bus.Unsubscribe(b)
	bus.Publish(domain.NewPlaybackStartedEvent(1.0))

	want := []string{"a", "c", "d", "all"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

// TestSubscribeVia tests that dispatched subscriptions go through the dispatcher.
func TestSubscribeVia(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var queued []func()
	dispatch := func(fn func()) { queued = append(queued, fn) }

	calls := 0
	bus.SubscribeVia(domain.EventPlaybackStopped, dispatch, func(domain.Event) { calls++ })
	bus.Publish(domain.NewPlaybackStoppedEvent())

	if calls != 0 {
		t.Error("Handler should not run before the dispatcher runs it")
	}
	if len(queued) != 1 {
		t.Fatalf("Expected 1 dispatched call, got %d", len(queued))
	}
	queued[0]()
	if calls != 1 {
		t.Errorf("Expected 1 call after dispatch, got %d", calls)
	}
}

// TestHasSubscribers tests subscriber detection with and without wildcards.
func TestHasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	if bus.HasSubscribers(domain.EventAudioLoaded) {
		t.Error("Expected no subscribers initially")
	}

	bus.Subscribe(domain.EventAudioLoaded, func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventAudioLoaded) {
		t.Error("Expected subscribers for EventAudioLoaded")
	}
	if bus.HasSubscribers(domain.EventAudioReversed) {
		t.Error("Expected no subscribers for EventAudioReversed")
	}

	bus.SubscribeAll(func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventAudioReversed) {
		t.Error("Wildcard subscriber should count for every type")
	}
}

// TestHandlerPanic tests that panicking handlers don't crash the bus.
func TestHandlerPanic(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var callCount int32
	bus.Subscribe(domain.EventAnimatorStateChanged, func(domain.Event) { panic("test panic") })
	bus.Subscribe(domain.EventAnimatorStateChanged, func(domain.Event) { atomic.AddInt32(&callCount, 1) })

	bus.Publish(domain.NewAnimatorStateChangedEvent(domain.AnimatorRunning, domain.AnimatorStopped, nil))

	if atomic.LoadInt32(&callCount) != 1 {
		t.Errorf("Expected normal handler to be called despite panic, got %d calls", callCount)
	}
}

// TestHandlerCanUnsubscribeDuringDelivery tests re-entrant unsubscribe.
func TestHandlerCanUnsubscribeDuringDelivery(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	calls := 0
	var id domain.SubscriptionID
	id = bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {
		calls++
		bus.Unsubscribe(id)
	})

	bus.Publish(domain.NewVolumeChangedEvent(0.1))
	bus.Publish(domain.NewVolumeChangedEvent(0.2))

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

// TestClose tests closing the event bus.
func TestClose(t *testing.T) {
	bus := NewSyncEventBus()
	bus.Subscribe(domain.EventAudioLoaded, func(domain.Event) {})
	bus.SubscribeAll(func(domain.Event) {})

	if err := bus.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers after close, got %d", bus.SubscriberCount())
	}

	// Publishing on a closed bus is a no-op
	bus.Publish(domain.NewPlaybackStoppedEvent())

	if err := bus.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

// TestConcurrentPublishAndSubscribe tests concurrent use (race condition test).
func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var eventCount int32
	bus.Subscribe(domain.EventPlaybackCompleted, func(domain.Event) {
		atomic.AddInt32(&eventCount, 1)
	})

	const numGoroutines = 8
	const eventsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				bus.Publish(domain.NewPlaybackCompletedEvent())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				id := bus.Subscribe(domain.EventAudioLoaded, func(domain.Event) {})
				bus.Unsubscribe(id)
			}
		}()
	}
	wg.Wait()

	expected := int32(numGoroutines * eventsPerGoroutine)
	if got := atomic.LoadInt32(&eventCount); got != expected {
		t.Errorf("Expected %d events, got %d", expected, got)
	}
}
