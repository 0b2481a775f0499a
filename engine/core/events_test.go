package core

import (
	"sync"
	"testing"
)

func withEventSystem(t *testing.T) {
	t.Helper()
	if !EventSystemInitialize() {
		t.Fatal("event system already initialized")
	}
	t.Cleanup(func() { _ = EventSystemShutdown() })
}

func TestEventSystemInitializeTwice(t *testing.T) {
	withEventSystem(t)
	if EventSystemInitialize() {
		t.Fatal("second initialize should report false")
	}
}

func TestEventFireInvokesListenersInOrder(t *testing.T) {
	withEventSystem(t)

	var got []int
	EventRegister(EVENT_CODE_KEY_PRESSED, func(EventContext) { got = append(got, 1) })
	EventRegister(EVENT_CODE_KEY_PRESSED, func(EventContext) { got = append(got, 2) })

	if !EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED}) {
		t.Fatal("expected listeners to receive the event")
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("listener order = %v", got)
	}
	if EventFire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL}) {
		t.Fatal("no listener registered for mouse wheel")
	}
}

func TestEventPostIsDeferredUntilProcess(t *testing.T) {
	withEventSystem(t)

	var quits int
	EventRegister(EVENT_CODE_APPLICATION_QUIT, func(EventContext) { quits++ })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := EventPost(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if quits != 0 {
		t.Fatal("posted events must not fire before EventProcess")
	}
	if n := EventProcess(); n != 8 {
		t.Fatalf("processed %d events, want 8", n)
	}
	if quits != 8 {
		t.Fatalf("quit listener called %d times", quits)
	}
	if n := EventProcess(); n != 0 {
		t.Fatalf("queue should be drained, processed %d", n)
	}
}

func TestEventPostOverflow(t *testing.T) {
	withEventSystem(t)
	for i := 0; i < MAX_POSTED_EVENTS; i++ {
		if err := EventPost(EventContext{Type: EVENT_CODE_RESIZED}); err != nil {
			t.Fatal(err)
		}
	}
	if err := EventPost(EventContext{Type: EVENT_CODE_RESIZED}); err == nil {
		t.Fatal("expected an error once the queue is full")
	}
}

func TestEventCallsWithoutSystem(t *testing.T) {
	if EventRegister(EVENT_CODE_RESIZED, func(EventContext) {}) {
		t.Fatal("register must fail without an event system")
	}
	if err := EventPost(EventContext{Type: EVENT_CODE_RESIZED}); err == nil {
		t.Fatal("post must fail without an event system")
	}
	if EventProcess() != 0 {
		t.Fatal("nothing to process")
	}
}
