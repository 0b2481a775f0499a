package core

import (
	"sync"

	"github.com/Lakasabasz/Vulkan-test/engine/containers"
	"github.com/cockroachdb/errors"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04

	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Framebuffer resized from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08

	// A compiled shader changed on disk. Data: *ShaderEvent
	EVENT_CODE_SHADER_RELOAD EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

// Upper bound of events posted between two EventProcess calls.
const MAX_POSTED_EVENTS = 256

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type ShaderEvent struct {
	Path string
}

type FnOnEvent func(context EventContext)

type eventSystemState struct {
	mu         sync.Mutex
	registered map[EventCode][]FnOnEvent
	posted     *containers.RingQueue[EventContext]
}

var eventState *eventSystemState = nil
var eventStateMu sync.RWMutex

func currentEventState() *eventSystemState {
	eventStateMu.RLock()
	defer eventStateMu.RUnlock()
	return eventState
}

// EventSystemInitialize returns false when the system is already running.
func EventSystemInitialize() bool {
	eventStateMu.Lock()
	defer eventStateMu.Unlock()
	if eventState != nil {
		return false
	}
	eventState = &eventSystemState{
		registered: make(map[EventCode][]FnOnEvent),
		posted:     containers.NewRingQueue[EventContext](MAX_POSTED_EVENTS),
	}
	return true
}

func EventSystemShutdown() error {
	eventStateMu.Lock()
	defer eventStateMu.Unlock()
	if eventState == nil {
		return errors.New("event system is not initialized")
	}
	eventState = nil
	return nil
}

// EventRegister adds a listener for the given code. Listeners are invoked in
// registration order.
func EventRegister(code EventCode, onEvent FnOnEvent) bool {
	s := currentEventState()
	if s == nil || onEvent == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[code] = append(s.registered[code], onEvent)
	return true
}

// EventFire dispatches the event synchronously on the calling goroutine.
// Returns true if at least one listener received it.
func EventFire(context EventContext) bool {
	s := currentEventState()
	if s == nil {
		return false
	}
	s.mu.Lock()
	listeners := append([]FnOnEvent(nil), s.registered[context.Type]...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(context)
	}
	return len(listeners) > 0
}

// EventPost queues the event for the next EventProcess call. Safe to call
// from any goroutine.
func EventPost(context EventContext) error {
	s := currentEventState()
	if s == nil {
		return errors.New("event system is not initialized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.posted.Enqueue(context); err != nil {
		return errors.Wrapf(err, "dropping event %d", context.Type)
	}
	return nil
}

// EventProcess drains the posted queue and fires every event. It must be
// called from the main loop; returns the number of events dispatched.
func EventProcess() int {
	s := currentEventState()
	if s == nil {
		return 0
	}
	s.mu.Lock()
	pending := make([]EventContext, 0, s.posted.Len())
	for !s.posted.IsEmpty() {
		ev, _ := s.posted.Dequeue()
		pending = append(pending, ev)
	}
	s.mu.Unlock()

	for _, ev := range pending {
		EventFire(ev)
	}
	return len(pending)
}
