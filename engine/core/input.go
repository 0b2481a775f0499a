package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key codes follow the virtual key layout (letters and digits are ASCII).
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_PAUSE     KeyCode = 0x13
	KEY_CAPITAL   KeyCode = 0x14
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PRIOR     KeyCode = 0x21
	KEY_NEXT      KeyCode = 0x22
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_PRINT     KeyCode = 0x2A
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_M         KeyCode = 0x4D
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F12       KeyCode = 0x7B
	KEY_NUMLOCK   KeyCode = 0x90
	KEY_SCROLL    KeyCode = 0x91
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEY_LMENU     KeyCode = 0xA4
	KEY_RMENU     KeyCode = 0xA5
	KEY_SEMICOLON KeyCode = 0xBA
	KEY_PLUS      KeyCode = 0xBB
	KEY_COMMA     KeyCode = 0xBC
	KEY_MINUS     KeyCode = 0xBD
	KEY_PERIOD    KeyCode = 0xBE
	KEY_SLASH     KeyCode = 0xBF
	KEY_GRAVE     KeyCode = 0xC0
	KEYS_MAX_KEYS KeyCode = 0x100
)

type MouseState struct {
	X       uint16
	Y       uint16
	Buttons [BUTTON_MAX_BUTTONS]bool
}

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

var inputMu sync.Mutex
var inputState *InputState = nil

func InputInitialize() error {
	inputMu.Lock()
	inputState = &InputState{}
	inputMu.Unlock()
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputMu.Lock()
	inputState = nil
	inputMu.Unlock()
	return nil
}

// InputUpdate snapshots the current state as the previous one. Called once at
// the end of every frame.
func InputUpdate(deltaTime float64) error {
	inputMu.Lock()
	defer inputMu.Unlock()
	if inputState == nil {
		return nil
	}
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	inputState.MousePrevious = inputState.MouseCurrent
	return nil
}

func readInput(fn func(s *InputState) bool) bool {
	inputMu.Lock()
	defer inputMu.Unlock()
	if inputState == nil {
		return false
	}
	return fn(inputState)
}

func InputIsKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && readInput(func(s *InputState) bool { return s.KeyboardCurrent.Keys[key] })
}

func InputIsKeyUp(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && readInput(func(s *InputState) bool { return !s.KeyboardCurrent.Keys[key] })
}

func InputWasKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && readInput(func(s *InputState) bool { return s.KeyboardPrevious.Keys[key] })
}

func InputWasKeyUp(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && readInput(func(s *InputState) bool { return !s.KeyboardPrevious.Keys[key] })
}

// InputProcessKey records the key state and fires KEY_PRESSED/KEY_RELEASED
// when it changed.
func InputProcessKey(key KeyCode, pressed bool) error {
	if key >= KEYS_MAX_KEYS {
		return nil
	}
	changed := false
	inputMu.Lock()
	if inputState != nil && inputState.KeyboardCurrent.Keys[key] != pressed {
		inputState.KeyboardCurrent.Keys[key] = pressed
		changed = true
	}
	inputMu.Unlock()
	if !changed {
		return nil
	}

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	EventFire(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
	return nil
}

func InputIsButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && readInput(func(s *InputState) bool { return s.MouseCurrent.Buttons[button] })
}

func InputIsButtonUp(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && readInput(func(s *InputState) bool { return !s.MouseCurrent.Buttons[button] })
}

func InputWasButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && readInput(func(s *InputState) bool { return s.MousePrevious.Buttons[button] })
}

func InputGetMousePosition() (int32, int32) {
	inputMu.Lock()
	defer inputMu.Unlock()
	if inputState == nil {
		return 0, 0
	}
	return int32(inputState.MouseCurrent.X), int32(inputState.MouseCurrent.Y)
}

func InputGetPreviousMousePosition() (int32, int32) {
	inputMu.Lock()
	defer inputMu.Unlock()
	if inputState == nil {
		return 0, 0
	}
	return int32(inputState.MousePrevious.X), int32(inputState.MousePrevious.Y)
}

func InputProcessButton(button Button, pressed bool) error {
	if button >= BUTTON_MAX_BUTTONS {
		return nil
	}
	changed := false
	inputMu.Lock()
	if inputState != nil && inputState.MouseCurrent.Buttons[button] != pressed {
		inputState.MouseCurrent.Buttons[button] = pressed
		changed = true
	}
	inputMu.Unlock()
	if !changed {
		return nil
	}

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	EventFire(EventContext{
		Type: code,
		Data: &MouseEvent{Button: button},
	})
	return nil
}

func InputProcessMouseMove(x uint16, y uint16) error {
	changed := false
	inputMu.Lock()
	if inputState != nil && (inputState.MouseCurrent.X != x || inputState.MouseCurrent.Y != y) {
		inputState.MouseCurrent.X = x
		inputState.MouseCurrent.Y = y
		changed = true
	}
	inputMu.Unlock()
	if !changed {
		return nil
	}

	EventFire(EventContext{
		Type: EVENT_CODE_MOUSE_MOVED,
		Data: &MouseEvent{PosX: x, PosY: y},
	})
	return nil
}

func InputProcessMouseWheel(zDelta int8) error {
	EventFire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{Scroll: zDelta},
	})
	return nil
}
