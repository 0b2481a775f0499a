package core

import "testing"

func TestInputKeyTransitions(t *testing.T) {
	withEventSystem(t)
	if err := InputInitialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = InputShutdown() })

	var pressed, released int
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) {
		if ke, ok := ctx.Data.(*KeyEvent); ok && ke.KeyCode == KEY_ESCAPE {
			pressed++
		}
	})
	EventRegister(EVENT_CODE_KEY_RELEASED, func(EventContext) { released++ })

	_ = InputProcessKey(KEY_ESCAPE, true)
	// repeated state must not fire again
	_ = InputProcessKey(KEY_ESCAPE, true)
	if pressed != 1 {
		t.Fatalf("pressed fired %d times", pressed)
	}
	if !InputIsKeyDown(KEY_ESCAPE) || InputWasKeyDown(KEY_ESCAPE) {
		t.Fatal("current/previous key state mismatch")
	}

	_ = InputUpdate(0)
	if !InputWasKeyDown(KEY_ESCAPE) {
		t.Fatal("previous state should follow InputUpdate")
	}

	_ = InputProcessKey(KEY_ESCAPE, false)
	if released != 1 || !InputIsKeyUp(KEY_ESCAPE) {
		t.Fatal("release not recorded")
	}
}

func TestInputMouse(t *testing.T) {
	withEventSystem(t)
	_ = InputInitialize()
	t.Cleanup(func() { _ = InputShutdown() })

	var moves int
	EventRegister(EVENT_CODE_MOUSE_MOVED, func(EventContext) { moves++ })

	_ = InputProcessMouseMove(10, 20)
	_ = InputProcessMouseMove(10, 20)
	if moves != 1 {
		t.Fatalf("mouse moved fired %d times", moves)
	}
	if x, y := InputGetMousePosition(); x != 10 || y != 20 {
		t.Fatalf("position = %d,%d", x, y)
	}
	if x, y := InputGetPreviousMousePosition(); x != 0 || y != 0 {
		t.Fatalf("previous position = %d,%d", x, y)
	}

	_ = InputProcessButton(BUTTON_LEFT, true)
	if !InputIsButtonDown(BUTTON_LEFT) || InputIsButtonUp(BUTTON_LEFT) {
		t.Fatal("button state not recorded")
	}
	_ = InputUpdate(0)
	if !InputWasButtonDown(BUTTON_LEFT) {
		t.Fatal("previous button state not copied")
	}
}

func TestInputWithoutInitialize(t *testing.T) {
	if InputIsKeyDown(KEY_A) || InputIsKeyUp(KEY_A) {
		t.Fatal("uninitialized input must report false")
	}
	if err := InputProcessKey(KEY_A, true); err != nil {
		t.Fatal(err)
	}
}
