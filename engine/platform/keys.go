package platform

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var namedKeys = map[glfw.Key]core.KeyCode{
	glfw.KeyBackspace:    core.KEY_BACKSPACE,
	glfw.KeyTab:          core.KEY_TAB,
	glfw.KeyEnter:        core.KEY_ENTER,
	glfw.KeyPause:        core.KEY_PAUSE,
	glfw.KeyCapsLock:     core.KEY_CAPITAL,
	glfw.KeyEscape:       core.KEY_ESCAPE,
	glfw.KeySpace:        core.KEY_SPACE,
	glfw.KeyPageUp:       core.KEY_PRIOR,
	glfw.KeyPageDown:     core.KEY_NEXT,
	glfw.KeyEnd:          core.KEY_END,
	glfw.KeyHome:         core.KEY_HOME,
	glfw.KeyLeft:         core.KEY_LEFT,
	glfw.KeyUp:           core.KEY_UP,
	glfw.KeyRight:        core.KEY_RIGHT,
	glfw.KeyDown:         core.KEY_DOWN,
	glfw.KeyPrintScreen:  core.KEY_PRINT,
	glfw.KeyInsert:       core.KEY_INSERT,
	glfw.KeyDelete:       core.KEY_DELETE,
	glfw.KeyNumLock:      core.KEY_NUMLOCK,
	glfw.KeyScrollLock:   core.KEY_SCROLL,
	glfw.KeyLeftShift:    core.KEY_LSHIFT,
	glfw.KeyRightShift:   core.KEY_RSHIFT,
	glfw.KeyLeftControl:  core.KEY_LCONTROL,
	glfw.KeyRightControl: core.KEY_RCONTROL,
	glfw.KeyLeftAlt:      core.KEY_LMENU,
	glfw.KeyRightAlt:     core.KEY_RMENU,
	glfw.KeySemicolon:    core.KEY_SEMICOLON,
	glfw.KeyEqual:        core.KEY_PLUS,
	glfw.KeyComma:        core.KEY_COMMA,
	glfw.KeyMinus:        core.KEY_MINUS,
	glfw.KeyPeriod:       core.KEY_PERIOD,
	glfw.KeySlash:        core.KEY_SLASH,
	glfw.KeyGraveAccent:  core.KEY_GRAVE,
}

// TranslateKey maps a GLFW key to the engine key code. Letters and digits
// share their ASCII value in both tables.
func TranslateKey(key glfw.Key) core.KeyCode {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KeyCode(key)
	case key >= glfw.Key0 && key <= glfw.Key9:
		return core.KeyCode(key)
	case key >= glfw.KeyF1 && key <= glfw.KeyF12:
		return core.KEY_F1 + core.KeyCode(key-glfw.KeyF1)
	}
	if k, ok := namedKeys[key]; ok {
		return k
	}
	return core.KEY_UNKNOWN
}
