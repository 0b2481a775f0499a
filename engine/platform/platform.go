package platform

import (
	"runtime"
	"time"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
}

func New() *Platform {
	return &Platform{
		Window: nil,
	}
}

// Startup initializes GLFW and opens a window without a client API, ready
// for a Vulkan surface.
func (p *Platform) Startup(applicationName string, x, y, width, height uint32, resizable bool) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw: Vulkan loader not found")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, boolHint(resizable))
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "failed to create window")
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetMouseButtonCallback(mouseButtonCallback)
	p.Window.SetCursorPosCallback(cursorPosCallback)
	p.Window.SetScrollCallback(scrollCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	if x != 0 || y != 0 {
		p.Window.SetPos(int(x), int(y))
	}
	p.Window.Show()

	core.LogInfo("Window '%s' created (%dx%d).", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. Returns false once the
// window was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

// WaitEvents blocks until at least one window event arrives or the timeout
// elapses. Used while the window is minimized.
func (p *Platform) WaitEvents(timeout time.Duration) {
	glfw.WaitEventsTimeout(timeout.Seconds())
}

// PostEmptyEvent wakes up a WaitEvents call from another goroutine.
func (p *Platform) PostEmptyEvent() {
	glfw.PostEmptyEvent()
}

func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateVulkanSurface returns the VkSurfaceKHR handle for the window.
func (p *Platform) CreateVulkanSurface(instance interface{}) (uintptr, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "vulkan surface creation failed")
	}
	return surface, nil
}

func (p *Platform) GetFramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

func (p *Platform) SetTitle(title string) {
	p.Window.SetTitle(title)
}

func (p *Platform) SetShouldClose() {
	p.Window.SetShouldClose(true)
}

func GetAbsoluteTime() float64 {
	return core.AbsoluteTime()
}

// Sleep on the thread for the provided ms. This blocks the main thread.
// Should only be used for giving time back to the OS for unused update power.
func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	core.InputProcessKey(TranslateKey(key), action == glfw.Press)
}

func mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	core.InputProcessButton(b, action == glfw.Press)
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if xpos < 0 || ypos < 0 {
		return
	}
	core.InputProcessMouseMove(uint16(xpos), uint16(ypos))
}

func scrollCallback(w *glfw.Window, xoff, yoff float64) {
	var z int8
	switch {
	case yoff > 0:
		z = 1
	case yoff < 0:
		z = -1
	default:
		return
	}
	core.InputProcessMouseWheel(z)
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{
			WindowWidth:  uint32(width),
			WindowHeight: uint32(height),
		},
	})
}
