package engine

import (
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/Lakasabasz/Vulkan-test/engine/systems"
)

type Game struct {
	Config        *Config
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render fills the packet with what should be drawn this frame.
type Render func(packet *metadata.RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
