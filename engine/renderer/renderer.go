package renderer

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/platform"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/vulkan"
	"github.com/cockroachdb/errors"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
)

type Renderer struct {
	backend RendererBackend

	FrameNumber   uint64
	SkippedFrames uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

// NewRenderer creates a renderer on top of the backend of the given type.
func NewRenderer(rendererType RendererType, p *platform.Platform) (*Renderer, error) {
	switch rendererType {
	case Vulkan:
		return New(vulkan.New(p)), nil
	}
	return nil, errors.Newf("unsupported renderer type %d", rendererType)
}

func (r *Renderer) Initialize(config *metadata.RendererBackendConfig, width, height uint32) error {
	if err := r.backend.Initialize(config, width, height); err != nil {
		return errors.Wrap(err, "renderer backend failed to initialize")
	}
	core.LogInfo("Renderer initialized.")
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

// DrawFrame renders one packet. A frame skipped because the swapchain was
// being rebuilt is not an error.
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			r.SkippedFrames++
			return nil
		}
		return errors.Wrap(err, "RendererBeginFrame failed")
	}

	for _, g := range packet.Geometries {
		r.backend.DrawGeometry(g)
	}

	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	r.FrameNumber++
	return nil
}

func (r *Renderer) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex2D) error {
	return r.backend.CreateGeometry(geometry, vertices)
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) {
	r.backend.DestroyGeometry(geometry)
}

func (r *Renderer) ShaderCreate(config *metadata.ShaderConfig) error {
	return r.backend.ShaderCreate(config)
}
