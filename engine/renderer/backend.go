package renderer

import (
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
)

type RendererBackend interface {
	Initialize(config *metadata.RendererBackendConfig, width, height uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	// BeginFrame returns core.ErrSwapchainBooting when the frame must be skipped.
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex2D) error
	DestroyGeometry(geometry *metadata.Geometry)
	DrawGeometry(data *metadata.GeometryRenderData)
	ShaderCreate(config *metadata.ShaderConfig) error
}
