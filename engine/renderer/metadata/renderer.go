package metadata

import "github.com/Lakasabasz/Vulkan-test/engine/math"

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief The application version as major, minor, patch. */
	ApplicationVersion [3]uint32
	/** @brief Enables VK_LAYER_KHRONOS_validation and the debug callback. */
	EnableValidation bool
	/** @brief Number of frames the CPU may record ahead of the GPU. */
	MaxFramesInFlight uint32
	/** @brief Preferred present mode: "mailbox", "fifo", "fifo_relaxed" or "immediate". */
	PresentMode string
	/** @brief Colour the render pass clears to. */
	ClearColor [4]float32
	/** @brief Only accept discrete GPUs. */
	PreferDiscreteGPU bool
}

/** @brief Everything the renderer needs to draw one frame. */
type RenderPacket struct {
	DeltaTime float64
	/** @brief Geometries drawn, in order. */
	Geometries []*GeometryRenderData
}

// NewGeometryConfig builds a named config from the given vertices.
func NewGeometryConfig(name string, vertices []math.Vertex2D) *GeometryConfig {
	return &GeometryConfig{Name: name, Vertices: vertices}
}
