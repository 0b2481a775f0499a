package metadata

import (
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

/**
 * @brief Represents the configuration for a geometry.
 */
type GeometryConfig struct {
	/** @brief The Name of the geometry. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []math.Vertex2D
}

/**
 * @brief Represents geometry uploaded to the GPU.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID uuid.UUID
	/** @brief The internal geometry identifier, used by the renderer backend to map to internal resources. */
	InternalID uint32
	/** @brief The geometry generation. Incremented every time the geometry changes. */
	Generation uint16
	/** @brief The center of the geometry in local coordinates. */
	Center mgl32.Vec2
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents2D
	/** @brief The number of vertices to draw. */
	VertexCount uint32
	/** @brief The geometry name. */
	Name string
}

type GeometryRenderData struct {
	Geometry *Geometry
}
