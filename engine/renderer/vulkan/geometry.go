package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Max number of simultaneously uploaded geometries
 */
const VULKAN_MAX_GEOMETRY_COUNT uint32 = 4096

/**
 * @brief Internal buffer data for geometry.
 */
type vulkanGeometryData struct {
	/** @brief The unique geometry identifier. */
	ID uint32
	/** @brief The geometry generation. Incremented every time the geometry data changes. */
	Generation uint16
	/** @brief The vertex count. */
	VertexCount uint32
	/** @brief Device local vertex buffer. */
	VertexBuffer *VulkanBuffer
}

func createGeometry(context *VulkanContext, geometry *metadata.Geometry, vertices []math.Vertex2D) (*vulkanGeometryData, error) {
	if len(vertices) == 0 {
		return nil, errors.Newf("geometry %s has no vertices", geometry.Name)
	}
	buffer, err := UploadDeviceLocal(context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), math.VerticesToBytes(vertices))
	if err != nil {
		return nil, errors.Wrapf(err, "geometry %s", geometry.Name)
	}
	return &vulkanGeometryData{
		ID:           geometry.InternalID,
		Generation:   geometry.Generation,
		VertexCount:  uint32(len(vertices)),
		VertexBuffer: buffer,
	}, nil
}

func (g *vulkanGeometryData) destroy(context *VulkanContext) {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Destroy(context)
		g.VertexBuffer = nil
	}
}

func (g *vulkanGeometryData) draw(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{g.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdDraw(commandBuffer.Handle, g.VertexCount, 1, 0, 0)
}
