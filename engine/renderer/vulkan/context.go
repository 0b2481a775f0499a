package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	vk "github.com/goki/vulkan"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Pipeline       *VulkanPipeline

	// One per frame in flight.
	GraphicsCommandBuffers   []*VulkanCommandBuffer
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore
	InFlightFences           []*VulkanFence

	ImageIndex uint32

	RecreatingSwapchain bool

	locks *VulkanLockPool
}

// FindMemoryIndex returns the index of a memory type allowed by typeFilter
// that has all the requested property flags, or -1.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
