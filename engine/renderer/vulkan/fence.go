package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// VulkanFence wraps a fence and tracks its signaled state, so waiting on a
// fence known to be signaled does not reach the driver.
type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		return nil, errors.Newf("failed to create fence: %s", VulkanResultString(res, true))
	}
	fence.Handle = pFence
	return fence, nil
}

func (vf *VulkanFence) FenceDestroy(context *VulkanContext) {
	if vf.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = vk.NullFence
	}
	vf.IsSignaled = false
}

// FenceWait blocks until the fence is signaled or the timeout elapses.
func (vf *VulkanFence) FenceWait(context *VulkanContext, timeoutNs uint64) error {
	if vf.IsSignaled {
		// If already signaled, do not wait.
		return nil
	}
	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		vf.IsSignaled = true
		return nil
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	default:
		core.LogError("vk_fence_wait - %s", VulkanResultString(result, true))
	}
	return errors.Newf("fence wait failed: %s", VulkanResultString(result, false))
}

func (vf *VulkanFence) FenceReset(context *VulkanContext) error {
	if !vf.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		return errors.Newf("failed to reset fence: %s", VulkanResultString(res, true))
	}
	vf.IsSignaled = false
	return nil
}
