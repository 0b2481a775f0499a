package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

func (s VulkanCommandBufferState) String() string {
	switch s {
	case COMMAND_BUFFER_STATE_READY:
		return "ready"
	case COMMAND_BUFFER_STATE_RECORDING:
		return "recording"
	case COMMAND_BUFFER_STATE_IN_RENDER_PASS:
		return "in_render_pass"
	case COMMAND_BUFFER_STATE_RECORDING_ENDED:
		return "recording_ended"
	case COMMAND_BUFFER_STATE_SUBMITTED:
		return "submitted"
	default:
		return "not_allocated"
	}
}

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	vCommandBuffer := &VulkanCommandBuffer{
		State: COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}

	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	err := context.locks.SafeCall(CommandBufferManagement, func() error {
		if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
			return errors.Newf("failed to allocate command buffer: %s", VulkanResultString(res, true))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	vCommandBuffer.Handle = handles[0]
	vCommandBuffer.State = COMMAND_BUFFER_STATE_READY

	return vCommandBuffer, nil
}

func (v *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	if v.Handle == nil {
		return
	}
	_ = context.locks.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{v.Handle})
		return nil
	})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		return errors.Newf("failed to begin recording command buffer: %s", VulkanResultString(res, true))
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		return errors.Newf("failed to record command buffer: %s", VulkanResultString(res, true))
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

// Reset returns the buffer to the initial state. The pool must have been
// created with the reset command buffer flag.
func (v *VulkanCommandBuffer) Reset() error {
	if res := vk.ResetCommandBuffer(v.Handle, 0); res != vk.Success {
		return errors.Newf("failed to reset command buffer: %s", VulkanResultString(res, true))
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return nil
}

// AllocateAndBeginSingleUse allocates a primary command buffer and begins
// recording it for one-time submission.
func AllocateAndBeginSingleUse(context *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	cb, err := NewVulkanCommandBuffer(context, pool, true)
	if err != nil {
		return nil, err
	}
	if err := cb.Begin(true, false, false); err != nil {
		cb.Free(context, pool)
		return nil, err
	}
	return cb, nil
}

// EndSingleUse ends recording, submits to the queue, waits for it to go
// idle and frees the command buffer.
func (v *VulkanCommandBuffer) EndSingleUse(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, queueFamilyIndex uint32) error {
	defer v.Free(context, pool)

	if err := v.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.Handle},
	}

	return context.locks.SafeQueueCall(queueFamilyIndex, func() error {
		if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			return errors.Newf("failed to submit single use command buffer: %s", VulkanResultString(res, true))
		}
		v.UpdateSubmitted()
		// Wait for it to finish
		if res := vk.QueueWaitIdle(queue); res != vk.Success {
			return errors.Newf("queue failed to wait in idle mode: %s", VulkanResultString(res, true))
		}
		return nil
	})
}
