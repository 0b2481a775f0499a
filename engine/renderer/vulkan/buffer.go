package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	outBuffer := &VulkanBuffer{Size: size, Usage: usage}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	err := context.locks.SafeCall(BufferManagement, func() error {
		if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &outBuffer.Handle); res != vk.Success {
			return errors.Newf("failed to create buffer: %s", VulkanResultString(res, true))
		}

		var memRequirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, outBuffer.Handle, &memRequirements)
		memRequirements.Deref()

		memoryTypeIndex := context.FindMemoryIndex(memRequirements.MemoryTypeBits, properties)
		if memoryTypeIndex < 0 {
			return errors.New("failed to find suitable memory type")
		}

		allocInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  memRequirements.Size,
			MemoryTypeIndex: uint32(memoryTypeIndex),
		}
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocInfo, context.Allocator, &outBuffer.Memory); res != vk.Success {
			return errors.Newf("failed to allocate buffer memory: %s", VulkanResultString(res, true))
		}
		if res := vk.BindBufferMemory(context.Device.LogicalDevice, outBuffer.Handle, outBuffer.Memory, 0); res != vk.Success {
			return errors.Newf("failed to bind buffer memory: %s", VulkanResultString(res, true))
		}
		return nil
	})
	if err != nil {
		outBuffer.Destroy(context)
		return nil, err
	}
	return outBuffer, nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	_ = context.locks.SafeCall(BufferManagement, func() error {
		if b.Handle != vk.NullBuffer {
			vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
			b.Handle = vk.NullBuffer
		}
		if b.Memory != vk.NullDeviceMemory {
			vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
			b.Memory = vk.NullDeviceMemory
		}
		return nil
	})
	b.Size = 0
}

// LoadData copies data into a host visible buffer.
func (b *VulkanBuffer) LoadData(context *VulkanContext, offset vk.DeviceSize, data []byte) error {
	if vk.DeviceSize(len(data))+offset > b.Size {
		return errors.Newf("buffer overflow: %d bytes at offset %d into %d", len(data), offset, b.Size)
	}
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, offset, vk.DeviceSize(len(data)), 0, &pData); res != vk.Success {
		return errors.Newf("failed to map buffer memory: %s", VulkanResultString(res, true))
	}
	vk.Memcopy(pData, data)
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return nil
}

// CopyTo records and submits a one-shot copy into dest, waiting for it to
// complete.
func (b *VulkanBuffer) CopyTo(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, queueFamilyIndex uint32, dest *VulkanBuffer, size vk.DeviceSize) error {
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}
	vk.CmdCopyBuffer(cb.Handle, b.Handle, dest.Handle, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}})
	return cb.EndSingleUse(context, pool, queue, queueFamilyIndex)
}

// UploadDeviceLocal creates a device local buffer with the given usage and
// fills it with data through a host visible staging buffer.
func UploadDeviceLocal(context *VulkanContext, usage vk.BufferUsageFlags, data []byte) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))
	if size == 0 {
		return nil, errors.New("cannot upload an empty buffer")
	}

	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		return nil, err
	}

	buffer, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	device := context.Device
	if err := staging.CopyTo(context, device.GraphicsCommandPool, device.GraphicsQueue, device.GraphicsQueueIndex, buffer, size); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}
