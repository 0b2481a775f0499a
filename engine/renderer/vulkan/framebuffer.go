package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

func FramebufferCreate(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32, attachments []vk.ImageView) (*VulkanFramebuffer, error) {
	// Take a copy of the attachments
	outFramebuffer := &VulkanFramebuffer{
		Attachments: append([]vk.ImageView{}, attachments...),
		Renderpass:  renderpass,
	}

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(outFramebuffer.Attachments)),
		PAttachments:    outFramebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var pFramebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &pFramebuffer); res != vk.Success {
		return nil, errors.Newf("failed to create framebuffer: %s", VulkanResultString(res, true))
	}
	outFramebuffer.Handle = pFramebuffer
	return outFramebuffer, nil
}

func (vfb *VulkanFramebuffer) Destroy(context *VulkanContext) {
	if vfb.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, vfb.Handle, context.Allocator)
	}
	vfb.Attachments = nil
	vfb.Handle = vk.NullFramebuffer
	vfb.Renderpass = nil
}
