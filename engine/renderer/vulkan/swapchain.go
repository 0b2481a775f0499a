package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer
}

// SwapchainCreate builds a swapchain for the surface using the support info
// cached on the device. oldSwapchain is retired by the new one; the caller
// still destroys it.
func SwapchainCreate(context *VulkanContext, width, height uint32, preferredPresentMode vk.PresentMode, oldSwapchain vk.Swapchain) (*VulkanSwapchain, error) {
	support := context.Device.SwapchainSupport
	swapchain := &VulkanSwapchain{}

	format, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return nil, err
	}
	swapchain.ImageFormat = format
	swapchain.PresentMode = ChoosePresentMode(support.PresentModes, preferredPresentMode)
	swapchain.Extent = ChooseSwapExtent(support.Capabilities, width, height)
	imageCount := ChooseImageCount(support.Capabilities)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     oldSwapchain,
	}

	// Images are shared between the graphics and present families when they differ.
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		return nil, errors.Newf("failed to create swapchain: %s", VulkanResultString(res, true))
	}
	swapchain.Handle = swapchainHandle

	// Images
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		swapchain.SwapchainDestroy(context)
		return nil, errors.Newf("failed to get swapchain images: %s", VulkanResultString(res, true))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		swapchain.SwapchainDestroy(context)
		return nil, errors.Newf("failed to get swapchain images: %s", VulkanResultString(res, true))
	}

	// Views
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	for i := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			swapchain.SwapchainDestroy(context)
			return nil, errors.Newf("failed to create image view %d: %s", i, VulkanResultString(res, true))
		}
	}

	core.LogInfo("Swapchain created: %dx%d, %d images, present mode %s.",
		swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount, PresentModeString(swapchain.PresentMode))

	return swapchain, nil
}

// SwapchainDestroy releases the framebuffers, the image views and the
// swapchain, in that order. The images belong to the swapchain.
func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.DestroyFramebuffers(context)
	vs.destroyViews(context)

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
	vs.ImageCount = 0
}

func (vs *VulkanSwapchain) destroyViews(context *VulkanContext) {
	for i := range vs.Views {
		if vs.Views[i] != vk.NullImageView {
			vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil
}

// RegenerateFramebuffers creates one framebuffer per image view.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.DestroyFramebuffers(context)
	vs.Framebuffers = make([]*VulkanFramebuffer, vs.ImageCount)
	for i := range vs.Views {
		fb, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, []vk.ImageView{vs.Views[i]})
		if err != nil {
			return err
		}
		vs.Framebuffers[i] = fb
	}
	return nil
}

func (vs *VulkanSwapchain) DestroyFramebuffers(context *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		if fb != nil {
			fb.Destroy(context)
		}
	}
	vs.Framebuffers = nil
}

// SwapchainAcquireNextImageIndex asks for the next image, signalling the
// semaphore once it is available. Recreation is left to the caller.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore) (uint32, swapchainStatus, vk.Result) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, vk.NullFence, &imageIndex)
	return imageIndex, classifySwapchainResult(result), result
}

// SwapchainPresent returns the image to the swapchain once the render
// complete semaphore is signaled. The error is set only for swapchainFailed.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, presentFamily uint32, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) (swapchainStatus, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	status := swapchainFailed
	err := context.locks.SafeQueueCall(presentFamily, func() error {
		result := vk.QueuePresent(presentQueue, &presentInfo)
		status = classifySwapchainResult(result)
		if status == swapchainFailed {
			return errors.Newf("failed to present swap chain image: %s", VulkanResultString(result, true))
		}
		return nil
	})
	return status, err
}
