package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/platform"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64
	context     *VulkanContext
	config      metadata.RendererBackendConfig
	presentMode vk.PresentMode

	pacer  *FramePacer
	resize resizeTracker

	geometries map[uint32]*vulkanGeometryData
	// Shader the current pipeline was built from.
	shaderConfig *metadata.ShaderConfig

	frameStarted bool
	// Set when acquire returned SUBOPTIMAL. The swapchain is rebuilt after
	// the frame is presented.
	recreateAfterPresent bool
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform:    p,
		FrameNumber: 0,
		context: &VulkanContext{
			Allocator: nil,
			locks:     NewVulkanLockPool(),
		},
		geometries: make(map[uint32]*vulkanGeometryData),
	}
}

func (vr *VulkanRenderer) Initialize(config *metadata.RendererBackendConfig, width, height uint32) error {
	vr.config = *config
	if vr.config.MaxFramesInFlight == 0 {
		vr.config.MaxFramesInFlight = 2
	}
	presentMode, err := ParsePresentMode(config.PresentMode)
	if err != nil {
		return err
	}
	vr.presentMode = presentMode

	if err := loadVulkan(); err != nil {
		return err
	}

	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height
	vr.resize = resizeTracker{width: width, height: height}

	if err := createInstance(vr.context, &vr.config, vr.platform.GetRequiredExtensionNames()); err != nil {
		return err
	}

	if vr.config.EnableValidation {
		if err := createDebugCallback(vr.context); err != nil {
			return err
		}
	}

	if err := createSurface(vr.context, vr.platform.CreateVulkanSurface); err != nil {
		return err
	}

	requirements := &VulkanPhysicalDeviceRequirements{
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
		DiscreteGPU:          vr.config.PreferDiscreteGPU,
	}
	if err := DeviceCreate(vr.context, requirements); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.presentMode, vk.NullSwapchain)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.syncFramebufferSize()

	rp, err := RenderpassCreate(
		vr.context,
		sc.ImageFormat.Format,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		vr.config.ClearColor)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	if err := sc.RegenerateFramebuffers(vr.context, rp); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	if err := vr.createSyncObjects(); err != nil {
		return err
	}
	vr.pacer = NewFramePacer(vr.config.MaxFramesInFlight, sc.ImageCount)

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	pool := vr.context.Device.GraphicsCommandPool
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.config.MaxFramesInFlight)
	for i := range vr.context.GraphicsCommandBuffers {
		cb, err := NewVulkanCommandBuffer(vr.context, pool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	frames := vr.config.MaxFramesInFlight
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, frames)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, frames)
	vr.context.InFlightFences = make([]*VulkanFence, frames)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := uint32(0); i < frames; i++ {
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			return errors.Newf("failed to create image available semaphore: %s", VulkanResultString(res, true))
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			return errors.Newf("failed to create queue complete semaphore: %s", VulkanResultString(res, true))
		}

		// Created signaled so the first wait on each slot returns at once.
		f, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		destroySurface(vr.context)
		destroyDebugCallback(vr.context)
		destroyInstance(vr.context)
		return nil
	}
	device := vr.context.Device.LogicalDevice
	if res := vk.DeviceWaitIdle(device); !VulkanResultIsSuccess(res) {
		core.LogError("vkDeviceWaitIdle failed on shutdown: %s", VulkanResultString(res, true))
	}

	// Destroy in the opposite order of creation.
	for id, g := range vr.geometries {
		g.destroy(vr.context)
		delete(vr.geometries, id)
	}

	for i := range vr.context.InFlightFences {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(device, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(device, vr.context.QueueCompleteSemaphores[i], vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.InFlightFences[i] != nil {
			vr.context.InFlightFences[i].FenceDestroy(vr.context)
		}
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil

	for _, cb := range vr.context.GraphicsCommandBuffers {
		if cb != nil {
			cb.Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
		vr.context.Pipeline = nil
	}

	if vr.context.Swapchain != nil {
		vr.context.Swapchain.DestroyFramebuffers(vr.context)
	}

	if vr.context.MainRenderpass != nil {
		vr.context.MainRenderpass.RenderpassDestroy(vr.context)
		vr.context.MainRenderpass = nil
	}

	if vr.context.Swapchain != nil {
		vr.context.Swapchain.SwapchainDestroy(vr.context)
		vr.context.Swapchain = nil
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	destroySurface(vr.context)
	destroyDebugCallback(vr.context)
	destroyInstance(vr.context)
	return nil
}

// Resized records a new framebuffer size. The swapchain is rebuilt at the
// start of the next frame.
func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.resize.Resized(width, height)
	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.resize.generation)
	return nil
}

// BeginFrame waits for the current slot, acquires a swapchain image and
// starts recording. core.ErrSwapchainBooting means the frame was skipped.
func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	device := vr.context.Device
	vr.frameStarted = false

	switch beforeFrameAction(vr.context.RecreatingSwapchain, vr.resize.Pending()) {
	case frameSkipIdle:
		if result := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(result) {
			return errors.Newf("begin frame vkDeviceWaitIdle (1) failed: '%s'", VulkanResultString(result, true))
		}
		core.LogInfo("Recreating swapchain, booting.")
		return core.ErrSwapchainBooting
	case frameSkipRecreate:
		// The framebuffer has been resized, a new swapchain must be created.
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		core.LogInfo("Resized, booting.")
		return core.ErrSwapchainBooting
	}

	frame := vr.pacer.CurrentFrame()

	// Wait for the execution of the current frame to complete. The fence being free will allow this one to move on.
	if err := vr.context.InFlightFences[frame].FenceWait(vr.context, vk.MaxUint64); err != nil {
		return errors.Wrap(err, "in-flight fence wait failure")
	}

	// Acquire the next image from the swap chain. The semaphore is waited on by the queue submission.
	imageIndex, status, result := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, vk.MaxUint64, vr.context.ImageAvailableSemaphores[frame])
	action, recreateLater := acquireAction(status)
	switch {
	case action.skipsFrame():
		// The slot fence is still signaled, so the next attempt will not block on it.
		vr.resize.Resized(vr.platform.GetFramebufferSize())
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	case action == frameFail:
		return errors.Newf("failed to acquire swapchain image: %s", VulkanResultString(result, true))
	}
	vr.recreateAfterPresent = vr.recreateAfterPresent || recreateLater
	vr.context.ImageIndex = imageIndex

	// Make sure no previous frame is still rendering to this image.
	if prev, wait := vr.pacer.ClaimImage(imageIndex); wait {
		if err := vr.context.InFlightFences[prev].FenceWait(vr.context, vk.MaxUint64); err != nil {
			return errors.Wrap(err, "image in-flight fence wait failure")
		}
	}

	// Only reset the fence when work is certain to be submitted with it.
	if err := vr.context.InFlightFences[frame].FenceReset(vr.context); err != nil {
		return err
	}

	// Begin recording commands.
	commandBuffer := vr.context.GraphicsCommandBuffers[frame]
	if err := commandBuffer.Reset(); err != nil {
		return err
	}
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	extent := vr.context.Swapchain.Extent
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}

	vr.context.MainRenderpass.W = float32(extent.Width)
	vr.context.MainRenderpass.H = float32(extent.Height)

	// Begin the render pass.
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[imageIndex].Handle)

	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	}

	vr.frameStarted = true
	return nil
}

// EndFrame submits the recorded frame and presents it.
func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	if !vr.frameStarted {
		return errors.New("EndFrame called without a started frame")
	}
	vr.frameStarted = false

	frame := vr.pacer.CurrentFrame()
	commandBuffer := vr.context.GraphicsCommandBuffers[frame]

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType: vk.StructureTypeSubmitInfo,
		// Command buffer(s) to be executed.
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
		// The semaphore(s) to be signaled when the queue is complete.
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[frame]},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{vr.context.ImageAvailableSemaphores[frame]},
		// Colour attachment writes wait on the semaphore, earlier stages may run.
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	device := vr.context.Device
	if err := vr.context.locks.SafeQueueCall(device.GraphicsQueueIndex, func() error {
		if result := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[frame].Handle); result != vk.Success {
			return errors.Newf("vkQueueSubmit failed with result: %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()

	// Give the image back to the swapchain.
	status, presentErr := vr.context.Swapchain.SwapchainPresent(
		vr.context,
		device.PresentQueue,
		device.PresentQueueIndex,
		vr.context.QueueCompleteSemaphores[frame],
		vr.context.ImageIndex)

	// Increment (and loop) the index.
	vr.pacer.Advance()
	vr.FrameNumber++

	switch presentAction(status, vr.recreateAfterPresent, vr.resize.Pending()) {
	case frameFail:
		return presentErr
	case frameRecreate:
		// Swapchain is out of date, suboptimal or a framebuffer resize has occurred.
		if !vr.resize.Pending() {
			vr.resize.Resized(vr.platform.GetFramebufferSize())
		}
		vr.recreateAfterPresent = false
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
	}
	return nil
}

// DrawGeometry records a draw of an uploaded geometry into the current frame.
func (vr *VulkanRenderer) DrawGeometry(data *metadata.GeometryRenderData) {
	if !vr.frameStarted || data == nil || data.Geometry == nil || vr.context.Pipeline == nil {
		return
	}
	g, ok := vr.geometries[data.Geometry.InternalID]
	if !ok {
		core.LogWarn("DrawGeometry: geometry '%s' was never uploaded", data.Geometry.Name)
		return
	}
	g.draw(vr.context.GraphicsCommandBuffers[vr.pacer.CurrentFrame()])
}

func (vr *VulkanRenderer) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex2D) error {
	if uint32(len(vr.geometries)) >= VULKAN_MAX_GEOMETRY_COUNT {
		return errors.Newf("cannot upload geometry '%s': limit of %d reached", geometry.Name, VULKAN_MAX_GEOMETRY_COUNT)
	}
	if old, ok := vr.geometries[geometry.InternalID]; ok {
		// The previous buffer may still be read by frames in flight.
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
		old.destroy(vr.context)
		delete(vr.geometries, geometry.InternalID)
	}
	g, err := createGeometry(vr.context, geometry, vertices)
	if err != nil {
		return err
	}
	vr.geometries[geometry.InternalID] = g
	core.LogDebug("Geometry '%s' uploaded: %d vertices.", geometry.Name, g.VertexCount)
	return nil
}

func (vr *VulkanRenderer) DestroyGeometry(geometry *metadata.Geometry) {
	g, ok := vr.geometries[geometry.InternalID]
	if !ok {
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	g.destroy(vr.context)
	delete(vr.geometries, geometry.InternalID)
}

// ShaderCreate builds a pipeline from the shader config and makes it
// current. On failure the previous pipeline stays in use.
func (vr *VulkanRenderer) ShaderCreate(config *metadata.ShaderConfig) error {
	pipeline, err := NewShaderPipeline(vr.context, vr.context.MainRenderpass, config)
	if err != nil {
		return err
	}
	if old := vr.context.Pipeline; old != nil {
		// Frames in flight may still reference the old pipeline.
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
		old.Destroy(vr.context)
	}
	vr.context.Pipeline = pipeline
	vr.shaderConfig = config
	core.LogInfo("Pipeline for shader '%s' created.", config.Name)
	return nil
}

func (vr *VulkanRenderer) syncFramebufferSize() {
	extent := vr.context.Swapchain.Extent
	vr.context.FramebufferWidth = extent.Width
	vr.context.FramebufferHeight = extent.Height
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if !canRecreateSwapchain(vr.context.RecreatingSwapchain, vr.resize.Minimized()) {
		core.LogDebug("recreate_swapchain refused: recreating=%t, size=%dx%d. Booting.",
			vr.context.RecreatingSwapchain, vr.resize.width, vr.resize.height)
		return nil
	}

	vr.context.RecreatingSwapchain = true
	defer func() {
		vr.context.RecreatingSwapchain = false
	}()

	// Wait for any operations to complete.
	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
		return errors.Newf("recreate swapchain vkDeviceWaitIdle failed: %s", VulkanResultString(res, true))
	}

	// Requery support
	support, err := DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface)
	if err != nil {
		return err
	}
	vr.context.Device.SwapchainSupport = support

	// The old swapchain is retired by the new one and destroyed only once
	// the replacement exists.
	old := vr.context.Swapchain
	oldFormat := old.ImageFormat.Format
	old.DestroyFramebuffers(vr.context)
	old.destroyViews(vr.context)

	width, height := vr.resize.Size()
	sc, err := SwapchainCreate(vr.context, width, height, vr.presentMode, old.Handle)
	if err != nil {
		return err
	}
	old.SwapchainDestroy(vr.context)
	vr.context.Swapchain = sc
	vr.pacer.ResetImages(sc.ImageCount)

	// A new surface format needs a matching render pass and pipeline.
	if sc.ImageFormat.Format != oldFormat {
		if err := vr.recreateRenderpass(sc.ImageFormat.Format); err != nil {
			return err
		}
	}

	// Sync the framebuffer size with the cached sizes.
	vr.syncFramebufferSize()
	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	if err := sc.RegenerateFramebuffers(vr.context, vr.context.MainRenderpass); err != nil {
		return err
	}

	// Update framebuffer size generation.
	vr.resize.Acknowledge()
	return nil
}

func (vr *VulkanRenderer) recreateRenderpass(format vk.Format) error {
	core.LogInfo("Surface format changed, rebuilding render pass.")
	old := vr.context.MainRenderpass
	rp, err := RenderpassCreate(vr.context, format, 0, 0, old.W, old.H, [4]float32{old.R, old.G, old.B, old.A})
	if err != nil {
		return err
	}
	old.RenderpassDestroy(vr.context)
	vr.context.MainRenderpass = rp

	if vr.shaderConfig == nil {
		return nil
	}
	pipeline, err := NewShaderPipeline(vr.context, rp, vr.shaderConfig)
	if err != nil {
		return err
	}
	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
	}
	vr.context.Pipeline = pipeline
	return nil
}
