package vulkan

import (
	vk "github.com/goki/vulkan"
)

const noOwner = -1

// FramePacer tracks the frame slot being recorded and which slot last
// submitted work rendering to each swapchain image.
type FramePacer struct {
	maxFramesInFlight uint32
	currentFrame      uint32
	imagesInFlight    []int
}

func NewFramePacer(maxFramesInFlight, imageCount uint32) *FramePacer {
	if maxFramesInFlight == 0 {
		maxFramesInFlight = 1
	}
	p := &FramePacer{maxFramesInFlight: maxFramesInFlight}
	p.ResetImages(imageCount)
	return p
}

func (p *FramePacer) CurrentFrame() uint32 {
	return p.currentFrame
}

func (p *FramePacer) MaxFramesInFlight() uint32 {
	return p.maxFramesInFlight
}

// ClaimImage marks the image as owned by the current slot. It returns the
// slot whose fence must be waited on before the image can be rendered to
// again, or false when no other slot owns it.
func (p *FramePacer) ClaimImage(imageIndex uint32) (uint32, bool) {
	if int(imageIndex) >= len(p.imagesInFlight) {
		return 0, false
	}
	prev := p.imagesInFlight[imageIndex]
	p.imagesInFlight[imageIndex] = int(p.currentFrame)
	if prev == noOwner || prev == int(p.currentFrame) {
		return 0, false
	}
	return uint32(prev), true
}

// Owner returns the slot owning the image, or -1.
func (p *FramePacer) Owner(imageIndex uint32) int {
	if int(imageIndex) >= len(p.imagesInFlight) {
		return noOwner
	}
	return p.imagesInFlight[imageIndex]
}

func (p *FramePacer) Advance() {
	p.currentFrame = (p.currentFrame + 1) % p.maxFramesInFlight
}

// ResetImages forgets all image ownership, sized for a new swapchain.
func (p *FramePacer) ResetImages(imageCount uint32) {
	p.imagesInFlight = make([]int, imageCount)
	for i := range p.imagesInFlight {
		p.imagesInFlight[i] = noOwner
	}
}

// resizeTracker counts framebuffer size changes. A generation that differs
// from the last acknowledged one means the swapchain is stale.
type resizeTracker struct {
	width, height  uint32
	generation     uint64
	lastGeneration uint64
}

func (r *resizeTracker) Resized(width, height uint32) {
	r.width = width
	r.height = height
	r.generation++
}

func (r *resizeTracker) Pending() bool {
	return r.generation != r.lastGeneration
}

func (r *resizeTracker) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *resizeTracker) Minimized() bool {
	return r.width == 0 || r.height == 0
}

func (r *resizeTracker) Acknowledge() {
	r.lastGeneration = r.generation
}

type swapchainStatus int

const (
	swapchainOK swapchainStatus = iota
	// The image is usable but the swapchain should be recreated.
	swapchainSuboptimal
	swapchainOutOfDate
	swapchainFailed
)

func classifySwapchainResult(result vk.Result) swapchainStatus {
	switch result {
	case vk.Success:
		return swapchainOK
	case vk.Suboptimal:
		return swapchainSuboptimal
	case vk.ErrorOutOfDate:
		return swapchainOutOfDate
	default:
		return swapchainFailed
	}
}

// frameAction is what the frame loop does after a check point.
type frameAction int

const (
	frameContinue frameAction = iota
	// Wait for the device to go idle and skip the frame.
	frameSkipIdle
	// Recreate the swapchain and skip the frame.
	frameSkipRecreate
	// Recreate the swapchain; the frame itself has completed.
	frameRecreate
	frameFail
)

// skipsFrame reports whether the frame ends before anything is recorded.
// A skipped frame never resets the slot fence, so the next wait on it
// cannot deadlock.
func (a frameAction) skipsFrame() bool {
	return a == frameSkipIdle || a == frameSkipRecreate
}

func (a frameAction) String() string {
	switch a {
	case frameContinue:
		return "continue"
	case frameSkipIdle:
		return "skip-idle"
	case frameSkipRecreate:
		return "skip-recreate"
	case frameRecreate:
		return "recreate"
	case frameFail:
		return "fail"
	}
	return "unknown"
}

// beforeFrameAction runs before the slot fence is waited on.
func beforeFrameAction(recreating, resizePending bool) frameAction {
	switch {
	case recreating:
		return frameSkipIdle
	case resizePending:
		return frameSkipRecreate
	}
	return frameContinue
}

// acquireAction maps the acquire status. The second value asks for a
// recreation once the frame has been presented.
func acquireAction(status swapchainStatus) (frameAction, bool) {
	switch status {
	case swapchainOutOfDate:
		return frameSkipRecreate, false
	case swapchainSuboptimal:
		return frameContinue, true
	case swapchainFailed:
		return frameFail, false
	}
	return frameContinue, false
}

// presentAction maps the present status and the state gathered during the
// frame.
func presentAction(status swapchainStatus, recreateAfterPresent, resizePending bool) frameAction {
	switch {
	case status == swapchainFailed:
		return frameFail
	case status == swapchainOutOfDate || status == swapchainSuboptimal || recreateAfterPresent || resizePending:
		return frameRecreate
	}
	return frameContinue
}

// canRecreateSwapchain refuses a nested recreation and a recreation for a
// zero sized framebuffer.
func canRecreateSwapchain(recreating, minimized bool) bool {
	return !recreating && !minimized
}
