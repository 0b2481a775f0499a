package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestFramePacerAdvanceWraps(t *testing.T) {
	p := NewFramePacer(2, 3)
	seen := []uint32{}
	for i := 0; i < 5; i++ {
		seen = append(seen, p.CurrentFrame())
		p.Advance()
	}
	want := []uint32{0, 1, 0, 1, 0}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("frame sequence %v, want %v", seen, want)
		}
	}
}

func TestFramePacerClaimImage(t *testing.T) {
	p := NewFramePacer(2, 3)

	// Slot 0 takes image 1 for the first time.
	if _, wait := p.ClaimImage(1); wait {
		t.Fatal("fresh image must not require a wait")
	}
	p.Advance()

	// Slot 1 gets image 1 back before slot 0's work is known finished.
	prev, wait := p.ClaimImage(1)
	if !wait || prev != 0 {
		t.Fatalf("expected wait on slot 0, got %d %v", prev, wait)
	}
	if p.Owner(1) != 1 {
		t.Fatalf("owner = %d, want 1", p.Owner(1))
	}
	p.Advance()

	// Slot 0 again, image 2 never used.
	if _, wait := p.ClaimImage(2); wait {
		t.Fatal("unused image must not require a wait")
	}
	// Re-claiming an image the current slot already owns never waits.
	if _, wait := p.ClaimImage(2); wait {
		t.Fatal("own image must not require a wait")
	}
	// Out of range indices are ignored.
	if _, wait := p.ClaimImage(7); wait {
		t.Fatal("out of range image must not require a wait")
	}
}

func TestFramePacerResetImages(t *testing.T) {
	p := NewFramePacer(3, 2)
	p.ClaimImage(0)
	p.ClaimImage(1)
	p.ResetImages(4)
	for i := uint32(0); i < 4; i++ {
		if p.Owner(i) != noOwner {
			t.Fatalf("image %d still owned by %d", i, p.Owner(i))
		}
	}
	if NewFramePacer(0, 1).MaxFramesInFlight() != 1 {
		t.Fatal("zero frames in flight should be raised to one")
	}
}

func TestResizeTracker(t *testing.T) {
	var r resizeTracker
	if r.Pending() {
		t.Fatal("new tracker must not be pending")
	}
	r.Resized(1024, 768)
	r.Resized(1280, 720)
	if !r.Pending() {
		t.Fatal("expected pending resize")
	}
	if w, h := r.Size(); w != 1280 || h != 720 {
		t.Fatalf("size = %dx%d", w, h)
	}
	r.Acknowledge()
	if r.Pending() {
		t.Fatal("acknowledged resize still pending")
	}
	r.Resized(0, 720)
	if !r.Minimized() {
		t.Fatal("zero width should count as minimized")
	}
}

func TestClassifySwapchainResult(t *testing.T) {
	tests := []struct {
		in   vk.Result
		want swapchainStatus
	}{
		{vk.Success, swapchainOK},
		{vk.Suboptimal, swapchainSuboptimal},
		{vk.ErrorOutOfDate, swapchainOutOfDate},
		{vk.ErrorDeviceLost, swapchainFailed},
		{vk.ErrorSurfaceLost, swapchainFailed},
	}
	for _, tt := range tests {
		if got := classifySwapchainResult(tt.in); got != tt.want {
			t.Errorf("%s: got %d, want %d", VulkanResultString(tt.in, false), got, tt.want)
		}
	}
}

func TestVulkanResultHelpers(t *testing.T) {
	if VulkanResultString(vk.ErrorOutOfDate, false) != "VK_ERROR_OUT_OF_DATE_KHR" {
		t.Errorf("unexpected name %q", VulkanResultString(vk.ErrorOutOfDate, false))
	}
	if got := VulkanResultString(vk.Result(12345), true); got != "VkResult(12345)" {
		t.Errorf("unknown result string %q", got)
	}
	if !VulkanResultIsSuccess(vk.Suboptimal) || VulkanResultIsSuccess(vk.ErrorDeviceLost) {
		t.Error("VulkanResultIsSuccess misclassified")
	}
	if got := VulkanSafeStrings([]string{"a", "b\x00", ""}); got[0] != "a\x00" || got[1] != "b\x00" || got[2] != "\x00" {
		t.Errorf("VulkanSafeStrings = %q", got)
	}
	if FindFirstZeroInByteArray([]byte{'a', 'b', 0, 'c'}) != 2 || FindFirstZeroInByteArray([]byte("abc")) != 3 {
		t.Error("FindFirstZeroInByteArray wrong index")
	}
}

func TestBeforeFrameAction(t *testing.T) {
	tests := []struct {
		recreating, pending bool
		want                frameAction
	}{
		{false, false, frameContinue},
		{true, false, frameSkipIdle},
		{true, true, frameSkipIdle},
		{false, true, frameSkipRecreate},
	}
	for _, tt := range tests {
		if got := beforeFrameAction(tt.recreating, tt.pending); got != tt.want {
			t.Errorf("beforeFrameAction(%t, %t) = %s, want %s", tt.recreating, tt.pending, got, tt.want)
		}
	}
}

func TestAcquireAction(t *testing.T) {
	tests := []struct {
		status    swapchainStatus
		want      frameAction
		recreate  bool
		skipFrame bool
	}{
		{swapchainOK, frameContinue, false, false},
		{swapchainSuboptimal, frameContinue, true, false},
		{swapchainOutOfDate, frameSkipRecreate, false, true},
		{swapchainFailed, frameFail, false, false},
	}
	for _, tt := range tests {
		got, recreate := acquireAction(tt.status)
		if got != tt.want || recreate != tt.recreate {
			t.Errorf("acquireAction(%d) = %s/%t, want %s/%t", tt.status, got, recreate, tt.want, tt.recreate)
		}
		// Out of date at acquire ends the frame before the fence is reset.
		if got.skipsFrame() != tt.skipFrame {
			t.Errorf("acquireAction(%d).skipsFrame() = %t", tt.status, got.skipsFrame())
		}
	}
}

func TestPresentAction(t *testing.T) {
	tests := []struct {
		name          string
		status        swapchainStatus
		afterPresent  bool
		resizePending bool
		want          frameAction
	}{
		{"ok", swapchainOK, false, false, frameContinue},
		{"failed", swapchainFailed, false, false, frameFail},
		{"failed wins over resize", swapchainFailed, true, true, frameFail},
		{"out of date", swapchainOutOfDate, false, false, frameRecreate},
		{"suboptimal", swapchainSuboptimal, false, false, frameRecreate},
		{"suboptimal at acquire", swapchainOK, true, false, frameRecreate},
		{"resize pending", swapchainOK, false, true, frameRecreate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := presentAction(tt.status, tt.afterPresent, tt.resizePending)
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
			if got.skipsFrame() {
				t.Fatal("a presented frame cannot be skipped")
			}
		})
	}
}

func TestCanRecreateSwapchain(t *testing.T) {
	if !canRecreateSwapchain(false, false) {
		t.Fatal("idle, visible window must allow recreation")
	}
	if canRecreateSwapchain(true, false) {
		t.Fatal("nested recreation allowed")
	}
	if canRecreateSwapchain(false, true) {
		t.Fatal("recreation allowed while minimized")
	}

	var r resizeTracker
	r.Resized(0, 600)
	if canRecreateSwapchain(false, r.Minimized()) {
		t.Fatal("zero width must refuse recreation")
	}
	r.Resized(800, 600)
	if !canRecreateSwapchain(false, r.Minimized()) || !r.Pending() {
		t.Fatal("restored window must allow a pending recreation")
	}
}
