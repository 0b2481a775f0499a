package vulkan

import (
	"math"
	"reflect"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestFindQueueFamilies(t *testing.T) {
	g := vk.QueueFlags(vk.QueueGraphicsBit)
	c := vk.QueueFlags(vk.QueueComputeBit)
	tests := []struct {
		name    string
		flags   []vk.QueueFlags
		present []bool
		want    QueueFamilyIndices
	}{
		{"single family", []vk.QueueFlags{g}, []bool{true}, QueueFamilyIndices{0, 0}},
		{"prefers combined", []vk.QueueFlags{g, c, g | c}, []bool{false, true, true}, QueueFamilyIndices{2, 2}},
		{"split families", []vk.QueueFlags{c, g}, []bool{true, false}, QueueFamilyIndices{1, 0}},
		{"no present", []vk.QueueFlags{g}, []bool{false}, QueueFamilyIndices{0, -1}},
		{"no graphics", []vk.QueueFlags{c}, []bool{true}, QueueFamilyIndices{-1, 0}},
		{"empty", nil, nil, QueueFamilyIndices{-1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindQueueFamilies(tt.flags, tt.present)
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if got.Complete() != (tt.want.Graphics >= 0 && tt.want.Present >= 0) {
				t.Fatalf("Complete() = %v", got.Complete())
			}
		})
	}
}

func TestQueueFamilyIndicesUnique(t *testing.T) {
	if got := (QueueFamilyIndices{1, 1}).Unique(); !reflect.DeepEqual(got, []uint32{1}) {
		t.Errorf("shared family: got %v", got)
	}
	if got := (QueueFamilyIndices{0, 2}).Unique(); !reflect.DeepEqual(got, []uint32{0, 2}) {
		t.Errorf("split family: got %v", got)
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	got, err := ChooseSurfaceFormat([]vk.SurfaceFormat{unorm, srgb})
	if err != nil || got.Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("expected sRGB format, got %v (%v)", got.Format, err)
	}
	got, err = ChooseSurfaceFormat([]vk.SurfaceFormat{unorm})
	if err != nil || got.Format != vk.FormatB8g8r8a8Unorm {
		t.Errorf("expected fallback to first format, got %v (%v)", got.Format, err)
	}
	if _, err := ChooseSurfaceFormat(nil); err == nil {
		t.Error("expected error for empty format list")
	}
}

func TestChoosePresentMode(t *testing.T) {
	available := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}
	if got := ChoosePresentMode(available, vk.PresentModeImmediate); got != vk.PresentModeImmediate {
		t.Errorf("got %v, want immediate", got)
	}
	if got := ChoosePresentMode(available, vk.PresentModeMailbox); got != vk.PresentModeFifo {
		t.Errorf("got %v, want fifo fallback", got)
	}
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		in      string
		want    vk.PresentMode
		wantErr bool
	}{
		{"", vk.PresentModeMailbox, false},
		{"MAILBOX", vk.PresentModeMailbox, false},
		{"fifo_relaxed", vk.PresentModeFifoRelaxed, false},
		{"vsync", vk.PresentModeFifo, true},
	}
	for _, tt := range tests {
		got, err := ParsePresentMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePresentMode(%q) = %v, %v", tt.in, got, err)
		}
	}
	if PresentModeString(vk.PresentModeFifo) != "fifo" {
		t.Errorf("PresentModeString(fifo) = %q", PresentModeString(vk.PresentModeFifo))
	}
}

func TestChooseSwapExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 640, Height: 480},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	if got := ChooseSwapExtent(caps, 800, 600); got.Width != 640 || got.Height != 480 {
		t.Errorf("expected surface extent, got %dx%d", got.Width, got.Height)
	}

	caps.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	if got := ChooseSwapExtent(caps, 800, 600); got.Width != 800 || got.Height != 600 {
		t.Errorf("expected framebuffer size, got %dx%d", got.Width, got.Height)
	}
	if got := ChooseSwapExtent(caps, 4000, 0); got.Width != 1920 || got.Height != 1 {
		t.Errorf("expected clamped size, got %dx%d", got.Width, got.Height)
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 8, 3},
		{2, 0, 3},
		{3, 3, 3},
	}
	for _, tt := range tests {
		caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		if got := ChooseImageCount(caps); got != tt.want {
			t.Errorf("min=%d max=%d: got %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}

func TestMissingNames(t *testing.T) {
	required := []string{"VK_LAYER_KHRONOS_validation\x00", "VK_LAYER_a"}
	available := []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_b"}
	if got := MissingNames(required, available); !reflect.DeepEqual(got, []string{"VK_LAYER_a"}) {
		t.Errorf("got %v", got)
	}
	if got := MissingNames(required[:1], available); len(got) != 0 {
		t.Errorf("expected nothing missing, got %v", got)
	}
}
