package vulkan

import (
	"math"
	"sort"
	"strings"

	enginemath "github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// QueueFamilyIndices holds the queue families picked for a physical device.
// -1 means not found.
type QueueFamilyIndices struct {
	Graphics int32
	Present  int32
}

func (q QueueFamilyIndices) Complete() bool {
	return q.Graphics >= 0 && q.Present >= 0
}

// Unique returns the distinct family indices, graphics first.
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Graphics == q.Present {
		return []uint32{uint32(q.Graphics)}
	}
	return []uint32{uint32(q.Graphics), uint32(q.Present)}
}

// FindQueueFamilies scans the families of a device. flags[i] are the queue
// flags of family i and present[i] reports whether family i can present to
// the surface. A family supporting both is preferred, otherwise the first
// graphics family and the first present family are returned.
func FindQueueFamilies(flags []vk.QueueFlags, present []bool) QueueFamilyIndices {
	indices := QueueFamilyIndices{Graphics: -1, Present: -1}
	for i := range flags {
		graphics := flags[i]&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		canPresent := i < len(present) && present[i]
		if graphics && canPresent {
			return QueueFamilyIndices{Graphics: int32(i), Present: int32(i)}
		}
		if graphics && indices.Graphics < 0 {
			indices.Graphics = int32(i)
		}
		if canPresent && indices.Present < 0 {
			indices.Present = int32(i)
		}
	}
	return indices
}

// ChooseSurfaceFormat prefers B8G8R8A8_SRGB with a non-linear sRGB colour
// space and falls back to the first format offered.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface offers no formats")
	}
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode returns preferred when the surface supports it. FIFO is
// guaranteed to be available and is used otherwise.
func ChoosePresentMode(available []vk.PresentMode, preferred vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == preferred {
			return mode
		}
	}
	return vk.PresentModeFifo
}

var presentModes = map[string]vk.PresentMode{
	"immediate":    vk.PresentModeImmediate,
	"mailbox":      vk.PresentModeMailbox,
	"fifo":         vk.PresentModeFifo,
	"fifo_relaxed": vk.PresentModeFifoRelaxed,
}

func ParsePresentMode(s string) (vk.PresentMode, error) {
	if s == "" {
		return vk.PresentModeMailbox, nil
	}
	mode, ok := presentModes[strings.ToLower(s)]
	if !ok {
		return vk.PresentModeFifo, errors.Newf("unknown present mode %q", s)
	}
	return mode, nil
}

func PresentModeString(mode vk.PresentMode) string {
	for name, m := range presentModes {
		if m == mode {
			return name
		}
	}
	return "unknown"
}

// ChooseSwapExtent uses the surface extent unless the surface leaves it to
// the application, in which case the framebuffer size clamped to the
// supported range is used.
func ChooseSwapExtent(capabilities vk.SurfaceCapabilities, framebufferWidth, framebufferHeight uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	min := capabilities.MinImageExtent
	max := capabilities.MaxImageExtent
	return vk.Extent2D{
		Width:  enginemath.Clamp(framebufferWidth, min.Width, max.Width),
		Height: enginemath.Clamp(framebufferHeight, min.Height, max.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, capped at the
// maximum when the surface declares one.
func ChooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// MissingNames returns the entries of required not present in available,
// sorted. Names are compared without their null terminator.
func MissingNames(required, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[strings.TrimRight(name, end)] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		name = strings.TrimRight(name, end)
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
