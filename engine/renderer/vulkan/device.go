package vulkan

import (
	"fmt"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanDevice struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport VulkanSwapchainSupportInfo

	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

type VulkanPhysicalDeviceRequirements struct {
	DeviceExtensionNames []string
	DiscreteGPU          bool
}

func createSurface(context *VulkanContext, createSurface func(instance interface{}) (uintptr, error)) error {
	core.LogDebug("Creating Vulkan surface...")
	surface, err := createSurface(context.Instance)
	if err != nil {
		return err
	}
	context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")
	return nil
}

func destroySurface(context *VulkanContext) {
	if context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
}

// DeviceCreate selects a physical device, then creates the logical device,
// its queues and the graphics command pool.
func DeviceCreate(context *VulkanContext, requirements *VulkanPhysicalDeviceRequirements) error {
	device, err := SelectPhysicalDevice(context, requirements)
	if err != nil {
		return err
	}
	context.Device = device

	core.LogInfo("Creating logical device...")

	families := QueueFamilyIndices{Graphics: int32(device.GraphicsQueueIndex), Present: int32(device.PresentQueueIndex)}
	unique := families.Unique()
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(unique))
	for i, index := range unique {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	available, err := deviceExtensionNames(device.PhysicalDevice)
	if err != nil {
		return err
	}
	extensionNames := append([]string{}, requirements.DeviceExtensionNames...)
	if len(MissingNames([]string{portabilitySubset}, available)) == 0 {
		core.LogInfo("Adding required extension '%s'.", portabilitySubset)
		extensionNames = append(extensionNames, portabilitySubset)
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Device layers are deprecated and ignored, so pass nothing.
	}

	var logicalDevice vk.Device
	if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice); res != vk.Success {
		return errors.Newf("failed to create logical device: %s", VulkanResultString(res, true))
	}
	device.LogicalDevice = logicalDevice
	core.LogInfo("Logical device created.")

	var graphicsQueue, presentQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, device.GraphicsQueueIndex, 0, &graphicsQueue)
	vk.GetDeviceQueue(device.LogicalDevice, device.PresentQueueIndex, 0, &presentQueue)
	device.GraphicsQueue = graphicsQueue
	device.PresentQueue = presentQueue
	core.LogInfo("Queues obtained.")

	// Command buffers are reset individually every frame.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: device.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		return errors.Newf("failed to create graphics command pool: %s", VulkanResultString(res, true))
	}
	device.GraphicsCommandPool = pool
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	if device == nil {
		return
	}
	device.GraphicsQueue = nil
	device.PresentQueue = nil

	if device.GraphicsCommandPool != vk.NullCommandPool {
		core.LogInfo("Destroying command pools...")
		vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, context.Allocator)
		device.GraphicsCommandPool = vk.NullCommandPool
	}

	if device.LogicalDevice != nil {
		core.LogInfo("Destroying logical device...")
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	device.SwapchainSupport = VulkanSwapchainSupportInfo{}
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (VulkanSwapchainSupportInfo, error) {
	var supportInfo VulkanSwapchainSupportInfo

	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return supportInfo, errors.Newf("failed to get surface capabilities: %s", VulkanResultString(res, true))
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return supportInfo, errors.Newf("failed to get surface formats: %s", VulkanResultString(res, true))
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			return supportInfo, errors.Newf("failed to get surface formats: %s", VulkanResultString(res, true))
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		return supportInfo, errors.Newf("failed to get surface present modes: %s", VulkanResultString(res, true))
	}
	if presentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			return supportInfo, errors.Newf("failed to get surface present modes: %s", VulkanResultString(res, true))
		}
	}
	return supportInfo, nil
}

func deviceExtensionNames(physicalDevice vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, nil); res != vk.Success {
		return nil, errors.Newf("failed to enumerate device extensions: %s", VulkanResultString(res, true))
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, extensions); res != vk.Success {
		return nil, errors.Newf("failed to enumerate device extensions: %s", VulkanResultString(res, true))
	}
	names := make([]string, 0, count)
	for i := range extensions {
		extensions[i].Deref()
		names = append(names, vk.ToString(extensions[i].ExtensionName[:]))
	}
	return names, nil
}

// SelectPhysicalDevice returns the first device meeting the requirements.
func SelectPhysicalDevice(context *VulkanContext, requirements *VulkanPhysicalDeviceRequirements) (*VulkanDevice, error) {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return nil, errors.Newf("failed to enumerate physical devices: %s", VulkanResultString(res, true))
	}
	if physicalDeviceCount == 0 {
		return nil, errors.New("no Vulkan support devices")
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return nil, errors.Newf("failed to enumerate physical devices: %s", VulkanResultString(res, true))
	}

	for _, physicalDevice := range physicalDevices {
		device, err := PhysicalDeviceMeetsRequirements(physicalDevice, context.Surface, requirements)
		if err != nil {
			return nil, err
		}
		if device == nil {
			continue
		}
		logDeviceReport(device)
		core.LogInfo("Physical device selected.")
		return device, nil
	}

	return nil, core.ErrNoSuitableDevice
}

// PhysicalDeviceMeetsRequirements returns a device description when the
// physical device can render to the surface, or nil when it must be skipped.
func PhysicalDeviceMeetsRequirements(physicalDevice vk.PhysicalDevice, surface vk.Surface, requirements *VulkanPhysicalDeviceRequirements) (*VulkanDevice, error) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(physicalDevice, &properties)
	properties.Deref()
	name := vk.ToString(properties.DeviceName[:])

	if requirements.DiscreteGPU && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
		core.LogInfo("Device '%s' is not a discrete GPU, and one is required. Skipping.", name)
		return nil, nil
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, queueFamilies)

	flags := make([]vk.QueueFlags, queueFamilyCount)
	present := make([]bool, queueFamilyCount)
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		flags[i] = queueFamilies[i].QueueFlags

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, uint32(i), surface, &supportsPresent); res != vk.Success {
			return nil, errors.Newf("failed to query surface support: %s", VulkanResultString(res, true))
		}
		present[i] = supportsPresent == vk.True
	}

	indices := FindQueueFamilies(flags, present)
	core.LogDebug("Graphics | Present | Name")
	core.LogDebug("%8d | %7d | %s", indices.Graphics, indices.Present, name)
	if !indices.Complete() {
		core.LogInfo("Device '%s' lacks a graphics or present queue, skipping.", name)
		return nil, nil
	}

	available, err := deviceExtensionNames(physicalDevice)
	if err != nil {
		return nil, err
	}
	if missing := MissingNames(requirements.DeviceExtensionNames, available); len(missing) > 0 {
		core.LogInfo("Required extensions not found: %v, skipping device '%s'.", missing, name)
		return nil, nil
	}

	support, err := DeviceQuerySwapchainSupport(physicalDevice, surface)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		core.LogInfo("Required swapchain support not present, skipping device '%s'.", name)
		return nil, nil
	}

	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice, &memory)
	memory.Deref()

	return &VulkanDevice{
		PhysicalDevice:     physicalDevice,
		SwapchainSupport:   support,
		GraphicsQueueIndex: uint32(indices.Graphics),
		PresentQueueIndex:  uint32(indices.Present),
		Properties:         properties,
		Memory:             memory,
	}, nil
}

func deviceTypeString(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	default:
		return "Unknown"
	}
}

func versionString(v uint32) string {
	version := vk.Version(v)
	return fmt.Sprintf("%d.%d.%d", version.Major(), version.Minor(), version.Patch())
}

func logDeviceReport(device *VulkanDevice) {
	properties := device.Properties
	core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:]))
	core.LogInfo("GPU type is %s.", deviceTypeString(properties.DeviceType))
	core.LogInfo("GPU Driver version: %s", versionString(properties.DriverVersion))
	core.LogInfo("Vulkan API version: %s", versionString(properties.ApiVersion))

	memory := device.Memory
	for j := 0; j < int(memory.MemoryHeapCount); j++ {
		memory.MemoryHeaps[j].Deref()
		memorySizeGib := float64(memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
		if vk.MemoryHeapFlagBits(memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", memorySizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", memorySizeGib)
		}
	}
}
