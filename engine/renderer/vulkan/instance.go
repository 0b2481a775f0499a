package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
)

const (
	engineName         = "Vulkan-test"
	validationLayer    = "VK_LAYER_KHRONOS_validation"
	portabilitySubset  = "VK_KHR_portability_subset"
	portabilityEnumExt = "VK_KHR_portability_enumeration"
	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortability = 0x00000001
)

var engineVersion = vk.MakeVersion(0, 1, 0)

// loadVulkan points the bindings at the loader GLFW found.
func loadVulkan() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return errors.New("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize vk")
	}
	return nil
}

func requiredInstanceExtensions(platformExtensions []string, validation bool) []string {
	extensions := append([]string{}, platformExtensions...)
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			portabilityEnumExt,
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}
	return extensions
}

func availableLayerNames() ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, errors.Newf("failed to enumerate instance layers: %s", VulkanResultString(res, true))
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return nil, errors.Newf("failed to enumerate instance layers: %s", VulkanResultString(res, true))
	}
	names := make([]string, 0, count)
	for i := range layers {
		layers[i].Deref()
		names = append(names, vk.ToString(layers[i].LayerName[:]))
	}
	return names, nil
}

// checkValidationLayerSupport fails with ErrValidationUnavailable when any
// required layer is missing.
func checkValidationLayerSupport(required []string) error {
	core.LogInfo("Validation layers enabled. Enumerating...")
	available, err := availableLayerNames()
	if err != nil {
		return err
	}
	for _, name := range available {
		core.LogDebug("Available Layer: `%s`", name)
	}
	if missing := MissingNames(required, available); len(missing) > 0 {
		return errors.Wrapf(core.ErrValidationUnavailable, "missing %v", missing)
	}
	core.LogInfo("All required validation layers are present.")
	return nil
}

func createInstance(context *VulkanContext, config *metadata.RendererBackendConfig, platformExtensions []string) error {
	v := config.ApplicationVersion
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(int(v[0]), int(v[1]), int(v[2]))),
		PApplicationName:   VulkanSafeString(config.ApplicationName),
		EngineVersion:      uint32(engineVersion),
		PEngineName:        VulkanSafeString(engineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := requiredInstanceExtensions(platformExtensions, config.EnableValidation)
	core.LogInfo("Required extensions:")
	for _, ext := range extensions {
		core.LogInfo("  %s", ext)
	}
	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)

	if runtime.GOOS == "darwin" {
		createInfo.Flags |= instanceCreateEnumeratePortability
	}

	if config.EnableValidation {
		layers := []string{validationLayer}
		if err := checkValidationLayerSupport(layers); err != nil {
			return err
		}
		createInfo.EnabledLayerCount = uint32(len(layers))
		createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

		// Report problems in vkCreateInstance and vkDestroyInstance as well.
		debugCreateInfo := newDebugReportCreateInfo()
		createInfo.PNext = unsafe.Pointer(debugCreateInfo.Ref())
	}

	if res := vk.CreateInstance(&createInfo, context.Allocator, &context.Instance); res != vk.Success {
		return errors.Newf("failed to create instance: %s", VulkanResultString(res, true))
	}
	if err := vk.InitInstance(context.Instance); err != nil {
		return errors.Wrap(err, "failed to load instance functions")
	}

	core.LogInfo("Vulkan Instance created.")
	return nil
}

func destroyInstance(context *VulkanContext) {
	if context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(context.Instance, context.Allocator)
		context.Instance = nil
	}
}
