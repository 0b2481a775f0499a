package vulkan

import (
	"unsafe"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

func newDebugReportCreateInfo() *vk.DebugReportCallbackCreateInfo {
	return &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
		PfnCallback: dbgCallbackFunc,
	}
}

func createDebugCallback(context *VulkanContext) error {
	core.LogDebug("Creating Vulkan debugger...")
	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(context.Instance, newDebugReportCreateInfo(), context.Allocator, &dbg); res != vk.Success {
		return errors.Newf("failed to set up debug callback: %s", VulkanResultString(res, true))
	}
	context.debugMessenger = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func destroyDebugCallback(context *VulkanContext) {
	if context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
		context.debugMessenger = vk.NullDebugReportCallback
	}
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	// Never abort the call that triggered the message.
	return vk.Bool32(vk.False)
}
