package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestDebugReportCreateInfo(t *testing.T) {
	var _ vk.DebugReportCallbackFunc = dbgCallbackFunc

	info := newDebugReportCreateInfo()
	if info.PfnCallback == nil {
		t.Fatal("callback not set")
	}
	want := vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit)
	if info.Flags&want != want {
		t.Fatalf("flags %#x miss errors or warnings", info.Flags)
	}
	if ret := dbgCallbackFunc(vk.DebugReportFlags(vk.DebugReportInformationBit), 0, 0, 0, 0, "test", "message", nil); ret != vk.Bool32(vk.False) {
		t.Fatal("callback must not abort the call")
	}
}

func TestShaderModuleCreateInfo(t *testing.T) {
	code := []uint32{0x07230203, 0x00010000, 0, 4, 0}
	info := shaderModuleCreateInfo(code)
	if info.CodeSize != uint64(len(code)*4) {
		t.Fatalf("CodeSize = %d, want %d", info.CodeSize, len(code)*4)
	}
	if len(info.PCode) != len(code) || info.SType != vk.StructureTypeShaderModuleCreateInfo {
		t.Fatalf("unexpected create info %+v", info)
	}
}
