package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

func shaderStageFlag(stage metadata.ShaderStage) (vk.ShaderStageFlagBits, error) {
	switch stage {
	case metadata.ShaderStageVertex:
		return vk.ShaderStageVertexBit, nil
	case metadata.ShaderStageFragment:
		return vk.ShaderStageFragmentBit, nil
	}
	return 0, errors.Newf("unsupported shader stage %d", stage)
}

func NewShaderModule(context *VulkanContext, stage metadata.ShaderStage, code []uint32) (*VulkanShaderStage, error) {
	flag, err := shaderStageFlag(stage)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, errors.Newf("empty %s shader module", stage)
	}

	createInfo := shaderModuleCreateInfo(code)

	shaderStage := &VulkanShaderStage{}
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &shaderStage.Handle); res != vk.Success {
		return nil, errors.Newf("failed to create %s shader module: %s", stage, VulkanResultString(res, true))
	}

	shaderStage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  flag,
		Module: shaderStage.Handle,
		PName:  VulkanSafeString("main"),
	}
	return shaderStage, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}

// NewShaderStages creates one module per stage of the config. Modules are
// only needed until the pipeline is created.
func NewShaderStages(context *VulkanContext, config *metadata.ShaderConfig) ([]*VulkanShaderStage, error) {
	if len(config.Stages) != len(config.StageCode) {
		return nil, errors.Newf("shader %s: %d stages but %d modules", config.Name, len(config.Stages), len(config.StageCode))
	}
	stages := make([]*VulkanShaderStage, 0, len(config.Stages))
	for i, stage := range config.Stages {
		s, err := NewShaderModule(context, stage, config.StageCode[i])
		if err != nil {
			destroyShaderStages(context, stages)
			return nil, errors.Wrapf(err, "shader %s", config.Name)
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func destroyShaderStages(context *VulkanContext, stages []*VulkanShaderStage) {
	for _, s := range stages {
		s.Destroy(context)
	}
}

// CodeSize is in bytes, code holds 32-bit SPIR-V words.
func shaderModuleCreateInfo(code []uint32) vk.ShaderModuleCreateInfo {
	return vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
}
