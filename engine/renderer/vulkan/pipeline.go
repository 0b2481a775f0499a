package vulkan

import (
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
	/** @brief Name of the shader the pipeline was built from. */
	Name string
}

type VulkanPipelineConfig struct {
	/** @brief The renderpass to associate with the pipeline. */
	Renderpass *VulkanRenderpass
	/** @brief The stride of the vertex data to be used. */
	Stride uint32
	/** @brief An array of attributes. */
	Attributes []vk.VertexInputAttributeDescription
	/** @brief An array of stages. */
	Stages []vk.PipelineShaderStageCreateInfo
	/** @brief Indicates if this pipeline should use wireframe mode. */
	IsWireframe bool
}

// vertex2DAttributes describes math.Vertex2D: position at location 0 and
// colour at location 1.
func vertex2DAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   math.Vertex2DPositionOffset,
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   math.Vertex2DColorOffset,
		},
	}
}

// NewShaderPipeline compiles the stages of the shader config and builds the
// triangle pipeline against the renderpass.
func NewShaderPipeline(context *VulkanContext, renderpass *VulkanRenderpass, config *metadata.ShaderConfig) (*VulkanPipeline, error) {
	stages, err := NewShaderStages(context, config)
	if err != nil {
		return nil, err
	}
	// The modules can go once the pipeline exists.
	defer destroyShaderStages(context, stages)

	stageInfos := make([]vk.PipelineShaderStageCreateInfo, len(stages))
	for i, s := range stages {
		stageInfos[i] = s.ShaderStageCreateInfo
	}

	pipeline, err := NewGraphicsPipeline(context, &VulkanPipelineConfig{
		Renderpass: renderpass,
		Stride:     math.Vertex2DStride,
		Attributes: vertex2DAttributes(),
		Stages:     stageInfos,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", config.Name)
	}
	pipeline.Name = config.Name
	return pipeline, nil
}

func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	outPipeline := &VulkanPipeline{}

	// Viewport and scissor are dynamic, only the counts matter here.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	// Rasterizer
	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
	}
	if config.IsWireframe {
		rasterizerCreateInfo.PolygonMode = vk.PolygonModeLine
	}

	// Multisampling.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	// Colour is written as is.
	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	// Dynamic state
	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	// Vertex input
	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0, // Binding index
		Stride:    config.Stride,
		InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(config.Attributes)),
		PVertexAttributeDescriptions:    config.Attributes,
	}

	// Input assembly
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	// No descriptors or push constants.
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	if err := context.locks.SafeCall(PipelineManagement, func() error {
		var pPipelineLayout vk.PipelineLayout
		result := vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutCreateInfo, context.Allocator, &pPipelineLayout)
		if !VulkanResultIsSuccess(result) {
			return errors.Newf("vkCreatePipelineLayout failed with %s", VulkanResultString(result, true))
		}
		outPipeline.PipelineLayout = pPipelineLayout
		return nil
	}); err != nil {
		return nil, err
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              outPipeline.PipelineLayout,
		RenderPass:          config.Renderpass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pPipelines := make([]vk.Pipeline, 1)
	if err := context.locks.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(context.Device.LogicalDevice, vk.NullPipelineCache, 1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo}, context.Allocator, pPipelines)
		if !VulkanResultIsSuccess(result) {
			return errors.Newf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		outPipeline.Destroy(context)
		return nil, err
	}
	outPipeline.Handle = pPipelines[0]

	core.LogDebug("Graphics pipeline created!")
	return outPipeline, nil
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) {
	_ = context.locks.SafeCall(PipelineManagement, func() error {
		if pipeline.Handle != vk.NullPipeline {
			vk.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle, context.Allocator)
			pipeline.Handle = vk.NullPipeline
		}
		if pipeline.PipelineLayout != vk.NullPipelineLayout {
			vk.DestroyPipelineLayout(context.Device.LogicalDevice, pipeline.PipelineLayout, context.Allocator)
			pipeline.PipelineLayout = vk.NullPipelineLayout
		}
		return nil
	})
}

func (pipeline *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint) {
	vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, pipeline.Handle)
}
