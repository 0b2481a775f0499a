package metadata

import "github.com/cockroachdb/errors"

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000004
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vert"
	case ShaderStageFragment:
		return "frag"
	}
	return "unknown"
}

// ShaderStageFromString parses the stage part of a shader file name
// (e.g. "triangle.vert.spv").
func ShaderStageFromString(s string) (ShaderStage, error) {
	switch s {
	case "vert", "vertex":
		return ShaderStageVertex, nil
	case "frag", "fragment":
		return ShaderStageFragment, nil
	}
	return 0, errors.Newf("string %s is not a valid shader stage", s)
}

/** @brief Configuration for a shader. */
type ShaderConfig struct {
	/** @brief The name of the shader to be created. */
	Name string
	/** @brief The stages of the shader, in pipeline order. */
	Stages []ShaderStage
	/** @brief SPIR-V words of each stage, parallel to Stages. */
	StageCode [][]uint32
}

/** @brief SPIR-V bytecode of a single stage, as loaded from disk. */
type ShaderModuleData struct {
	Stage ShaderStage
	Code  []uint32
	Bytes []byte
}
