package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not an engine resource, ignored by the asset index. */
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Binary resource type. */
	ResourceTypeBinary
	/** @brief Compiled SPIR-V shader module. */
	ResourceTypeShader
	/** @brief GLSL shader source, compiled by the build tooling. */
	ResourceTypeShaderSource
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeText:
		return "text"
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeShaderSource:
		return "shader-source"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The type the loader produced. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
