package systems

import (
	"sync"

	"github.com/Lakasabasz/Vulkan-test/engine/assets"
	"github.com/Lakasabasz/Vulkan-test/engine/assets/loaders"
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
)

// Stages every graphics shader provides, in pipeline order.
var graphicsStages = []metadata.ShaderStage{
	metadata.ShaderStageVertex,
	metadata.ShaderStageFragment,
}

type ShaderSystem struct {
	// The shader the pipeline is currently built from.
	CurrentShader string

	assets   *assets.AssetManager
	jobs     *JobSystem
	renderer *renderer.Renderer
	mutex    sync.Mutex
}

func NewShaderSystem(am *assets.AssetManager, js *JobSystem, r *renderer.Renderer) (*ShaderSystem, error) {
	if am == nil || js == nil || r == nil {
		return nil, errors.New("NewShaderSystem requires an asset manager, a job system and a renderer")
	}
	return &ShaderSystem{
		assets:   am,
		jobs:     js,
		renderer: r,
	}, nil
}

func (ss *ShaderSystem) Shutdown() error {
	ss.mutex.Lock()
	ss.CurrentShader = ""
	ss.mutex.Unlock()
	return nil
}

// LoadConfig reads the SPIR-V modules of every stage of the named shader.
// Stages are loaded concurrently on the job system.
func (ss *ShaderSystem) LoadConfig(name string) (*metadata.ShaderConfig, error) {
	config := &metadata.ShaderConfig{
		Name:      name,
		Stages:    graphicsStages,
		StageCode: make([][]uint32, len(graphicsStages)),
	}
	errs := make([]error, len(graphicsStages))

	var wg sync.WaitGroup
	for i, stage := range graphicsStages {
		wg.Add(1)
		ss.jobs.Submit(JobTask{
			Name:        name + "." + stage.String(),
			InputParams: name + "." + stage.String(),
			OnStart: func(params interface{}) (interface{}, error) {
				return ss.assets.LoadAsset(params.(string), metadata.ResourceTypeShader, nil)
			},
			OnComplete: func(result interface{}) {
				res := result.(*metadata.Resource)
				data, ok := res.Data.(*metadata.ShaderModuleData)
				if !ok || data.Stage != stage {
					errs[i] = errors.Newf("shader %s: asset is not a %s stage", res.FullPath, stage)
					return
				}
				config.StageCode[i] = data.Code
			},
			OnFailure: func(err error) {
				errs[i] = err
			},
			OnCompletionCallback: wg.Done,
		})
	}
	wg.Wait()

	var err error
	for _, e := range errs {
		err = errors.CombineErrors(err, e)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading shader %s", name)
	}
	return config, nil
}

// Load builds the graphics pipeline from the named shader.
func (ss *ShaderSystem) Load(name string) error {
	config, err := ss.LoadConfig(name)
	if err != nil {
		return err
	}

	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	if err := ss.renderer.ShaderCreate(config); err != nil {
		return errors.Wrapf(err, "creating pipeline for shader %s", name)
	}
	ss.CurrentShader = name
	core.LogInfo("Shader %s loaded.", name)
	return nil
}

// Reload rebuilds the pipeline when the changed module belongs to the
// current shader. On failure the previous pipeline stays bound.
func (ss *ShaderSystem) Reload(path string) error {
	name, _, err := loaders.ShaderNameAndStage(path)
	if err != nil {
		return err
	}
	ss.mutex.Lock()
	current := ss.CurrentShader
	ss.mutex.Unlock()

	if name != current {
		core.LogDebug("ignoring change to %s, current shader is %s", path, current)
		return nil
	}
	if err := ss.Load(name); err != nil {
		core.LogWarn("shader reload failed, keeping the previous pipeline: %v", err)
		return err
	}
	return nil
}
