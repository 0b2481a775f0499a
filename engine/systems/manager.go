package systems

import (
	"github.com/Lakasabasz/Vulkan-test/engine/assets"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer"
)

const (
	jobWorkerCount   = 2
	jobQueueSize     = 16
	maxGeometryCount = 1024
)

type SystemManager struct {
	JobSystem      *JobSystem
	GeometrySystem *GeometrySystem
	ShaderSystem   *ShaderSystem
}

func NewSystemManager(r *renderer.Renderer, am *assets.AssetManager) (*SystemManager, error) {
	js, err := NewJobSystem(jobWorkerCount, jobQueueSize)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: maxGeometryCount,
	}, r)
	if err != nil {
		return nil, err
	}
	ss, err := NewShaderSystem(am, js, r)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		JobSystem:      js,
		GeometrySystem: gs,
		ShaderSystem:   ss,
	}, nil
}

// Shutdown releases GPU resources owned by the systems. It must run before
// the renderer shuts down.
func (sm *SystemManager) Shutdown() error {
	if err := sm.GeometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
