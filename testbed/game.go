package testbed

import (
	"github.com/Lakasabasz/Vulkan-test/engine"
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/Lakasabasz/Vulkan-test/engine/systems"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	triangle   *metadata.Geometry
	renderData *metadata.GeometryRenderData

	width  uint32
	height uint32
}

func NewTestGame(config *engine.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return errors.New("the engine is not yet initialized with all the system managers")
	}

	state := g.State.(*gameState)
	config := systems.GenerateTriangleConfig("triangle", 1.0, [3]mgl32.Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	geometry, err := g.SystemManager.GeometrySystem.AcquireFromConfig(config, true)
	if err != nil {
		return err
	}
	state.triangle = geometry
	state.renderData = &metadata.GeometryRenderData{Geometry: geometry}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	if state.renderData != nil {
		packet.Geometries = append(packet.Geometries, state.renderData)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	if state.triangle != nil {
		g.SystemManager.GeometrySystem.Release(state.triangle)
		state.triangle = nil
		state.renderData = nil
	}
	return nil
}
