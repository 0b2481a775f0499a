package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Lakasabasz/Vulkan-test/engine/assets"
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/platform"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/Lakasabasz/Vulkan-test/engine/systems"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// How long a suspended engine blocks waiting for window events.
const suspendedWait = 100 * time.Millisecond

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *Config
	isRunning     bool
	isSuspended   bool
	platform      *platform.Platform
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	lastTitle     float64
}

func New(g *Game) (*Engine, error) {
	if g.Config == nil {
		g.Config = DefaultConfig()
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}

	p := platform.New()
	r, err := renderer.NewRenderer(renderer.Vulkan, p)
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager(g.Config.Assets.Dir)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.Config,
		clock:        core.NewClock(),
		platform:     p,
		renderer:     r,
		assetManager: am,
		isRunning:    true,
		width:        g.Config.Application.StartWidth,
		height:       g.Config.Application.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.config

	level, err := core.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	core.SetLogLevel(level)

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return errors.New("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)
	core.EventRegister(core.EVENT_CODE_SHADER_RELOAD, e.onShaderReload)

	if err := e.platform.Startup(cfg.Application.Title,
		cfg.Application.StartPosX,
		cfg.Application.StartPosY,
		cfg.Application.StartWidth,
		cfg.Application.StartHeight,
		cfg.Application.Resizable); err != nil {
		return err
	}

	// The framebuffer may differ from the requested window size on HiDPI screens.
	e.width, e.height = e.platform.GetFramebufferSize()

	if err := e.renderer.Initialize(cfg.BackendConfig(), e.width, e.height); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(); err != nil {
		return err
	}

	sm, err := systems.NewSystemManager(e.renderer, e.assetManager)
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.gameInstance.SystemManager = sm

	if err := sm.ShaderSystem.Load(cfg.Renderer.Shader); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the main loop on the calling goroutine, which must be the main
// OS thread. Cancelling ctx or a failing background task stops the loop.
func (e *Engine) Run(ctx context.Context) error {
	var background []func(context.Context) error
	if e.config.Assets.WatchShaders {
		background = append(background, e.assetManager.Watch)
	}
	// wake up a loop blocked in WaitEvents
	wake := func(ctx context.Context) error {
		<-ctx.Done()
		e.platform.PostEmptyEvent()
		return nil
	}

	e.currentStage = EngineStageRunning
	return runSupervised(ctx, e.loop, append(background, wake)...)
}

// runSupervised runs loop on the calling goroutine and every background task
// in its own goroutine. They share one context: the first failure or the end
// of loop cancels all of them.
func runSupervised(ctx context.Context, loop func(context.Context) error, background ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)
	for _, task := range background {
		group.Go(func() error {
			if err := task(gctx); err != nil {
				core.LogError("background task failed, stopping: %v", err)
				return err
			}
			return nil
		})
	}

	err := loop(gctx)
	cancel()
	if werr := group.Wait(); werr != nil {
		err = errors.CombineErrors(err, werr)
	}
	return err
}

func (e *Engine) loop(ctx context.Context) error {
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if limit := e.config.Renderer.FrameLimit; limit > 0 {
		targetFrameSeconds = 1.0 / float64(limit)
	}

	for e.isRunning {
		if ctx.Err() != nil {
			core.LogInfo("context cancelled, shutting down.")
			break
		}
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		core.EventProcess()

		if e.isSuspended {
			e.platform.WaitEvents(suspendedWait)
			continue
		}
		if !e.isRunning {
			break
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := platform.GetAbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down.")
				return err
			}
		}

		packet := &metadata.RenderPacket{DeltaTime: delta}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(packet, delta); err != nil {
				core.LogError("Game render failed, shutting down.")
				return err
			}
		}

		if err := e.renderer.DrawFrame(packet); err != nil {
			return err
		}

		frameElapsedTime := platform.GetAbsoluteTime() - frameStartTime
		core.MetricsUpdate(frameElapsedTime)
		e.updateTitle(currentTime)

		if targetFrameSeconds > 0 {
			if remainingMS := (targetFrameSeconds - frameElapsedTime) * 1000; remainingMS > 1 {
				e.platform.Sleep(remainingMS - 1)
			}
		}

		if err := core.InputUpdate(delta); err != nil {
			return err
		}
		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) updateTitle(now float64) {
	if now-e.lastTitle < 1 {
		return
	}
	e.lastTitle = now
	fps, frameTime := core.MetricsFrame()
	e.platform.SetTitle(fmt.Sprintf("%s - %.0f FPS (%.2f ms)", e.config.Application.Title, fps, frameTime))
}

// Shutdown tears down in reverse initialization order. GPU resources held by
// the systems go before the renderer.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	var err error
	if e.gameInstance.FnShutdown != nil {
		err = errors.CombineErrors(err, e.gameInstance.FnShutdown())
	}
	if e.systemManager != nil {
		err = errors.CombineErrors(err, e.systemManager.Shutdown())
	}
	err = errors.CombineErrors(err, e.renderer.Shutdown())
	err = errors.CombineErrors(err, core.EventSystemShutdown())
	err = errors.CombineErrors(err, core.InputShutdown())
	err = errors.CombineErrors(err, e.platform.Shutdown())

	e.currentStage = EngineStageUninitialized
	return err
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		e.platform.SetShouldClose()
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	if context.Type == core.EVENT_CODE_KEY_PRESSED && ke.KeyCode == core.KEY_ESCAPE {
		if err := core.EventPost(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}); err != nil {
			core.LogError(err.Error())
		}
		return
	}
	core.LogDebug("key %d pressed=%t", ke.KeyCode, context.Type == core.EVENT_CODE_KEY_PRESSED)
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// The backend tracks the zero size too and refuses to rebuild the
	// swapchain while minimized.
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
}

func (e *Engine) onShaderReload(context core.EventContext) {
	se, ok := context.Data.(*core.ShaderEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}
	if e.systemManager == nil {
		return
	}
	core.LogInfo("shader %s changed, rebuilding pipeline", se.Path)
	if err := e.systemManager.ShaderSystem.Reload(se.Path); err != nil {
		core.LogError(err.Error())
	}
}
