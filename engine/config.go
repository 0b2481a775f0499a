package engine

import (
	"bytes"
	"os"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/vulkan"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

const DefaultConfigPath = "config.toml"

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Log         LogConfig         `toml:"log"`
	Renderer    RendererConfig    `toml:"renderer"`
	Assets      AssetsConfig      `toml:"assets"`
}

type ApplicationConfig struct {
	// The application name reported to the driver.
	Name    string    `toml:"name"`
	Version [3]uint32 `toml:"version"`
	// Window title. The frame rate is appended to it at runtime.
	Title string `toml:"title"`
	// Window starting position, 0 lets the window manager decide.
	StartPosX   uint32 `toml:"pos_x"`
	StartPosY   uint32 `toml:"pos_y"`
	StartWidth  uint32 `toml:"width"`
	StartHeight uint32 `toml:"height"`
	Resizable   bool   `toml:"resizable"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RendererConfig struct {
	Validation        bool       `toml:"validation"`
	MaxFramesInFlight uint32     `toml:"max_frames_in_flight"`
	PresentMode       string     `toml:"present_mode"`
	ClearColor        [4]float32 `toml:"clear_color"`
	PreferDiscreteGPU bool       `toml:"prefer_discrete_gpu"`
	// Upper bound on frames per second, 0 disables the limiter.
	FrameLimit uint32 `toml:"frame_limit"`
	// Shader the pipeline is built from: shaders/<name>.<stage>.spv
	Shader string `toml:"shader"`
}

type AssetsConfig struct {
	Dir          string `toml:"dir"`
	WatchShaders bool   `toml:"watch_shaders"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:        "Zabawa z Vulkanem",
			Version:     [3]uint32{1, 0, 0},
			Title:       "Vulkan",
			StartWidth:  800,
			StartHeight: 600,
			Resizable:   true,
		},
		Log: LogConfig{Level: "info"},
		Renderer: RendererConfig{
			Validation:        true,
			MaxFramesInFlight: 2,
			PresentMode:       "mailbox",
			ClearColor:        [4]float32{0, 0, 0, 1},
			Shader:            "triangle",
		},
		Assets: AssetsConfig{
			Dir:          "assets",
			WatchShaders: true,
		},
	}
}

// LoadConfig reads a TOML file on top of the defaults. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			core.LogWarn("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, errors.Newf("config %s:%d:%d: %s", path, row, col, derr.Error())
		}
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		return errors.Newf("window size %dx%d must be non-zero", c.Application.StartWidth, c.Application.StartHeight)
	}
	if c.Renderer.MaxFramesInFlight < 1 || c.Renderer.MaxFramesInFlight > 3 {
		return errors.Newf("max_frames_in_flight must be between 1 and 3, got %d", c.Renderer.MaxFramesInFlight)
	}
	if _, err := vulkan.ParsePresentMode(c.Renderer.PresentMode); err != nil {
		return err
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Renderer.Shader == "" {
		return errors.New("renderer.shader must name a shader")
	}
	return nil
}

// BackendConfig converts the renderer section for the renderer backend.
func (c *Config) BackendConfig() *metadata.RendererBackendConfig {
	return &metadata.RendererBackendConfig{
		ApplicationName:    c.Application.Name,
		ApplicationVersion: c.Application.Version,
		EnableValidation:   c.Renderer.Validation,
		MaxFramesInFlight:  c.Renderer.MaxFramesInFlight,
		PresentMode:        c.Renderer.PresentMode,
		ClearColor:         c.Renderer.ClearColor,
		PreferDiscreteGPU:  c.Renderer.PreferDiscreteGPU,
	}
}
