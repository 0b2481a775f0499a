/*
Draws a triangle with Vulkan. The window, renderer and assets are configured
through a TOML file.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lakasabasz/Vulkan-test/engine"
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/testbed"
)

func main() {
	configPath := flag.String("config", engine.DefaultConfigPath, "path to the TOML configuration file")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// signals cancel the context; the main loop notices and shuts down cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	tb := testbed.NewTestGame(config)
	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogError(err.Error())
		_ = e.Shutdown()
		os.Exit(1)
	}

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogError(runErr.Error())
		os.Exit(1)
	}
}
