//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the triangle with config.toml.
func (Run) Engine() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests. None of them need a GPU.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
