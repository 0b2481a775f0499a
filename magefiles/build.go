//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// Compiles every GLSL stage in assets/shaders to SPIR-V (<name>.<stage>.spv).
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	for _, pattern := range []string{"*.vert", "*.frag"} {
		sources, err := filepath.Glob(filepath.Join(shaderDir, pattern))
		if err != nil {
			return err
		}
		for _, src := range sources {
			name := filepath.Base(src)
			if _, err := executeCmd("glslc", withArgs(name, "-o", name+".spv"), withDir(shaderDir), withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}
