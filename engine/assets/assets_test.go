package assets

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
)

func spirv() []byte {
	b := []byte{}
	for _, w := range []uint32{0x07230203, 0x00010000, 0, 4, 0} {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func newTestManager(t *testing.T) (*AssetManager, string) {
	t.Helper()
	dir := t.TempDir()
	shaders := filepath.Join(dir, "shaders")
	if err := os.MkdirAll(shaders, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, data := range map[string][]byte{
		"triangle.vert.spv": spirv(),
		"triangle.frag.spv": spirv(),
		"triangle.vert":     []byte("#version 450\n"),
		"README.md":         []byte("ignored"),
	} {
		if err := os.WriteFile(filepath.Join(shaders, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	am, err := NewAssetManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(); err != nil {
		t.Fatal(err)
	}
	return am, dir
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]metadata.ResourceType{
		"a/b.vert.spv": metadata.ResourceTypeShader,
		"b.frag":       metadata.ResourceTypeShaderSource,
		"c.bin":        metadata.ResourceTypeBinary,
		"d.png":        metadata.ResourceTypeNone,
	}
	for path, want := range tests {
		if got := determineAssetType(path); got != want {
			t.Errorf("%s: got %s, want %s", path, got, want)
		}
	}
}

func TestAssetManagerIndex(t *testing.T) {
	am, _ := newTestManager(t)

	if am.Count() != 3 {
		t.Fatalf("indexed %d assets, want 3", am.Count())
	}
	shaders := am.List(metadata.ResourceTypeShader)
	if len(shaders) != 2 || shaders[0].Path != filepath.Join("shaders", "triangle.frag.spv") {
		t.Fatalf("shader list = %+v", shaders)
	}
	info, ok := am.Get("shaders/triangle.vert.spv")
	if !ok || info.ID.String() == "" {
		t.Fatal("vertex shader not indexed")
	}
}

func TestAssetManagerLoad(t *testing.T) {
	am, _ := newTestManager(t)

	res, err := am.LoadAsset("triangle.vert", metadata.ResourceTypeShader, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := res.Data.(*metadata.ShaderModuleData); !ok || d.Stage != metadata.ShaderStageVertex {
		t.Fatalf("unexpected shader data %+v", res.Data)
	}
	if err := am.UnloadAsset(res); err != nil {
		t.Fatal(err)
	}

	_, err = am.LoadAsset("missing.frag", metadata.ResourceTypeShader, nil)
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	if _, err := am.LoadAsset("x", metadata.ResourceTypeText, nil); err == nil {
		t.Fatal("text resources have no loader")
	}
}

func TestAssetManagerMissingDirectory(t *testing.T) {
	am, err := NewAssetManager(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestWatchPostsShaderReload(t *testing.T) {
	if !core.EventSystemInitialize() {
		t.Fatal("event system already running")
	}
	defer core.EventSystemShutdown()

	am, dir := newTestManager(t)
	var reloaded []string
	core.EventRegister(core.EVENT_CODE_SHADER_RELOAD, func(ctx core.EventContext) {
		if se, ok := ctx.Data.(*core.ShaderEvent); ok {
			reloaded = append(reloaded, se.Path)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- am.Watch(ctx) }()

	target := filepath.Join(dir, "shaders", "triangle.frag.spv")
	deadline := time.Now().Add(5 * time.Second)
	for len(reloaded) == 0 && time.Now().Before(deadline) {
		// keep touching the file until the watcher is up and has debounced
		_ = os.WriteFile(target, spirv(), 0o644)
		time.Sleep(2 * reloadDebounce)
		core.EventProcess()
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if len(reloaded) == 0 {
		t.Fatal("no reload event posted")
	}
	if filepath.Base(reloaded[0]) != "triangle.frag.spv" {
		t.Fatalf("reloaded %v", reloaded)
	}
}
