package systems

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Lakasabasz/Vulkan-test/engine/assets"
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
)

// recordingBackend stands in for the GPU backend.
type recordingBackend struct {
	mu        sync.Mutex
	created   map[uint32]int
	destroyed []uint32
	shaders   []*metadata.ShaderConfig
	shaderErr error
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{created: map[uint32]int{}}
}

func (b *recordingBackend) Initialize(*metadata.RendererBackendConfig, uint32, uint32) error {
	return nil
}
func (b *recordingBackend) Shutdown() error                { return nil }
func (b *recordingBackend) Resized(uint32, uint32) error   { return nil }
func (b *recordingBackend) BeginFrame(float64) error       { return nil }
func (b *recordingBackend) EndFrame(float64) error         { return nil }
func (b *recordingBackend) DrawGeometry(*metadata.GeometryRenderData) {}

func (b *recordingBackend) CreateGeometry(g *metadata.Geometry, vertices []math.Vertex2D) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created[g.InternalID] = len(vertices)
	return nil
}

func (b *recordingBackend) DestroyGeometry(g *metadata.Geometry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = append(b.destroyed, g.InternalID)
}

func (b *recordingBackend) ShaderCreate(cfg *metadata.ShaderConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shaderErr != nil {
		return b.shaderErr
	}
	b.shaders = append(b.shaders, cfg)
	return nil
}

func spirv(extra uint32) []byte {
	b := []byte{}
	for _, w := range []uint32{0x07230203, 0x00010000, 0, 4, 0, extra} {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func writeShaders(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	shaders := filepath.Join(dir, "shaders")
	if err := os.MkdirAll(shaders, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(shaders, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newAssets(t *testing.T, dir string) *assets.AssetManager {
	t.Helper()
	am, err := assets.NewAssetManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(); err != nil {
		t.Fatal(err)
	}
	return am
}
