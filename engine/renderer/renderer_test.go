package renderer

import (
	"testing"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
)

type fakeBackend struct {
	beginErr error
	endErr   error
	calls    []string
	drawn    int
}

func (f *fakeBackend) Initialize(*metadata.RendererBackendConfig, uint32, uint32) error {
	f.calls = append(f.calls, "init")
	return nil
}
func (f *fakeBackend) Shutdown() error { f.calls = append(f.calls, "shutdown"); return nil }
func (f *fakeBackend) Resized(w, h uint32) error {
	f.calls = append(f.calls, "resized")
	return nil
}
func (f *fakeBackend) BeginFrame(float64) error {
	f.calls = append(f.calls, "begin")
	return f.beginErr
}
func (f *fakeBackend) EndFrame(float64) error {
	f.calls = append(f.calls, "end")
	return f.endErr
}
func (f *fakeBackend) CreateGeometry(*metadata.Geometry, []math.Vertex2D) error { return nil }
func (f *fakeBackend) DestroyGeometry(*metadata.Geometry)                       {}
func (f *fakeBackend) DrawGeometry(*metadata.GeometryRenderData)                { f.drawn++ }
func (f *fakeBackend) ShaderCreate(*metadata.ShaderConfig) error                { return nil }

func packet(n int) *metadata.RenderPacket {
	p := &metadata.RenderPacket{DeltaTime: 1.0 / 60.0}
	for i := 0; i < n; i++ {
		p.Geometries = append(p.Geometries, &metadata.GeometryRenderData{Geometry: &metadata.Geometry{}})
	}
	return p
}

func TestDrawFrameRecordsGeometries(t *testing.T) {
	backend := &fakeBackend{}
	r := New(backend)
	if err := r.DrawFrame(packet(2)); err != nil {
		t.Fatal(err)
	}
	if backend.drawn != 2 || r.FrameNumber != 1 {
		t.Fatalf("drawn=%d frames=%d", backend.drawn, r.FrameNumber)
	}
	if got := backend.calls; len(got) != 2 || got[0] != "begin" || got[1] != "end" {
		t.Fatalf("calls = %v", got)
	}
}

func TestDrawFrameSkipsWhileBooting(t *testing.T) {
	backend := &fakeBackend{beginErr: errors.Wrap(core.ErrSwapchainBooting, "resized")}
	r := New(backend)
	if err := r.DrawFrame(packet(1)); err != nil {
		t.Fatalf("skipped frame reported as failure: %v", err)
	}
	if backend.drawn != 0 || r.SkippedFrames != 1 || r.FrameNumber != 0 {
		t.Fatalf("drawn=%d skipped=%d frames=%d", backend.drawn, r.SkippedFrames, r.FrameNumber)
	}
	for _, c := range backend.calls {
		if c == "end" {
			t.Fatal("EndFrame called for a skipped frame")
		}
	}
}

func TestDrawFrameFailures(t *testing.T) {
	boom := errors.New("device lost")
	r := New(&fakeBackend{beginErr: boom})
	if err := r.DrawFrame(packet(0)); !errors.Is(err, boom) {
		t.Fatalf("begin failure: got %v", err)
	}
	r = New(&fakeBackend{endErr: boom})
	if err := r.DrawFrame(packet(0)); !errors.Is(err, boom) {
		t.Fatalf("end failure: got %v", err)
	}
}

func TestLifecycleForwarding(t *testing.T) {
	backend := &fakeBackend{}
	r := New(backend)
	if err := r.Initialize(&metadata.RendererBackendConfig{}, 800, 600); err != nil {
		t.Fatal(err)
	}
	if err := r.OnResize(1024, 768); err != nil {
		t.Fatal(err)
	}
	if err := r.Shutdown(); err != nil {
		t.Fatal(err)
	}
	want := []string{"init", "resized", "shutdown"}
	for i := range want {
		if backend.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", backend.calls, want)
		}
	}
}
