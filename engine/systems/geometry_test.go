package systems

import (
	"testing"

	"github.com/Lakasabasz/Vulkan-test/engine/renderer"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
)

var rgb = [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func TestGenerateTriangleConfig(t *testing.T) {
	cfg := GenerateTriangleConfig("tri", 1, rgb)
	want := []mgl32.Vec2{{0, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	if len(cfg.Vertices) != 3 {
		t.Fatalf("got %d vertices", len(cfg.Vertices))
	}
	for i, v := range cfg.Vertices {
		if v.Pos != want[i] || v.Color != rgb[i] {
			t.Errorf("vertex %d = %+v", i, v)
		}
	}
}

func TestGeometryAcquireAndRelease(t *testing.T) {
	backend := newRecordingBackend()
	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: 2}, renderer.New(backend))
	if err != nil {
		t.Fatal(err)
	}

	g, err := gs.AcquireFromConfig(GenerateTriangleConfig("tri", 1, rgb), true)
	if err != nil {
		t.Fatal(err)
	}
	if g.VertexCount != 3 || backend.created[g.InternalID] != 3 {
		t.Fatalf("geometry not uploaded: %+v", g)
	}
	if g.Center != (mgl32.Vec2{0, 0}) || g.Extents.Max != (mgl32.Vec2{0.5, 0.5}) {
		t.Fatalf("bounds = %v %v", g.Center, g.Extents)
	}

	same, err := gs.AcquireByID(g.InternalID)
	if err != nil || same != g {
		t.Fatalf("AcquireByID: %v %v", same, err)
	}

	gs.Release(g)
	if len(backend.destroyed) != 0 {
		t.Fatal("destroyed while still referenced")
	}
	gs.Release(g)
	if len(backend.destroyed) != 1 || backend.destroyed[0] != g.InternalID {
		t.Fatalf("destroyed = %v", backend.destroyed)
	}
	if _, err := gs.AcquireByID(g.InternalID); err == nil {
		t.Fatal("released geometry still acquirable")
	}

	// the freed slot is reused with a new generation
	g2, err := gs.AcquireFromConfig(GenerateTriangleConfig("tri2", 1, rgb), false)
	if err != nil {
		t.Fatal(err)
	}
	if g2.InternalID != g.InternalID || g2.Generation == g.Generation || g2.ID == g.ID {
		t.Fatalf("slot reuse: %+v vs %+v", g2, g)
	}
}

func TestGeometrySystemLimits(t *testing.T) {
	if _, err := NewGeometrySystem(&GeometrySystemConfig{}, nil); err == nil {
		t.Fatal("zero capacity accepted")
	}

	backend := newRecordingBackend()
	gs, _ := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: 1}, renderer.New(backend))
	if _, err := gs.AcquireFromConfig(&metadata.GeometryConfig{Name: "empty"}, false); err == nil {
		t.Fatal("empty geometry accepted")
	}
	if _, err := gs.AcquireFromConfig(GenerateTriangleConfig("a", 1, rgb), false); err != nil {
		t.Fatal(err)
	}
	if _, err := gs.AcquireFromConfig(GenerateTriangleConfig("b", 1, rgb), false); err == nil {
		t.Fatal("acquired beyond capacity")
	}

	if err := gs.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if len(backend.destroyed) != 1 {
		t.Fatalf("shutdown destroyed %v", backend.destroyed)
	}
}
