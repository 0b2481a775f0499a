package testbed

import (
	"testing"

	"github.com/Lakasabasz/Vulkan-test/engine"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
)

func TestRenderWithoutGeometry(t *testing.T) {
	g := NewTestGame(engine.DefaultConfig())
	if err := g.Initialize(); err == nil {
		t.Fatal("initialized without systems")
	}
	packet := &metadata.RenderPacket{}
	if err := g.Render(packet, 0.016); err != nil {
		t.Fatal(err)
	}
	if len(packet.Geometries) != 0 {
		t.Fatalf("packet has %d geometries", len(packet.Geometries))
	}
	if err := g.OnResize(640, 480); err != nil {
		t.Fatal(err)
	}
}
