package math

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex2D is the layout consumed by the triangle pipeline:
// location 0 = position (vec2), location 1 = colour (vec3).
type Vertex2D struct {
	Pos   mgl32.Vec2
	Color mgl32.Vec3
}

const (
	Vertex2DPositionOffset uint32 = 0
	Vertex2DColorOffset    uint32 = 2 * 4
	Vertex2DStride         uint32 = 5 * 4
)

// Extents2D is the axis aligned bounding box of a set of vertices.
type Extents2D struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// VerticesToBytes packs vertices tightly in host byte order, ready to be
// copied into a mapped vertex buffer.
func VerticesToBytes(vertices []Vertex2D) []byte {
	out := make([]byte, 0, len(vertices)*int(Vertex2DStride))
	for _, v := range vertices {
		for _, f := range [5]float32{v.Pos[0], v.Pos[1], v.Color[0], v.Color[1], v.Color[2]} {
			out = binary.NativeEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// GeometryExtents returns the bounds and the centre of the given vertices.
func GeometryExtents(vertices []Vertex2D) (Extents2D, mgl32.Vec2) {
	if len(vertices) == 0 {
		return Extents2D{}, mgl32.Vec2{}
	}
	ext := Extents2D{Min: vertices[0].Pos, Max: vertices[0].Pos}
	for _, v := range vertices[1:] {
		for i := 0; i < 2; i++ {
			ext.Min[i] = min(ext.Min[i], v.Pos[i])
			ext.Max[i] = max(ext.Max[i], v.Pos[i])
		}
	}
	center := ext.Min.Add(ext.Max).Mul(0.5)
	return ext, center
}
