package systems

import (
	"sync"

	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type GeometrySystemConfig struct {
	// Max number of geometries that can be loaded at once.
	// NOTE: Should be significantly greater than the number of static meshes.
	MaxGeometryCount uint32
}

type geometryReference struct {
	ReferenceCount uint64
	Geometry       *metadata.Geometry
	AutoRelease    bool
	// bumped every time the slot is reused
	generation uint16
}

type GeometrySystem struct {
	Config *GeometrySystemConfig
	// Registered geometries, indexed by Geometry.InternalID.
	RegisteredGeometries []*geometryReference

	renderer *renderer.Renderer
	mutex    sync.Mutex
}

var ErrGeometryNotFound = errors.New("geometry not registered")

func NewGeometrySystem(config *GeometrySystemConfig, r *renderer.Renderer) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := errors.New("NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	gs := &GeometrySystem{
		Config:               config,
		RegisteredGeometries: make([]*geometryReference, config.MaxGeometryCount),
		renderer:             r,
	}
	for i := range gs.RegisteredGeometries {
		gs.RegisteredGeometries[i] = &geometryReference{}
	}
	return gs, nil
}

// Shutdown destroys every geometry still registered, regardless of its
// reference count.
func (gs *GeometrySystem) Shutdown() error {
	gs.mutex.Lock()
	defer gs.mutex.Unlock()
	for _, ref := range gs.RegisteredGeometries {
		if ref.Geometry != nil {
			gs.destroyGeometry(ref)
		}
	}
	return nil
}

// AcquireByID takes another reference on an already registered geometry.
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	gs.mutex.Lock()
	defer gs.mutex.Unlock()
	if id >= uint32(len(gs.RegisteredGeometries)) || gs.RegisteredGeometries[id].Geometry == nil {
		return nil, errors.Wrapf(ErrGeometryNotFound, "id %d", id)
	}
	ref := gs.RegisteredGeometries[id]
	ref.ReferenceCount++
	return ref.Geometry, nil
}

// AcquireFromConfig registers a new geometry and uploads its vertices.
// With autoRelease set the geometry is destroyed when its last reference is
// released.
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	if len(config.Vertices) == 0 {
		return nil, errors.Newf("geometry %q has no vertices", config.Name)
	}

	gs.mutex.Lock()
	defer gs.mutex.Unlock()

	var ref *geometryReference
	var slot uint32
	for i, r := range gs.RegisteredGeometries {
		if r.Geometry == nil {
			ref, slot = r, uint32(i)
			break
		}
	}
	if ref == nil {
		err := errors.New("unable to obtain free slot for geometry. Adjust configuration to allow more space")
		core.LogError(err.Error())
		return nil, err
	}

	extents, center := math.GeometryExtents(config.Vertices)
	g := &metadata.Geometry{
		ID:          uuid.New(),
		InternalID:  slot,
		Generation:  ref.generation,
		Center:      center,
		Extents:     extents,
		VertexCount: uint32(len(config.Vertices)),
		Name:        config.Name,
	}
	if err := gs.renderer.CreateGeometry(g, config.Vertices); err != nil {
		return nil, errors.Wrapf(err, "failed to create geometry %s", config.Name)
	}

	ref.Geometry = g
	ref.ReferenceCount = 1
	ref.AutoRelease = autoRelease
	core.LogDebug("geometry %s registered in slot %d (%d vertices)", g.Name, slot, g.VertexCount)
	return g, nil
}

// Release drops one reference to the geometry.
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) {
	if geometry == nil {
		core.LogWarn("GeometrySystem.Release cannot release nil geometry. Nothing was done.")
		return
	}
	gs.mutex.Lock()
	defer gs.mutex.Unlock()

	if geometry.InternalID >= uint32(len(gs.RegisteredGeometries)) {
		core.LogWarn("GeometrySystem.Release cannot release invalid geometry id. Nothing was done.")
		return
	}
	ref := gs.RegisteredGeometries[geometry.InternalID]
	if ref.Geometry == nil || ref.Geometry.ID != geometry.ID {
		core.LogError("Geometry id mismatch. Check registration logic, as this should never occur.")
		return
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount < 1 && ref.AutoRelease {
		gs.destroyGeometry(ref)
	}
}

func (gs *GeometrySystem) destroyGeometry(ref *geometryReference) {
	gs.renderer.DestroyGeometry(ref.Geometry)
	ref.Geometry = nil
	ref.ReferenceCount = 0
	ref.AutoRelease = false
	ref.generation++
}

// GenerateTriangleConfig builds a triangle centred on the origin with one
// colour per corner, listed clockwise in Vulkan clip space.
func GenerateTriangleConfig(name string, size float32, colors [3]mgl32.Vec3) *metadata.GeometryConfig {
	half := size * 0.5
	return metadata.NewGeometryConfig(name, []math.Vertex2D{
		{Pos: mgl32.Vec2{0, -half}, Color: colors[0]},
		{Pos: mgl32.Vec2{half, half}, Color: colors[1]},
		{Pos: mgl32.Vec2{-half, half}, Color: colors[2]},
	})
}
