package world

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/mesh"
)

// Lease - исключительный доступ задачи к чанку.
// Создаётся после успешного acquire и отпускается в Finish.
type Lease struct {
	chunk  *Chunk
	store  *ChunkStore
	gen    *Generator
	mesher *mesh.GreedyMesher

	geom *mesh.Geometry
}

func (l *Lease) Key() vec.Vec2 { return l.chunk.Key }

// Chunk возвращает арендованный чанк
func (l *Lease) Chunk() *Chunk { return l.chunk }

func (l *Lease) Begin() {
	l.chunk.dirty.Store(false)
}

func (l *Lease) Generate(ctx context.Context) {
	l.gen.Generate(l.chunk)
}

// BuildMesh строит новую геометрию. Опубликованная геометрия не изменяется.
func (l *Lease) BuildMesh(ctx context.Context) int {
	c := l.chunk
	geom := &mesh.Geometry{}
	if prev := c.latest.Load(); prev != nil {
		geom.Vertices = make([]mesh.Vertex, 0, len(prev.Vertices))
		geom.Indices = make([]uint32, 0, len(prev.Indices))
	}

	lookup := func(x, y, z int) block.Type {
		return l.store.LookupBlock(c.Key, x, y, z)
	}

	c.mu.RLock()
	if c.grid != nil {
		origin := mgl32.Vec3{c.Box.Min.X(), 0, c.Box.Min.Z()}
		l.mesher.Build(origin, c.grid, lookup, geom)
	}
	c.mu.RUnlock()

	l.geom = geom
	return geom.Quads
}

func (l *Lease) Finish() {
	if l.geom != nil {
		l.chunk.latest.Store(l.geom)
	}
	l.chunk.release()
}
