package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelstream/internal/util"
	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/mesh"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

func TestGeneratorLayers(t *testing.T) {
	gen := NewGenerator(util.Flat(0.5))
	assert.Equal(t, 17, gen.SurfaceAt(0, 0))

	g := gen.FillGrid(vec.Vec2{X: 2, Y: -5})
	for y := 0; y < 12; y++ {
		assert.Equal(t, block.Stone, g.Get(4, y, 9), "y=%d", y)
	}
	for y := 12; y < 17; y++ {
		assert.Equal(t, block.Dirt, g.Get(4, y, 9), "y=%d", y)
	}
	assert.Equal(t, block.Grass, g.Get(4, 17, 9))
	assert.Equal(t, block.Air, g.Get(4, 18, 9))
	assert.Equal(t, voxel.Width*voxel.Depth, g.Count(block.Grass))
}

func TestGeneratorShallowSurface(t *testing.T) {
	gen := NewGenerator(util.Flat(0.1))
	g := gen.FillGrid(vec.Vec2{})

	assert.Equal(t, 3, gen.SurfaceAt(0, 0))
	assert.Equal(t, block.Dirt, g.Get(0, 0, 0))
	assert.Equal(t, block.Grass, g.Get(0, 3, 0))
	assert.Zero(t, g.Count(block.Stone))
}

func TestGeneratorIsDeterministic(t *testing.T) {
	gen := NewGenerator(util.NewPerlinField(util.DefaultSeed))
	key := vec.Vec2{X: -4, Y: 11}

	assert.Equal(t, gen.FillGrid(key), gen.FillGrid(key))
	assert.LessOrEqual(t, gen.SurfaceAt(123, -456), MaxSurface)
}

func TestLeaseRunsFullJob(t *testing.T) {
	s := NewChunkStore()
	c, _ := s.GetOrCreate(vec.Vec2{})
	require.True(t, c.acquire())

	l := &Lease{
		chunk:  c,
		store:  s,
		gen:    NewGenerator(util.Flat(0.5)),
		mesher: mesh.NewGreedyMesher(block.DefaultAtlas()),
	}
	ctx := context.Background()

	l.Begin()
	assert.False(t, c.Dirty())
	l.Generate(ctx)
	assert.True(t, c.Generated())

	quads := l.BuildMesh(ctx)
	assert.Equal(t, 1, quads, "соседей нет - только верхняя грань")
	assert.Nil(t, c.Geometry(), "геометрия не видна до Finish")

	l.Finish()
	require.NotNil(t, c.Geometry())
	assert.Equal(t, 1, c.Geometry().Quads)
	assert.Equal(t, mesh.SideNegX|mesh.SidePosX|mesh.SideNegZ|mesh.SidePosZ, c.Geometry().UnknownSides)
	assert.False(t, c.Scheduled())

	// вершины в мировых координатах на уровне y=18
	for _, v := range c.Geometry().Vertices {
		assert.Equal(t, float32(18), v.Position.Y())
	}
}
