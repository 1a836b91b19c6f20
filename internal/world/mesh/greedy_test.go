package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

func airAround(x, y, z int) block.Type { return block.Air }

func stoneAround(x, y, z int) block.Type { return block.Stone }

// unknownSides имитирует чанк без сгенерированных соседей
func unknownSides(x, y, z int) block.Type {
	switch {
	case y < 0:
		return block.Unknown
	case y >= voxel.Height:
		return block.Air
	}
	return block.Unknown
}

func build(t *testing.T, grid *voxel.Grid, lookup NeighborLookup) *Geometry {
	t.Helper()
	m := NewGreedyMesher(block.DefaultAtlas())
	geom := &Geometry{}
	m.Build(mgl32.Vec3{}, grid, lookup, geom)
	require.Len(t, geom.Vertices, geom.Quads*4)
	require.Len(t, geom.Indices, geom.Quads*6)
	return geom
}

// quadSize возвращает размер слитого квада по его текстурным координатам
func quadSize(geom *Geometry, q int) mgl32.Vec2 {
	var size mgl32.Vec2
	for _, v := range geom.Vertices[q*4 : q*4+4] {
		if v.TexCoord.X() > size.X() {
			size[0] = v.TexCoord.X()
		}
		if v.TexCoord.Y() > size.Y() {
			size[1] = v.TexCoord.Y()
		}
	}
	return size
}

func slab(x0, x1, y, z0, z1 int, t block.Type) *voxel.Grid {
	g := voxel.NewGrid()
	for x := x0; x < x1; x++ {
		for z := z0; z < z1; z++ {
			g.Set(x, y, z, t)
		}
	}
	return g
}

func TestSingleVoxelSixUnitQuads(t *testing.T) {
	g := voxel.NewGrid()
	g.Set(5, 100, 5, block.Stone)

	geom := build(t, g, airAround)

	assert.Equal(t, 6, geom.Quads)
	normals := make(map[mgl32.Vec3]int)
	for q := 0; q < geom.Quads; q++ {
		assert.Equal(t, mgl32.Vec2{1, 1}, quadSize(geom, q))
		normals[geom.Vertices[q*4].Normal]++
	}
	assert.Len(t, normals, 6)
}

func TestSlabMergesIntoOneTopQuad(t *testing.T) {
	g := slab(0, 4, 10, 0, 4, block.Stone)

	geom := build(t, g, airAround)

	// верх, низ и четыре боковые полосы 4x1
	assert.Equal(t, 6, geom.Quads)

	up := mgl32.Vec3{0, 1, 0}
	tops := 0
	for q := 0; q < geom.Quads; q++ {
		if geom.Vertices[q*4].Normal != up {
			continue
		}
		tops++
		assert.Equal(t, mgl32.Vec2{4, 4}, quadSize(geom, q))
		for _, v := range geom.Vertices[q*4 : q*4+4] {
			assert.Equal(t, float32(11), v.Position.Y())
		}
	}
	assert.Equal(t, 1, tops)
}

func TestMergeRequiresFullRowMatch(t *testing.T) {
	g := slab(0, 4, 10, 0, 4, block.Stone)
	g.Set(2, 10, 1, block.Dirt)

	geom := build(t, g, airAround)

	up := mgl32.Vec3{0, 1, 0}
	tops := 0
	area := float32(0)
	for q := 0; q < geom.Quads; q++ {
		if geom.Vertices[q*4].Normal == up {
			tops++
			s := quadSize(geom, q)
			area += s.X() * s.Y()
		}
	}
	assert.Greater(t, tops, 1)
	assert.Equal(t, float32(16), area)
}

func TestFullyEnclosedChunkHasNoQuads(t *testing.T) {
	g := voxel.NewGrid()
	g.Fill(block.Stone)

	geom := build(t, g, stoneAround)

	assert.Zero(t, geom.Quads)
	assert.Empty(t, geom.Vertices)
	assert.Zero(t, geom.UnknownSides)
}

func TestRebuildIsIdempotent(t *testing.T) {
	g := voxel.NewGrid()
	for x := 0; x < voxel.Width; x++ {
		for z := 0; z < voxel.Depth; z++ {
			h := 20 + (x*7+z*3)%9
			for y := 0; y <= h; y++ {
				tp := block.Stone
				if y == h {
					tp = block.Grass
				}
				g.Set(x, y, z, tp)
			}
		}
	}

	first := build(t, g, airAround)
	second := build(t, g, airAround)

	assert.Equal(t, first.Quads, second.Quads)
	assert.Equal(t, first.Vertices, second.Vertices)
	assert.Equal(t, first.Indices, second.Indices)
}

func TestGreedyNeverExceedsNaiveFaces(t *testing.T) {
	g := voxel.NewGrid()
	for x := 0; x < voxel.Width; x++ {
		for z := 0; z < voxel.Depth; z++ {
			for y := 0; y < 3+(x^z)%4; y++ {
				g.Set(x, y, z, block.Dirt)
			}
		}
	}

	naive := 0
	for x := 0; x < voxel.Width; x++ {
		for y := 0; y < voxel.Height; y++ {
			for z := 0; z < voxel.Depth; z++ {
				if !g.Get(x, y, z).IsSolid() {
					continue
				}
				for _, d := range voxel.Directions {
					nx, ny, nz := x+d.Normal[0], y+d.Normal[1], z+d.Normal[2]
					if voxel.InBounds(nx, ny, nz) && g.Get(nx, ny, nz).IsSolid() {
						continue
					}
					if ny < 0 {
						continue
					}
					naive++
				}
			}
		}
	}

	lookup := func(x, y, z int) block.Type {
		if y < 0 {
			return block.Unknown
		}
		return block.Air
	}
	geom := build(t, g, lookup)
	assert.LessOrEqual(t, geom.Quads, naive)
}

func TestUnknownNeighborSuppressesBorderFaces(t *testing.T) {
	g := voxel.NewGrid()
	for x := 0; x < voxel.Width; x++ {
		for z := 0; z < voxel.Depth; z++ {
			for y := 0; y < 10; y++ {
				g.Set(x, y, z, block.Stone)
			}
		}
	}

	geom := build(t, g, unknownSides)
	assert.Equal(t, 1, geom.Quads, "только верхняя грань")
	assert.Equal(t, SideNegX|SidePosX|SideNegZ|SidePosZ, geom.UnknownSides)

	// сосед сгенерирован и твёрдый - граница по-прежнему закрыта
	solidNeighbors := func(x, y, z int) block.Type {
		if y >= voxel.Height {
			return block.Air
		}
		return block.Stone
	}
	geom = build(t, g, solidNeighbors)
	assert.Equal(t, 1, geom.Quads)
	assert.Zero(t, geom.UnknownSides)

	// сосед сгенерирован и пуст - появляются четыре боковые грани 16x10
	airNeighbors := func(x, y, z int) block.Type {
		if y < 0 {
			return block.Unknown
		}
		return block.Air
	}
	geom = build(t, g, airNeighbors)
	assert.Equal(t, 5, geom.Quads)
}

func TestNilLookupTreatsOutsideAsUnknown(t *testing.T) {
	g := voxel.NewGrid()
	g.Set(0, 0, 0, block.Stone)

	geom := build(t, g, nil)

	// наружу смотрят -X, -Y, -Z; остаются +X, +Y, +Z
	assert.Equal(t, 3, geom.Quads)
	assert.True(t, geom.HasUnknownSide(SideNegX))
	assert.True(t, geom.HasUnknownSide(SideNegZ))
	assert.False(t, geom.HasUnknownSide(SidePosX))
}

func TestIndicesUseBaseOffset(t *testing.T) {
	g := voxel.NewGrid()
	g.Set(1, 1, 1, block.Grass)

	m := NewGreedyMesher(block.DefaultAtlas())
	geom := &Geometry{}
	m.Build(mgl32.Vec3{}, g, airAround, geom)
	m.Build(mgl32.Vec3{16, 0, 0}, g, airAround, geom)

	require.Equal(t, 12, geom.Quads)
	for q := 0; q < geom.Quads; q++ {
		base := uint32(q * 4)
		assert.Equal(t, []uint32{base, base + 1, base + 2, base + 2, base + 3, base}, geom.Indices[q*6:q*6+6])
	}
	for i := 0; i < 24; i++ {
		assert.Equal(t, geom.Vertices[i].Position.Add(mgl32.Vec3{16, 0, 0}), geom.Vertices[24+i].Position)
	}
}

func TestWindingIsCounterClockwiseFromOutside(t *testing.T) {
	g := voxel.NewGrid()
	g.Set(3, 3, 3, block.Stone)

	geom := build(t, g, airAround)

	for q := 0; q < geom.Quads; q++ {
		v := geom.Vertices[q*4 : q*4+4]
		n := v[1].Position.Sub(v[0].Position).Cross(v[2].Position.Sub(v[0].Position))
		assert.Greater(t, n.Dot(v[0].Normal), float32(0), "квад %d", q)
	}
}

func TestTileMatchesFaceClass(t *testing.T) {
	g := voxel.NewGrid()
	g.Set(3, 3, 3, block.Grass)
	atlas := block.DefaultAtlas()
	scale := atlas.UVScale()

	geom := build(t, g, airAround)

	for q := 0; q < geom.Quads; q++ {
		v := geom.Vertices[q*4]
		face := block.Side
		switch v.Normal.Y() {
		case 1:
			face = block.Top
		case -1:
			face = block.Bottom
		}
		off := atlas.FaceUV(block.Grass, face)
		assert.Equal(t, mgl32.Vec2{off.X() * scale.X(), off.Y() * scale.Y()}, v.Tile)
	}
}
