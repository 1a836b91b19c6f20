package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

// NeighborLookup возвращает блок по координатам относительно строящегося чанка.
// Вызывается только для координат вне чанка.
type NeighborLookup func(x, y, z int) block.Type

// FaceAtlas - источник тайлов для граней
type FaceAtlas interface {
	FaceUV(t block.Type, face block.Face) mgl32.Vec2
	UVScale() mgl32.Vec2
}

// GreedyMesher сливает видимые грани вокселей в минимальный набор квадов.
// Не хранит состояния между вызовами и безопасен для параллельного использования.
type GreedyMesher struct {
	atlas FaceAtlas
}

// NewGreedyMesher создаёт мешер
func NewGreedyMesher(atlas FaceAtlas) *GreedyMesher {
	return &GreedyMesher{atlas: atlas}
}

// Build дописывает квады чанка в geom. origin - мировая позиция угла чанка.
// Индексы отсчитываются от текущей длины geom.Vertices.
func (m *GreedyMesher) Build(origin mgl32.Vec3, grid *voxel.Grid, lookup NeighborLookup, geom *Geometry) {
	mask := make([]block.Type, voxel.Height*voxel.Width)

	for d := range voxel.Directions {
		dir := &voxel.Directions[d]
		su, sv, sw := voxel.Size(dir.U), voxel.Size(dir.V), voxel.Size(dir.W)
		mask = mask[:su*sv]

		for w := 0; w < sw; w++ {
			if !m.fillMask(dir, w, su, sv, grid, lookup, geom, mask) {
				continue
			}
			m.mergeMask(dir, w, su, sv, origin, mask, geom)
		}
	}
}

// fillMask строит маску плоскости w. Возвращает false, если видимых граней нет.
func (m *GreedyMesher) fillMask(dir *voxel.Direction, w, su, sv int, grid *voxel.Grid, lookup NeighborLookup, geom *Geometry, mask []block.Type) bool {
	visible := false
	var pos [3]int
	pos[dir.W] = w

	for v := 0; v < sv; v++ {
		pos[dir.V] = v
		for u := 0; u < su; u++ {
			pos[dir.U] = u
			i := u + v*su
			mask[i] = block.Air

			cur := grid.Get(pos[0], pos[1], pos[2])
			if !cur.IsSolid() {
				continue
			}

			nx := pos[0] + dir.Normal[0]
			ny := pos[1] + dir.Normal[1]
			nz := pos[2] + dir.Normal[2]

			var nb block.Type
			if voxel.InBounds(nx, ny, nz) {
				nb = grid.Get(nx, ny, nz)
			} else {
				nb = sample(lookup, nx, ny, nz)
				if nb == block.Unknown {
					geom.UnknownSides |= borderSide(nx, nz)
				}
			}

			if nb.IsOpaque() {
				continue
			}
			mask[i] = cur
			visible = true
		}
	}
	return visible
}

// mergeMask сливает маску в прямоугольники и очищает её
func (m *GreedyMesher) mergeMask(dir *voxel.Direction, w, su, sv int, origin mgl32.Vec3, mask []block.Type, geom *Geometry) {
	plane := w
	if dir.Sign > 0 {
		plane = w + 1
	}

	for v := 0; v < sv; v++ {
		for u := 0; u < su; {
			t := mask[u+v*su]
			if t == block.Air {
				u++
				continue
			}

			width := 1
			for u+width < su && mask[u+width+v*su] == t {
				width++
			}

			height := 1
		grow:
			for v+height < sv {
				row := (v + height) * su
				for k := 0; k < width; k++ {
					if mask[u+k+row] != t {
						break grow
					}
				}
				height++
			}

			for dv := 0; dv < height; dv++ {
				row := (v + dv) * su
				for k := 0; k < width; k++ {
					mask[u+k+row] = block.Air
				}
			}

			m.emitQuad(dir, plane, u, v, width, height, t, origin, geom)
			u += width
		}
	}
}

// emitQuad дописывает 4 вершины и 6 индексов
func (m *GreedyMesher) emitQuad(dir *voxel.Direction, plane, u, v, width, height int, t block.Type, origin mgl32.Vec3, geom *Geometry) {
	corner := func(cu, cv int) mgl32.Vec3 {
		var p [3]int
		p[dir.W] = plane
		p[dir.U] = cu
		p[dir.V] = cv
		return mgl32.Vec3{
			origin.X() + float32(p[0]),
			origin.Y() + float32(p[1]),
			origin.Z() + float32(p[2]),
		}
	}

	normal := mgl32.Vec3{float32(dir.Normal[0]), float32(dir.Normal[1]), float32(dir.Normal[2])}
	offset := m.atlas.FaceUV(t, dir.Face)
	scale := m.atlas.UVScale()
	tile := mgl32.Vec2{offset.X() * scale.X(), offset.Y() * scale.Y()}

	fw, fh := float32(width), float32(height)
	quad := [4]Vertex{
		{Position: corner(u, v), TexCoord: mgl32.Vec2{0, 0}},
		{Position: corner(u+width, v), TexCoord: mgl32.Vec2{fw, 0}},
		{Position: corner(u+width, v+height), TexCoord: mgl32.Vec2{fw, fh}},
		{Position: corner(u, v+height), TexCoord: mgl32.Vec2{0, fh}},
	}
	if dir.Flip {
		quad[1], quad[3] = quad[3], quad[1]
	}

	base := uint32(len(geom.Vertices))
	for i := range quad {
		quad[i].Normal = normal
		quad[i].Tile = tile
		geom.Vertices = append(geom.Vertices, quad[i])
	}
	geom.Indices = append(geom.Indices, base, base+1, base+2, base+2, base+3, base)
	geom.Quads++
}

func sample(lookup NeighborLookup, x, y, z int) block.Type {
	if lookup == nil {
		return block.Unknown
	}
	return lookup(x, y, z)
}

func borderSide(x, z int) uint8 {
	switch {
	case x < 0:
		return SideNegX
	case x >= voxel.Width:
		return SidePosX
	case z < 0:
		return SideNegZ
	case z >= voxel.Depth:
		return SidePosZ
	}
	return 0
}
