// Package culling отбирает чанки, попадающие в пирамиду видимости.
package culling

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

// AABB - ограничивающий параллелепипед в мировых координатах
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// ChunkBox возвращает AABB чанка. Не меняется за время жизни чанка.
func ChunkBox(key vec.Vec2) AABB {
	x, z := key.Origin()
	lo := mgl32.Vec3{float32(x), 0, float32(z)}
	return AABB{
		Min: lo,
		Max: lo.Add(mgl32.Vec3{voxel.Width, voxel.Height, voxel.Depth}),
	}
}

// Corners возвращает 8 вершин параллелепипеда
func (b AABB) Corners() [8]mgl32.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]mgl32.Vec3{
		{lo.X(), lo.Y(), lo.Z()},
		{hi.X(), lo.Y(), lo.Z()},
		{lo.X(), hi.Y(), lo.Z()},
		{lo.X(), lo.Y(), hi.Z()},
		{hi.X(), hi.Y(), lo.Z()},
		{hi.X(), lo.Y(), hi.Z()},
		{lo.X(), hi.Y(), hi.Z()},
		{hi.X(), hi.Y(), hi.Z()},
	}
}

// Center возвращает центр параллелепипеда
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}
