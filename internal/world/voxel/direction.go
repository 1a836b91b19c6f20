package voxel

import "github.com/annel0/voxelstream/internal/world/block"

// Оси
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// Direction описывает одно из шести направлений граней.
// U, V - оси плоскости грани, W - ось прохода.
type Direction struct {
	Normal [3]int
	U, V   int
	W      int
	Sign   int
	Face   block.Face
	// Flip меняет порядок обхода вершин, чтобы грань была CCW снаружи
	Flip bool
}

// Size возвращает протяжённость чанка по оси
func Size(axis int) int {
	switch axis {
	case AxisX:
		return Width
	case AxisY:
		return Height
	default:
		return Depth
	}
}

// Directions в фиксированном порядке: +Z, -Z, +Y, -Y, +X, -X
var Directions = [6]Direction{
	{Normal: [3]int{0, 0, 1}, U: AxisX, V: AxisY, W: AxisZ, Sign: 1, Face: block.Side},
	{Normal: [3]int{0, 0, -1}, U: AxisX, V: AxisY, W: AxisZ, Sign: -1, Face: block.Side, Flip: true},
	{Normal: [3]int{0, 1, 0}, U: AxisX, V: AxisZ, W: AxisY, Sign: 1, Face: block.Top, Flip: true},
	{Normal: [3]int{0, -1, 0}, U: AxisX, V: AxisZ, W: AxisY, Sign: -1, Face: block.Bottom},
	{Normal: [3]int{1, 0, 0}, U: AxisZ, V: AxisY, W: AxisX, Sign: 1, Face: block.Side, Flip: true},
	{Normal: [3]int{-1, 0, 0}, U: AxisZ, V: AxisY, W: AxisX, Sign: -1, Face: block.Side},
}
