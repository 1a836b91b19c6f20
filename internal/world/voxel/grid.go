// Package voxel содержит сетку блоков одного чанка.
package voxel

import (
	"fmt"

	"github.com/annel0/voxelstream/internal/world/block"
)

// Размеры чанка. Фиксированы на этапе компиляции.
const (
	Width  = 16
	Height = 256
	Depth  = 16
	Volume = Width * Height * Depth
)

// Grid - плоский массив блоков чанка, индекс x + W*(y + H*z).
// Синхронизацию обеспечивает владелец сетки.
type Grid struct {
	cells [Volume]block.Type
}

// NewGrid создаёт сетку, заполненную воздухом
func NewGrid() *Grid {
	return &Grid{}
}

// InBounds проверяет, лежат ли координаты внутри чанка
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height && z >= 0 && z < Depth
}

// Index возвращает индекс ячейки. Выход за границы - ошибка программиста.
func Index(x, y, z int) int {
	if !InBounds(x, y, z) {
		panic(fmt.Sprintf("voxel: координаты (%d,%d,%d) вне чанка", x, y, z))
	}
	return x + Width*(y+Height*z)
}

// Get возвращает блок по локальным координатам
func (g *Grid) Get(x, y, z int) block.Type {
	return g.cells[Index(x, y, z)]
}

// Set записывает блок по локальным координатам
func (g *Grid) Set(x, y, z int, t block.Type) {
	g.cells[Index(x, y, z)] = t
}

// Fill заполняет всю сетку одним типом
func (g *Grid) Fill(t block.Type) {
	for i := range g.cells {
		g.cells[i] = t
	}
}

// Count возвращает количество блоков указанного типа
func (g *Grid) Count(t block.Type) int {
	n := 0
	for _, c := range g.cells {
		if c == t {
			n++
		}
	}
	return n
}

// Clone возвращает независимую копию сетки
func (g *Grid) Clone() *Grid {
	c := *g
	return &c
}
