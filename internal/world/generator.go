package world

import (
	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

// MaxSurface - высота поверхности при значении поля 1.0
const MaxSurface = 34

// Толщина слоя земли над камнем
const dirtDepth = 5

// HeightProvider возвращает нормализованную высоту [0, 1] мировой колонки.
// Должен быть детерминированным и безопасным для вызова из нескольких воркеров.
type HeightProvider interface {
	Height(worldX, worldZ int) float64
}

// Generator заполняет сетки чанков по полю высот
type Generator struct {
	heights HeightProvider
}

// NewGenerator создаёт генератор
func NewGenerator(heights HeightProvider) *Generator {
	return &Generator{heights: heights}
}

// SurfaceAt возвращает уровень травы в мировой колонке
func (g *Generator) SurfaceAt(worldX, worldZ int) int {
	s := int(g.heights.Height(worldX, worldZ) * MaxSurface)
	if s < 0 {
		return 0
	}
	if s >= voxel.Height {
		return voxel.Height - 1
	}
	return s
}

// FillGrid строит сетку чанка: камень ниже surface-5, земля в [surface-5, surface),
// трава на surface, воздух выше.
func (g *Generator) FillGrid(key vec.Vec2) *voxel.Grid {
	grid := voxel.NewGrid()
	ox, oz := key.Origin()

	for z := 0; z < voxel.Depth; z++ {
		for x := 0; x < voxel.Width; x++ {
			surface := g.SurfaceAt(ox+x, oz+z)
			for y := 0; y <= surface; y++ {
				switch {
				case y < surface-dirtDepth:
					grid.Set(x, y, z, block.Stone)
				case y < surface:
					grid.Set(x, y, z, block.Dirt)
				default:
					grid.Set(x, y, z, block.Grass)
				}
			}
		}
	}
	return grid
}

// Generate заполняет чанк. Сетка становится видна только после полного заполнения.
func (g *Generator) Generate(c *Chunk) {
	c.publishGrid(g.FillGrid(c.Key))
}
