// Package mesh строит геометрию чанка жадным слиянием граней.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// Vertex - вершина квада
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	// TexCoord растянут на ширину/высоту слитого квада, тайл повторяется шейдером
	TexCoord mgl32.Vec2
	// Tile - смещение тайла в атласе в UV-пространстве
	Tile mgl32.Vec2
}

// Биты горизонтальных границ, где сосед вернул Unknown
const (
	SideNegX uint8 = 1 << iota
	SidePosX
	SideNegZ
	SidePosZ
)

// Geometry - CPU-сторона геометрии чанка
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
	Quads    int
	// UnknownSides - границы, на которых грани не построены из-за несгенерированного соседа
	UnknownSides uint8
}

// Reset очищает геометрию, сохраняя ёмкость буферов
func (g *Geometry) Reset() {
	g.Vertices = g.Vertices[:0]
	g.Indices = g.Indices[:0]
	g.Quads = 0
	g.UnknownSides = 0
}

// HasUnknownSide проверяет бит границы
func (g *Geometry) HasUnknownSide(side uint8) bool {
	return g.UnknownSides&side != 0
}

// SideToward возвращает бит границы, смотрящей на соседний чанк со смещением (dx, dz).
// Для не-соседних смещений возвращает 0.
func SideToward(dx, dz int) uint8 {
	switch {
	case dx == -1 && dz == 0:
		return SideNegX
	case dx == 1 && dz == 0:
		return SidePosX
	case dx == 0 && dz == -1:
		return SideNegZ
	case dx == 0 && dz == 1:
		return SidePosZ
	}
	return 0
}
