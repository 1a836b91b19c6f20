package vec

import "math"

// Размер чанка по горизонтали в блоках.
const chunkSpan = 16

// Vec2 представляет 2D координаты. Используется как ключ чанка (chunkX, chunkZ).
type Vec2 struct {
	X, Y int
}

// FloorDiv делит с округлением вниз (корректно для отрицательных координат)
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod возвращает неотрицательный остаток от деления
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ChunkOf возвращает ключ чанка, содержащего мировую колонку (x, z)
func ChunkOf(worldX, worldZ int) Vec2 {
	return Vec2{X: FloorDiv(worldX, chunkSpan), Y: FloorDiv(worldZ, chunkSpan)}
}

// LocalOf возвращает локальные координаты колонки внутри её чанка
func LocalOf(worldX, worldZ int) (int, int) {
	return Mod(worldX, chunkSpan), Mod(worldZ, chunkSpan)
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Origin возвращает мировые координаты угла чанка
func (v Vec2) Origin() (int, int) {
	return v.X * chunkSpan, v.Y * chunkSpan
}

// Chebyshev возвращает расстояние в чанках по "квадратной" метрике окна
func Chebyshev(a, b Vec2) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dz := a.Y - b.Y
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
