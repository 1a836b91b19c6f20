package vec

// Vec3 представляет позицию блока в мире
type Vec3 struct {
	X int
	Y int
	Z int
}

// Chunk возвращает ключ чанка, содержащего блок
func (v Vec3) Chunk() Vec2 {
	return ChunkOf(v.X, v.Z)
}

// Local возвращает координаты блока внутри чанка
func (v Vec3) Local() (int, int, int) {
	lx, lz := LocalOf(v.X, v.Z)
	return lx, v.Y, lz
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}
