package world

import "github.com/annel0/voxelstream/internal/vec"

// Evictor выгружает чанки за пределами радиуса вокруг наблюдателя.
// Чанк с активной задачей пропускается до следующего прохода.
type Evictor struct {
	store  *ChunkStore
	radius int
}

// NewEvictor создаёт выгрузчик. radius <= windowRadius отключает выгрузку (возвращает nil),
// иначе чанки окна выгружались бы сразу после создания.
func NewEvictor(store *ChunkStore, radius, windowRadius int) *Evictor {
	if radius <= windowRadius {
		return nil
	}
	return &Evictor{store: store, radius: radius}
}

// Radius возвращает радиус выгрузки
func (e *Evictor) Radius() int { return e.radius }

// Sweep удаляет из хранилища все дальние свободные чанки и возвращает их.
// Выгруженный чанк навсегда остаётся арендованным, поэтому его нельзя поставить в очередь.
func (e *Evictor) Sweep(center vec.Vec2) []*Chunk {
	var evicted []*Chunk
	for _, c := range e.store.Snapshot() {
		if vec.Chebyshev(c.Key, center) <= e.radius {
			continue
		}
		if !c.acquire() {
			continue
		}
		c.evicted.Store(true)
		if e.store.remove(c) {
			evicted = append(evicted, c)
		}
	}
	return evicted
}
