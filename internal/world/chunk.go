package world

import (
	"sync"
	"sync/atomic"

	"github.com/annel0/voxelstream/internal/culling"
	"github.com/annel0/voxelstream/internal/render"
	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/mesh"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

// Chunk - колонка 16x256x16 блоков.
// Писать в сетку может только держатель аренды (флаг scheduled).
type Chunk struct {
	Key vec.Vec2    // Координаты чанка
	Box culling.AABB // Не меняется за время жизни чанка

	mu   sync.RWMutex
	grid *voxel.Grid // nil до генерации

	generated atomic.Bool
	dirty     atomic.Bool
	scheduled atomic.Bool
	evicted   atomic.Bool

	// Только геометрия завершённых задач
	latest atomic.Pointer[mesh.Geometry]

	// Поля потока оркестрации
	handle    render.Handle
	hasHandle bool
	uploaded  *mesh.Geometry
}

func newChunk(key vec.Vec2) *Chunk {
	c := &Chunk{
		Key: key,
		Box: culling.ChunkBox(key),
	}
	c.dirty.Store(true)
	return c
}

func (c *Chunk) Generated() bool { return c.generated.Load() }
func (c *Chunk) Dirty() bool     { return c.dirty.Load() }
func (c *Chunk) Scheduled() bool { return c.scheduled.Load() }
func (c *Chunk) Evicted() bool   { return c.evicted.Load() }

// MarkDirty помечает чанк для перестроения меша
func (c *Chunk) MarkDirty() { c.dirty.Store(true) }

// Geometry возвращает последнюю опубликованную геометрию или nil
func (c *Chunk) Geometry() *mesh.Geometry { return c.latest.Load() }

// Block возвращает блок по локальным координатам. Несгенерированный чанк отдаёт Unknown.
func (c *Chunk) Block(x, y, z int) block.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.grid == nil {
		return block.Unknown
	}
	return c.grid.Get(x, y, z)
}

// acquire забирает аренду чанка. false - чанк уже занят задачей.
func (c *Chunk) acquire() bool {
	return c.scheduled.CompareAndSwap(false, true)
}

func (c *Chunk) release() {
	c.scheduled.Store(false)
}

// publishGrid делает сгенерированную сетку видимой соседям
func (c *Chunk) publishGrid(g *voxel.Grid) {
	c.mu.Lock()
	c.grid = g
	c.mu.Unlock()
	c.generated.Store(true)
}

// setBlock меняет блок. Вызывающий держит аренду.
func (c *Chunk) setBlock(x, y, z int, t block.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grid == nil || c.grid.Get(x, y, z) == t {
		return false
	}
	c.grid.Set(x, y, z, t)
	return true
}
