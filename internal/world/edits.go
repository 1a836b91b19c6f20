package world

import (
	"errors"
	"fmt"

	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

var (
	// ErrOutOfWorld - координата Y вне мира
	ErrOutOfWorld = errors.New("world: позиция вне мира")
	// ErrInvalidBlock - тип блока нельзя записать в мир
	ErrInvalidBlock = errors.New("world: недопустимый тип блока")
	// ErrChunkNotLoaded - чанк позиции не загружен
	ErrChunkNotLoaded = errors.New("world: чанк не загружен")
)

type edit struct {
	pos vec.Vec3
	t   block.Type
}

// SetBlock ставит изменение блока в очередь. Изменение применяется в Frame,
// когда чанк сгенерирован и свободен от задач.
func (w *World) SetBlock(pos vec.Vec3, t block.Type) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, t)
	}
	if pos.Y < 0 || pos.Y >= voxel.Height {
		return fmt.Errorf("%w: y=%d", ErrOutOfWorld, pos.Y)
	}
	if _, ok := w.store.Get(pos.Chunk()); !ok {
		return fmt.Errorf("%w: %v", ErrChunkNotLoaded, pos.Chunk())
	}

	w.editsMu.Lock()
	w.pending = append(w.pending, edit{pos: pos, t: t})
	w.editsMu.Unlock()
	return nil
}

// Block возвращает блок в мировой позиции
func (w *World) Block(pos vec.Vec3) (block.Type, error) {
	if pos.Y < 0 || pos.Y >= voxel.Height {
		return block.Air, fmt.Errorf("%w: y=%d", ErrOutOfWorld, pos.Y)
	}
	c, ok := w.store.Get(pos.Chunk())
	if !ok {
		return block.Unknown, fmt.Errorf("%w: %v", ErrChunkNotLoaded, pos.Chunk())
	}
	x, y, z := pos.Local()
	return c.Block(x, y, z), nil
}

// PendingEdits возвращает число ещё не применённых изменений
func (w *World) PendingEdits() int {
	w.editsMu.Lock()
	defer w.editsMu.Unlock()
	return len(w.pending)
}

// applyEdits применяет изменения для свободных сгенерированных чанков.
// Остальные остаются в очереди до следующего кадра.
func (w *World) applyEdits() int {
	w.editsMu.Lock()
	pending := w.pending
	w.pending = nil
	w.editsMu.Unlock()

	applied := 0
	var keep []edit
	for _, e := range pending {
		c, ok := w.store.Get(e.pos.Chunk())
		if !ok {
			w.log.Warn("изменение блока %v отброшено: чанк выгружен", e.pos)
			continue
		}
		if !c.Generated() || !c.acquire() {
			keep = append(keep, e)
			continue
		}

		x, y, z := e.pos.Local()
		changed := c.setBlock(x, y, z, e.t)
		c.release()
		if !changed {
			continue
		}
		applied++
		c.MarkDirty()
		w.dirtyBorderNeighbors(c.Key, x, z)
		w.rescan = true
	}

	if len(keep) > 0 {
		w.editsMu.Lock()
		w.pending = append(keep, w.pending...)
		w.editsMu.Unlock()
	}
	return applied
}

// dirtyBorderNeighbors помечает соседей, чью границу задело изменение
func (w *World) dirtyBorderNeighbors(key vec.Vec2, x, z int) {
	var offsets []vec.Vec2
	if x == 0 {
		offsets = append(offsets, vec.Vec2{X: -1})
	}
	if x == voxel.Width-1 {
		offsets = append(offsets, vec.Vec2{X: 1})
	}
	if z == 0 {
		offsets = append(offsets, vec.Vec2{Y: -1})
	}
	if z == voxel.Depth-1 {
		offsets = append(offsets, vec.Vec2{Y: 1})
	}
	for _, off := range offsets {
		if n, ok := w.store.Get(key.Add(off)); ok && n.Generated() {
			n.MarkDirty()
		}
	}
}
