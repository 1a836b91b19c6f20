package world

import (
	"fmt"
	"sync"

	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

// ChunkStore - единственный владелец чанков и единственное место их создания
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[vec.Vec2]*Chunk
}

// NewChunkStore создаёт пустое хранилище
func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[vec.Vec2]*Chunk)}
}

// GetOrCreate возвращает существующий чанк или создаёт новый (несгенерированный, dirty).
// created == true только для вызова, который действительно создал чанк.
func (s *ChunkStore) GetOrCreate(key vec.Vec2) (*Chunk, bool) {
	s.mu.RLock()
	if c, exists := s.chunks[key]; exists {
		s.mu.RUnlock()
		return c, false
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверяем еще раз на случай race condition
	if c, exists := s.chunks[key]; exists {
		return c, false
	}
	c := newChunk(key)
	s.insertLocked(c)
	return c, true
}

func (s *ChunkStore) insertLocked(c *Chunk) {
	if _, exists := s.chunks[c.Key]; exists {
		panic(fmt.Sprintf("world: повторное создание чанка %v", c.Key))
	}
	s.chunks[c.Key] = c
}

// Get возвращает чанк, если он существует
func (s *ChunkStore) Get(key vec.Vec2) (*Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, exists := s.chunks[key]
	return c, exists
}

// Len возвращает количество чанков
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Snapshot возвращает копию списка чанков
func (s *ChunkStore) Snapshot() []*Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, c)
	}
	return out
}

// LookupBlock читает блок относительно чанка key. Координаты x/z вне чанка
// переносятся в соседний чанк. Отсутствующий или несгенерированный чанк даёт Unknown,
// ниже мира - Unknown, выше мира - Air. Чанки не создаются.
func (s *ChunkStore) LookupBlock(key vec.Vec2, x, y, z int) block.Type {
	if y < 0 {
		return block.Unknown
	}
	if y >= voxel.Height {
		return block.Air
	}

	target := key.Add(vec.Vec2{X: vec.FloorDiv(x, voxel.Width), Y: vec.FloorDiv(z, voxel.Depth)})
	c, exists := s.Get(target)
	if !exists {
		return block.Unknown
	}
	return c.Block(vec.Mod(x, voxel.Width), y, vec.Mod(z, voxel.Depth))
}

// remove удаляет чанк, если в хранилище лежит именно он
func (s *ChunkStore) remove(c *Chunk) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, exists := s.chunks[c.Key]; exists && cur == c {
		delete(s.chunks, c.Key)
		return true
	}
	return false
}
