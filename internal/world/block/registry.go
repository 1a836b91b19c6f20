package block

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Параметры атласа по умолчанию
const (
	DefaultAtlasWidth  = 1024
	DefaultAtlasHeight = 512
	DefaultTileSize    = 16
)

// FaceTiles хранит смещения тайлов (в тайлах) для трёх классов граней
type FaceTiles struct {
	Top    mgl32.Vec2
	Side   mgl32.Vec2
	Bottom mgl32.Vec2
}

// Uniform возвращает одинаковый тайл для всех граней
func Uniform(tile mgl32.Vec2) FaceTiles {
	return FaceTiles{Top: tile, Side: tile, Bottom: tile}
}

// Atlas - регистр текстурных тайлов блоков.
// Безопасен для конкурентного чтения из воркеров.
type Atlas struct {
	mu       sync.RWMutex
	tiles    map[Type]FaceTiles
	uvScale  mgl32.Vec2
	tileSize int
}

// NewAtlas создаёт пустой атлас указанного размера
func NewAtlas(width, height, tileSize int) *Atlas {
	return &Atlas{
		tiles:    make(map[Type]FaceTiles),
		uvScale:  mgl32.Vec2{float32(tileSize) / float32(width), float32(tileSize) / float32(height)},
		tileSize: tileSize,
	}
}

// DefaultAtlas возвращает атлас 1024x512 с тайлами 16px для стандартных блоков
func DefaultAtlas() *Atlas {
	return StandardAtlas(DefaultAtlasWidth, DefaultAtlasHeight, DefaultTileSize)
}

// StandardAtlas регистрирует стандартные блоки в атласе заданного размера
func StandardAtlas(width, height, tileSize int) *Atlas {
	a := NewAtlas(width, height, tileSize)
	a.Register(Dirt, Uniform(mgl32.Vec2{24, 29}))
	a.Register(Grass, FaceTiles{
		Top:    mgl32.Vec2{29, 22},
		Side:   mgl32.Vec2{28, 24},
		Bottom: mgl32.Vec2{24, 29},
	})
	a.Register(Stone, Uniform(mgl32.Vec2{30, 2}))
	return a
}

// Register добавляет (или заменяет) тайлы блока
func (a *Atlas) Register(t Type, tiles FaceTiles) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tiles[t] = tiles
}

// Get возвращает тайлы блока
func (a *Atlas) Get(t Type) (FaceTiles, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	tiles, exists := a.tiles[t]
	return tiles, exists
}

// FaceUV возвращает смещение тайла для грани. Для незарегистрированного блока - нулевой тайл.
func (a *Atlas) FaceUV(t Type, face Face) mgl32.Vec2 {
	tiles, _ := a.Get(t)
	switch face {
	case Top:
		return tiles.Top
	case Bottom:
		return tiles.Bottom
	default:
		return tiles.Side
	}
}

// UVScale возвращает размер одного тайла в UV-пространстве
func (a *Atlas) UVScale() mgl32.Vec2 {
	return a.uvScale
}

// TileSize возвращает размер тайла в пикселях
func (a *Atlas) TileSize() int {
	return a.tileSize
}
