package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/annel0/voxelstream/internal/vec"
)

func lookingAlongNegZ() Frustum {
	return FromCamera(mgl32.Vec3{8, 40, 8}, mgl32.Vec3{8, 40, -100}, 60, 16.0/9.0, 0.1, 300)
}

func TestChunkBox(t *testing.T) {
	box := ChunkBox(vec.Vec2{X: -1, Y: 2})
	assert.Equal(t, mgl32.Vec3{-16, 0, 32}, box.Min)
	assert.Equal(t, mgl32.Vec3{0, 256, 48}, box.Max)
	assert.Equal(t, mgl32.Vec3{-8, 128, 40}, box.Center())
}

func TestFromMatrixPlanesAreNormalized(t *testing.T) {
	f := lookingAlongNegZ()
	for i, p := range f {
		assert.InDelta(t, 1.0, p.Vec3().Len(), 1e-4, "плоскость %d", i)
	}
}

func TestIsVisibleAhead(t *testing.T) {
	f := lookingAlongNegZ()

	ahead := ChunkBox(vec.Vec2{X: 0, Y: -4})
	behind := ChunkBox(vec.Vec2{X: 0, Y: 5})
	tooFar := ChunkBox(vec.Vec2{X: 0, Y: -40})
	aside := ChunkBox(vec.Vec2{X: 30, Y: -1})

	assert.True(t, IsVisible(ahead, f))
	assert.False(t, IsVisible(behind, f))
	assert.False(t, IsVisible(tooFar, f))
	assert.False(t, IsVisible(aside, f))
}

func TestIsVisibleContainingBox(t *testing.T) {
	f := lookingAlongNegZ()
	// наблюдатель внутри бокса - ни одна плоскость не отсекает все вершины
	assert.True(t, IsVisible(ChunkBox(vec.Vec2{X: 0, Y: 0}), f))
}

func TestZeroFrustumSeesEverything(t *testing.T) {
	var f Frustum
	assert.True(t, f.IsZero())
	assert.True(t, IsVisible(ChunkBox(vec.Vec2{X: 1000, Y: -1000}), f))
}

func TestFrustumEquality(t *testing.T) {
	assert.Equal(t, lookingAlongNegZ(), lookingAlongNegZ())
	other := FromCamera(mgl32.Vec3{8, 40, 8}, mgl32.Vec3{100, 40, 8}, 60, 16.0/9.0, 0.1, 300)
	assert.True(t, other != lookingAlongNegZ())
}
