package block

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeClassification(t *testing.T) {
	assert.False(t, Air.IsSolid())
	assert.False(t, Unknown.IsSolid())
	assert.True(t, Unknown.IsOpaque())
	assert.False(t, Air.IsOpaque())
	for _, s := range []Type{Dirt, Grass, Stone} {
		assert.True(t, s.IsSolid(), s.String())
	}
	assert.False(t, Unknown.IsValid())
}

func TestParse(t *testing.T) {
	tp, err := Parse("stone")
	require.NoError(t, err)
	assert.Equal(t, Stone, tp)

	_, err = Parse("lava")
	assert.Error(t, err)
}

func TestDefaultAtlas(t *testing.T) {
	a := DefaultAtlas()

	assert.Equal(t, mgl32.Vec2{29, 22}, a.FaceUV(Grass, Top))
	assert.Equal(t, mgl32.Vec2{28, 24}, a.FaceUV(Grass, Side))
	assert.Equal(t, mgl32.Vec2{24, 29}, a.FaceUV(Grass, Bottom))
	assert.Equal(t, mgl32.Vec2{30, 2}, a.FaceUV(Stone, Side))
	assert.Equal(t, mgl32.Vec2{}, a.FaceUV(Air, Top))

	scale := a.UVScale()
	assert.InDelta(t, 16.0/1024.0, scale.X(), 1e-7)
	assert.InDelta(t, 16.0/512.0, scale.Y(), 1e-7)
}
