package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelstream/internal/util"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutPath(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.World.GetRadius())
	assert.Equal(t, util.DefaultSeed, cfg.World.GetSeed())
	assert.Equal(t, util.FieldPerlin, cfg.World.GetNoise())
	assert.GreaterOrEqual(t, cfg.Pipeline.GetWorkers(), 1)
	assert.Equal(t, 8088, cfg.Server.GetRESTPort())
	assert.Equal(t, "voxelstream", cfg.Telemetry.GetService())

	w, h, tile := cfg.Atlas.GetAtlas()
	assert.Equal(t, []int{1024, 512, 16}, []int{w, h, tile})
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
world:
  radius: 5
  evict_radius: 8
  seed: 42
  noise: simplex
pipeline:
  workers: 3
  enqueue_rate: 120
server:
  rest_port: 9000
log:
  level: debug
  json: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.World.GetRadius())
	assert.Equal(t, 8, cfg.World.GetEvictRadius())
	assert.Equal(t, int64(42), cfg.World.GetSeed())
	assert.Equal(t, util.FieldSimplex, cfg.World.GetNoise())
	assert.Equal(t, 3, cfg.Pipeline.GetWorkers())
	assert.Equal(t, 120.0, cfg.Pipeline.EnqueueRate)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadFromEnvPath(t *testing.T) {
	path := writeConfig(t, "world:\n  radius: 2\n")
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.World.GetRadius())
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("VOXEL_WORKERS", "7")
	t.Setenv("VOXEL_REST_PORT", "not-a-port")

	cfg := Default()
	assert.Equal(t, 7, cfg.Pipeline.GetWorkers())
	assert.Equal(t, 8088, cfg.Server.GetRESTPort())
}

func TestValidateRejectsEvictInsideWindow(t *testing.T) {
	path := writeConfig(t, "world:\n  radius: 4\n  evict_radius: 3\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
