package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelstream/internal/logging"
	"github.com/annel0/voxelstream/internal/metrics"
	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world"
	"github.com/annel0/voxelstream/internal/world/block"
)

type fakeWorld struct {
	blocks map[vec.Vec3]block.Type
	edits  []vec.Vec3
}

func (f *fakeWorld) Stats() world.FrameStats { return world.FrameStats{Frame: 7, Loaded: 9} }

func (f *fakeWorld) Chunks() []world.ChunkInfo {
	return []world.ChunkInfo{{Key: vec.Vec2{}, Generated: true, Quads: 12}}
}

func (f *fakeWorld) PendingEdits() int { return len(f.edits) }

func (f *fakeWorld) Block(pos vec.Vec3) (block.Type, error) {
	if pos.Y < 0 {
		return block.Air, world.ErrOutOfWorld
	}
	t, ok := f.blocks[pos]
	if !ok {
		return block.Unknown, world.ErrChunkNotLoaded
	}
	return t, nil
}

func (f *fakeWorld) SetBlock(pos vec.Vec3, t block.Type) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %v", world.ErrInvalidBlock, t)
	}
	if _, ok := f.blocks[pos]; !ok {
		return fmt.Errorf("%w: %v", world.ErrChunkNotLoaded, pos.Chunk())
	}
	f.edits = append(f.edits, pos)
	return nil
}

func newTestServer(t *testing.T) (*RestServer, *fakeWorld) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fw := &fakeWorld{blocks: map[vec.Vec3]block.Type{{X: 1, Y: 2, Z: 3}: block.Stone}}
	sink := metrics.New(prometheus.NewRegistry())
	s := NewRestServer(Config{
		World:      fw,
		Metrics:    sink.Handler(),
		Registerer: prometheus.NewRegistry(),
		Logger:     logging.NewNop("api-test"),
	})
	return s, fw
}

func do(s *RestServer, method, path string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestStatsAndChunks(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool          `json:"success"`
		Data    StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, uint64(7), resp.Data.World.Frame)
	assert.Equal(t, 9, resp.Data.World.Loaded)
	assert.NotEmpty(t, resp.Data.Process.Uptime)

	rec = do(s, http.MethodGet, "/api/chunks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quads":12`)
}

func TestGetBlock(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/blocks?x=1&y=2&z=3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"stone"`)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/blocks?x=a&y=2&z=3", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/blocks?x=1&y=-1&z=3", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/blocks?x=500&y=2&z=3", nil).Code)
}

func TestSetBlock(t *testing.T) {
	s, fw := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"queued", `{"x":1,"y":2,"z":3,"type":"air"}`, http.StatusAccepted},
		{"bad json", `{"x":`, http.StatusBadRequest},
		{"unknown name", `{"x":1,"y":2,"z":3,"type":"lava"}`, http.StatusBadRequest},
		{"sentinel type", `{"x":1,"y":2,"z":3,"type":"unknown"}`, http.StatusBadRequest},
		{"not loaded", `{"x":900,"y":2,"z":3,"type":"dirt"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/blocks", []byte(tt.body))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, []vec.Vec3{{X: 1, Y: 2, Z: 3}}, fw.edits)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "voxelstream_chunks_loaded")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 5с", formatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1д 0ч 0м 1с", formatUptime(24*time.Hour+time.Second))
}
