package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxelstream/internal/logging"
	"github.com/annel0/voxelstream/internal/middleware"
	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world"
	"github.com/annel0/voxelstream/internal/world/block"
)

// WorldView - часть мира, доступная отладочному API
type WorldView interface {
	Stats() world.FrameStats
	Chunks() []world.ChunkInfo
	PendingEdits() int
	Block(pos vec.Vec3) (block.Type, error)
	SetBlock(pos vec.Vec3, t block.Type) error
}

// Config содержит зависимости REST сервера
type Config struct {
	Port       int
	Service    string
	World      WorldView
	Metrics    http.Handler          // обработчик /metrics, может быть nil
	Registerer prometheus.Registerer // регистр для HTTP-метрик
	Logger     *logging.Logger
}

// RestServer - отладочный HTTP сервер мира
type RestServer struct {
	router  *gin.Engine
	srv     *http.Server
	world   WorldView
	metrics *ServerMetrics
	log     *logging.Logger
}

// GenericResponse - общий формат ответа
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// StatsResponse - ответ /api/stats
type StatsResponse struct {
	World        world.FrameStats `json:"world"`
	PendingEdits int              `json:"pending_edits"`
	Process      ProcessStats     `json:"process"`
}

// BlockRequest - тело POST /api/blocks
type BlockRequest struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Type string `json:"type" binding:"required"`
}

// NewRestServer создает новый REST сервер
func NewRestServer(cfg Config) *RestServer {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Service == "" {
		cfg.Service = "voxelstream"
	}
	log := cfg.Logger
	if log == nil {
		log = logging.GetAPILogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Service))
	router.Use(middleware.NewRequestLogger(log, "/health", "/metrics").Handler())
	router.Use(middleware.NewPrometheusMiddleware("debug_api", cfg.Registerer).Handler())

	s := &RestServer{
		router:  router,
		world:   cfg.World,
		metrics: NewServerMetrics(),
		log:     log,
	}
	s.setupRoutes(cfg.Metrics)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *RestServer) setupRoutes(metricsHandler http.Handler) {
	s.router.GET("/health", s.handleHealth)
	if metricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := s.router.Group("/api")
	{
		api.GET("/stats", s.handleStats)
		api.GET("/chunks", s.handleChunks)
		api.GET("/blocks", s.handleGetBlock)
		api.POST("/blocks", s.handleSetBlock)
	}
}

// Handler возвращает HTTP обработчик сервера
func (s *RestServer) Handler() http.Handler {
	return s.router
}

// Start запускает сервер в фоне
func (s *RestServer) Start() {
	go func() {
		s.log.Info("🌐 REST API слушает %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("❌ REST API остановлен с ошибкой: %v", err)
		}
	}()
}

// Stop корректно останавливает сервер
func (s *RestServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *RestServer) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Data: StatsResponse{
			World:        s.world.Stats(),
			PendingEdits: s.world.PendingEdits(),
			Process:      s.metrics.Snapshot(),
		},
	})
}

func (s *RestServer) handleChunks(c *gin.Context) {
	chunks := s.world.Chunks()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: strconv.Itoa(len(chunks)),
		Data:    chunks,
	})
}

func (s *RestServer) handleGetBlock(c *gin.Context) {
	pos, err := queryPos(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	t, err := s.world.Block(pos)
	if err != nil {
		c.JSON(statusFor(err), GenericResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: gin.H{"type": t.String()}})
}

func (s *RestServer) handleSetBlock(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Неверный формат запроса"})
		return
	}

	t, err := block.Parse(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	pos := vec.Vec3{X: req.X, Y: req.Y, Z: req.Z}
	if err := s.world.SetBlock(pos, t); err != nil {
		c.JSON(statusFor(err), GenericResponse{Success: false, Message: err.Error()})
		return
	}

	s.log.Info("🧱 изменение блока %v -> %s поставлено в очередь", pos, t)
	c.JSON(http.StatusAccepted, GenericResponse{Success: true, Message: "queued"})
}

func queryPos(c *gin.Context) (vec.Vec3, error) {
	var pos vec.Vec3
	for _, f := range []struct {
		name string
		dst  *int
	}{{"x", &pos.X}, {"y", &pos.Y}, {"z", &pos.Z}} {
		v, err := strconv.Atoi(c.Query(f.name))
		if err != nil {
			return pos, fmt.Errorf("параметр %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return pos, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, world.ErrChunkNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, world.ErrOutOfWorld), errors.Is(err, world.ErrInvalidBlock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
