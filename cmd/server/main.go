package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/voxelstream/internal/api"
	"github.com/annel0/voxelstream/internal/config"
	"github.com/annel0/voxelstream/internal/culling"
	"github.com/annel0/voxelstream/internal/logging"
	"github.com/annel0/voxelstream/internal/metrics"
	"github.com/annel0/voxelstream/internal/observability"
	"github.com/annel0/voxelstream/internal/render"
	"github.com/annel0/voxelstream/internal/util"
	"github.com/annel0/voxelstream/internal/world"
	"github.com/annel0/voxelstream/internal/world/block"
	"github.com/annel0/voxelstream/internal/world/voxel"
)

// Параметры облёта наблюдателя
const (
	orbitRadius = 96.0 // блоков
	orbitPeriod = 60 * time.Second
	eyeHeight   = 48.0
	fovY        = 70.0
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("❌ Ошибка уровня логирования: %v", err)
	}
	logging.Configure(logging.Options{Level: level, JSON: cfg.Log.JSON})
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🧊 Запуск voxelstream...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetService(), cfg.Telemetry.Enabled)
	if err != nil {
		logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sink := metrics.New(reg)
	metricsSrv := sink.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))

	// === МИР ===
	heights, err := util.NewField(cfg.World.GetNoise(), cfg.World.GetSeed())
	if err != nil {
		logging.Error("❌ Ошибка создания поля высот: %v", err)
		os.Exit(1)
	}
	atlasW, atlasH, tile := cfg.Atlas.GetAtlas()
	atlas := block.StandardAtlas(atlasW, atlasH, tile)
	recorder := render.NewRecorder()

	w := world.New(world.Config{
		Radius:       cfg.World.GetRadius(),
		EvictRadius:  cfg.World.GetEvictRadius(),
		Workers:      cfg.Pipeline.GetWorkers(),
		EnqueueRate:  cfg.Pipeline.EnqueueRate,
		EnqueueBurst: cfg.Pipeline.EnqueueBurst,
		Texture:      1,
	}, heights, atlas, recorder,
		world.WithMetrics(sink),
		world.WithLogger(logging.GetWorldLogger()),
	)

	// === REST API ===
	restPort := cfg.Server.GetRESTPort()
	rest := api.NewRestServer(api.Config{
		Port:       restPort,
		Service:    cfg.Telemetry.GetService(),
		World:      w,
		Metrics:    sink.Handler(),
		Registerer: reg,
		Logger:     logging.GetAPILogger(),
	})
	rest.Start()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌍 Шум=%s, seed=%d, радиус=%d", cfg.World.GetNoise(), cfg.World.GetSeed(), cfg.World.GetRadius())
	logging.Info("   🌐 REST API: http://localhost:%d", restPort)
	logging.Info("   ❤️  Health check: http://localhost:%d/health", restPort)
	logging.Info("   📈 Метрики: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())

	runFrames(ctx, w, recorder, cfg.Server.GetFrameRate())

	// === GRACEFUL SHUTDOWN ===
	logging.Info("📡 Получен сигнал завершения, остановка...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	w.Close()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки OpenTelemetry: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен (буферов в рендерере: %d)", recorder.Live())
}

// runFrames крутит кадры с фиксированной частотой, пока ctx не отменён.
// Наблюдатель облетает начало координат по кругу.
func runFrames(ctx context.Context, w *world.World, rec *render.Recorder, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	var lastReport time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			eye, center := observerAt(now.Sub(start))
			frustum := culling.FromCamera(eye, center, fovY, 16.0/9.0, 0.1, 512)

			stats := w.Frame(ctx, eye, frustum)
			rec.EndFrame()

			if now.Sub(lastReport) >= 5*time.Second {
				lastReport = now
				logging.Debug("кадр %d: чанков=%d видно=%d нарисовано=%d очередь=%d",
					stats.Frame, stats.Loaded, stats.Visible, stats.Drawn, stats.Pipeline.Queued)
			}
		}
	}
}

// observerAt возвращает позицию наблюдателя и точку взгляда (по касательной к орбите)
func observerAt(elapsed time.Duration) (eye, center mgl32.Vec3) {
	angle := 2 * math.Pi * elapsed.Seconds() / orbitPeriod.Seconds()
	sin, cos := math.Sincos(angle)
	eye = mgl32.Vec3{float32(orbitRadius * cos), eyeHeight, float32(orbitRadius * sin)}
	ahead := mgl32.Vec3{float32(-sin), 0, float32(cos)}
	center = eye.Add(ahead.Mul(voxel.Width)).Sub(mgl32.Vec3{0, eyeHeight / 2, 0})
	return eye, center
}
