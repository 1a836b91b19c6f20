package world

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/annel0/voxelstream/internal/culling"
	"github.com/annel0/voxelstream/internal/logging"
	"github.com/annel0/voxelstream/internal/metrics"
	"github.com/annel0/voxelstream/internal/pipeline"
	"github.com/annel0/voxelstream/internal/render"
	"github.com/annel0/voxelstream/internal/vec"
	"github.com/annel0/voxelstream/internal/world/mesh"
)

// Config - параметры стриминга
type Config struct {
	Radius       int     // Радиус окна в чанках
	EvictRadius  int     // Радиус выгрузки; <= Radius отключает выгрузку
	Workers      int     // Размер пула воркеров
	EnqueueRate  float64 // Постановок в очередь в секунду; 0 - без ограничения
	EnqueueBurst int
	Texture      render.Texture
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{Radius: 3, Workers: 1}
}

// FrameStats - итоги одного кадра
type FrameStats struct {
	Frame        uint64         `json:"frame"`
	Center       vec.Vec2       `json:"center"`
	Loaded       int            `json:"loaded"`
	Visible      int            `json:"visible"`
	Drawn        int            `json:"drawn"`
	Enqueued     int            `json:"enqueued"`
	Uploaded     int            `json:"uploaded"`
	Evicted      int            `json:"evicted"`
	EditsApplied int            `json:"edits_applied"`
	Pipeline     pipeline.Stats `json:"pipeline"`
	Took         time.Duration  `json:"took_ns"`
}

// ChunkInfo - состояние чанка для отладки
type ChunkInfo struct {
	Key          vec.Vec2 `json:"key"`
	Generated    bool     `json:"generated"`
	Dirty        bool     `json:"dirty"`
	Scheduled    bool     `json:"scheduled"`
	Quads        int      `json:"quads"`
	UnknownSides uint8    `json:"unknown_sides"`
}

// Option настраивает мир
type Option func(*World)

func WithMetrics(s *metrics.Sink) Option {
	return func(w *World) { w.metrics = s }
}

func WithLogger(l *logging.Logger) Option {
	return func(w *World) { w.log = l }
}

// World управляет окном чанков вокруг наблюдателя. Frame и Close вызываются
// только из потока, владеющего рендером; SetBlock, Block, Chunks и Stats - из любого.
type World struct {
	cfg      Config
	store    *ChunkStore
	gen      *Generator
	mesher   *mesh.GreedyMesher
	renderer render.Renderer
	pipeline *pipeline.Pipeline[*Lease]
	limiter  *rate.Limiter
	evictor  *Evictor
	offsets  []vec.Vec2

	metrics *metrics.Sink
	log     *logging.Logger

	// Состояние потока оркестрации
	frame     uint64
	center    vec.Vec2
	hasCenter bool
	frustum   culling.Frustum
	rescan    bool
	visible   []*Chunk

	editsMu sync.Mutex
	pending []edit

	stats  atomic.Pointer[FrameStats]
	closed bool
}

// New создаёт мир и запускает воркеры
func New(cfg Config, heights HeightProvider, atlas mesh.FaceAtlas, renderer render.Renderer, opts ...Option) *World {
	if cfg.Radius < 0 {
		cfg.Radius = 0
	}
	w := &World{
		cfg:      cfg,
		store:    NewChunkStore(),
		gen:      NewGenerator(heights),
		mesher:   mesh.NewGreedyMesher(atlas),
		renderer: renderer,
		offsets:  windowOffsets(cfg.Radius),
		log:      logging.GetWorldLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if cfg.EnqueueRate > 0 {
		burst := cfg.EnqueueBurst
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(cfg.EnqueueRate), burst)
	}
	w.evictor = NewEvictor(w.store, cfg.EvictRadius, cfg.Radius)
	w.pipeline = pipeline.New[*Lease](cfg.Workers, pipeline.WithMetrics(w.metrics))
	w.stats.Store(&FrameStats{})

	w.log.Info("мир создан: радиус=%d, воркеров=%d, выгрузка=%d", cfg.Radius, cfg.Workers, cfg.EvictRadius)
	return w
}

// windowOffsets возвращает смещения окна (2R+1)^2, ближние первыми
func windowOffsets(radius int) []vec.Vec2 {
	offsets := make([]vec.Vec2, 0, (2*radius+1)*(2*radius+1))
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			offsets = append(offsets, vec.Vec2{X: dx, Y: dz})
		}
	}
	sort.SliceStable(offsets, func(i, j int) bool {
		return offsets[i].X*offsets[i].X+offsets[i].Y*offsets[i].Y <
			offsets[j].X*offsets[j].X+offsets[j].Y*offsets[j].Y
	})
	return offsets
}

// Store возвращает хранилище чанков
func (w *World) Store() *ChunkStore { return w.store }

// Frame выполняет один кадр: применяет изменения, при смене чанка наблюдателя или
// пирамиды пересчитывает окно, забирает готовую геометрию и рисует видимые чанки.
func (w *World) Frame(ctx context.Context, observer mgl32.Vec3, frustum culling.Frustum) FrameStats {
	_, span := otel.Tracer("voxelstream/world").Start(ctx, "world.frame")
	defer span.End()

	start := time.Now()
	w.frame++
	stats := FrameStats{Frame: w.frame}

	stats.EditsApplied = w.applyEdits()

	center := vec.ChunkOf(int(math.Floor(float64(observer.X()))), int(math.Floor(float64(observer.Z()))))
	if !w.hasCenter || center != w.center || frustum != w.frustum || w.rescan {
		moved := !w.hasCenter || center != w.center
		w.center, w.hasCenter, w.frustum, w.rescan = center, true, frustum, false

		stats.Enqueued = w.updateWindow()
		if moved {
			stats.Evicted = w.evict()
		}
	}

	stats.Uploaded = w.pipeline.DrainUpload(w.upload)
	stats.Drawn = w.draw()

	stats.Center = w.center
	stats.Loaded = w.store.Len()
	stats.Visible = len(w.visible)
	stats.Pipeline = w.pipeline.Stats()
	stats.Took = time.Since(start)

	span.SetAttributes(
		attribute.Int("frame.enqueued", stats.Enqueued),
		attribute.Int("frame.uploaded", stats.Uploaded),
		attribute.Int("frame.drawn", stats.Drawn),
	)
	w.metrics.Chunks(stats.Loaded, stats.Visible)
	w.stats.Store(&stats)
	return stats
}

// updateWindow создаёт недостающие чанки, ставит в очередь грязные и собирает список видимых
func (w *World) updateWindow() int {
	enqueued := 0
	w.visible = w.visible[:0]

	for _, off := range w.offsets {
		c, _ := w.store.GetOrCreate(w.center.Add(off))

		switch {
		case !c.Generated():
			if w.schedule(c, pipeline.GenerateAndBuild) {
				enqueued++
			}
		case c.Dirty():
			if w.schedule(c, pipeline.BuildOnly) {
				enqueued++
			}
		}

		if culling.IsVisible(c.Box, w.frustum) {
			w.visible = append(w.visible, c)
		}
	}
	return enqueued
}

// schedule арендует чанк и ставит задачу. Занятый чанк пропускается.
func (w *World) schedule(c *Chunk, kind pipeline.Kind) bool {
	if !c.acquire() {
		return false
	}
	if w.limiter != nil && !w.limiter.Allow() {
		c.release()
		w.rescan = true
		w.metrics.Throttled()
		return false
	}

	lease := &Lease{chunk: c, store: w.store, gen: w.gen, mesher: w.mesher}
	if _, err := w.pipeline.Enqueue(kind, lease); err != nil {
		c.release()
		w.log.Warn("задача для чанка %v не поставлена: %v", c.Key, err)
		return false
	}
	return true
}

// upload передаёт рендереру геометрию завершённой задачи
func (w *World) upload(job pipeline.Job[*Lease]) {
	c := job.Work.Chunk()
	if c.Evicted() {
		return
	}

	geom := c.latest.Load()
	if geom != nil && geom != c.uploaded {
		h := w.renderer.Upload(geom.Vertices, geom.Indices)
		if c.hasHandle {
			w.renderer.Release(c.handle)
		}
		c.handle, c.hasHandle, c.uploaded = h, true, geom
		w.metrics.Uploaded()
	}

	if job.Kind == pipeline.GenerateAndBuild {
		w.repairNeighbors(c)
	}
	if geom != nil && geom.UnknownSides != 0 {
		w.repairOwnBorders(c, geom)
	}
	// Изменён во время задачи
	if c.Dirty() {
		w.rescan = true
	}
}

var neighborOffsets = [4]vec.Vec2{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// repairNeighbors помечает соседей, которые строили грань без данных этого чанка
func (w *World) repairNeighbors(c *Chunk) {
	for _, off := range neighborOffsets {
		n, ok := w.store.Get(c.Key.Add(off))
		if !ok || !n.Generated() {
			continue
		}
		geom := n.latest.Load()
		if geom != nil && geom.HasUnknownSide(mesh.SideToward(-off.X, -off.Y)) {
			n.MarkDirty()
			w.rescan = true
		}
	}
}

// repairOwnBorders помечает чанк, если сосед за неизвестной границей уже сгенерирован
func (w *World) repairOwnBorders(c *Chunk, geom *mesh.Geometry) {
	for _, off := range neighborOffsets {
		if !geom.HasUnknownSide(mesh.SideToward(off.X, off.Y)) {
			continue
		}
		if n, ok := w.store.Get(c.Key.Add(off)); ok && n.Generated() {
			c.MarkDirty()
			w.rescan = true
			return
		}
	}
}

// evict выгружает дальние чанки и освобождает их буферы
func (w *World) evict() int {
	if w.evictor == nil {
		return 0
	}
	evicted := w.evictor.Sweep(w.center)
	for _, c := range evicted {
		if c.hasHandle {
			w.renderer.Release(c.handle)
			c.hasHandle = false
		}
	}
	if len(evicted) > 0 {
		w.log.Debug("выгружено чанков: %d", len(evicted))
	}
	w.metrics.Evicted(len(evicted))
	return len(evicted)
}

// draw рисует видимые чанки, у которых уже есть буфер
func (w *World) draw() int {
	drawn := 0
	for _, c := range w.visible {
		if c.hasHandle {
			w.renderer.Draw(c.handle, w.cfg.Texture)
			drawn++
		}
	}
	return drawn
}

// Settled сообщает, что окно полностью построено и загружено в рендерер:
// не осталось незавершённых задач и правок.
// Вызывается из потока кадров.
func (w *World) Settled() bool {
	if w.rescan || w.PendingEdits() > 0 {
		return false
	}
	if p := w.pipeline.Stats(); p.Queued > 0 || p.InFlight > 0 || p.Ready > 0 {
		return false
	}
	for _, off := range w.offsets {
		c, ok := w.store.Get(w.center.Add(off))
		if !ok || !c.Generated() || c.Dirty() || c.Scheduled() {
			return false
		}
		if g := c.Geometry(); g == nil || g != c.uploaded {
			return false
		}
	}
	return true
}

// Stats возвращает итоги последнего кадра
func (w *World) Stats() FrameStats {
	return *w.stats.Load()
}

// Chunks возвращает состояние всех загруженных чанков
func (w *World) Chunks() []ChunkInfo {
	chunks := w.store.Snapshot()
	out := make([]ChunkInfo, 0, len(chunks))
	for _, c := range chunks {
		info := ChunkInfo{
			Key:       c.Key,
			Generated: c.Generated(),
			Dirty:     c.Dirty(),
			Scheduled: c.Scheduled(),
		}
		if g := c.Geometry(); g != nil {
			info.Quads = g.Quads
			info.UnknownSides = g.UnknownSides
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Y != out[j].Key.Y {
			return out[i].Key.Y < out[j].Key.Y
		}
		return out[i].Key.X < out[j].Key.X
	})
	return out
}

// Close останавливает конвейер и освобождает буферы рендерера
func (w *World) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.pipeline.Close()

	for _, c := range w.store.Snapshot() {
		if c.hasHandle {
			w.renderer.Release(c.handle)
			c.hasHandle = false
		}
	}
	w.log.Info("мир остановлен: чанков=%d", w.store.Len())
}
