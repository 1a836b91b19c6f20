// Package pipeline - конвейер генерации и мешинга чанков:
// очередь генерации, пул воркеров и очередь выгрузки.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxelstream/internal/logging"
	"github.com/annel0/voxelstream/internal/metrics"
	"github.com/annel0/voxelstream/internal/vec"
)

// ErrClosed возвращается при постановке задачи в остановленный конвейер
var ErrClosed = errors.New("pipeline: конвейер остановлен")

// Kind - тип задачи
type Kind uint8

const (
	GenerateAndBuild Kind = iota
	BuildOnly
)

func (k Kind) String() string {
	if k == GenerateAndBuild {
		return "generate_and_build"
	}
	return "build_only"
}

// Work - исключительный доступ к чанку на время задачи.
// Держатель Work - единственный, кто пишет в сетку и геометрию чанка.
type Work interface {
	Key() vec.Vec2
	// Begin снимает флаг dirty
	Begin()
	Generate(ctx context.Context)
	// BuildMesh строит геометрию и возвращает число квадов
	BuildMesh(ctx context.Context) int
	// Finish публикует геометрию и возвращает доступ владельцу
	Finish()
}

// Job - задача конвейера
type Job[W Work] struct {
	ID       uuid.UUID
	Kind     Kind
	Work     W
	Enqueued time.Time

	// Заполняются воркером
	Quads int
	Took  time.Duration
}

// Stats - снимок состояния конвейера
type Stats struct {
	Workers   int    `json:"workers"`
	Queued    int    `json:"queued"`
	InFlight  int64  `json:"in_flight"`
	Ready     int    `json:"ready"`
	Completed uint64 `json:"completed"`
}

type options struct {
	metrics *metrics.Sink
	log     *logging.Logger
	tracer  trace.Tracer
}

// Option настраивает конвейер
type Option func(*options)

func WithMetrics(s *metrics.Sink) Option {
	return func(o *options) { o.metrics = s }
}

func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// Pipeline - очередь генерации, фиксированный пул воркеров и очередь выгрузки
type Pipeline[W Work] struct {
	generate *Queue[Job[W]]
	upload   *Queue[Job[W]]
	pool     pond.Pool
	workers  int

	inflight  atomic.Int64
	completed atomic.Uint64
	closeOnce sync.Once

	opts options
}

// New запускает конвейер с указанным числом воркеров (минимум 1)
func New[W Work](workers int, opts ...Option) *Pipeline[W] {
	if workers < 1 {
		workers = 1
	}
	o := options{
		log:    logging.GetPipelineLogger(),
		tracer: otel.Tracer("voxelstream/pipeline"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pipeline[W]{
		generate: NewQueue[Job[W]](),
		upload:   NewQueue[Job[W]](),
		pool:     pond.NewPool(workers),
		workers:  workers,
		opts:     o,
	}
	for i := 0; i < workers; i++ {
		p.pool.Submit(func() { p.worker(i) })
	}
	p.opts.log.Debug("конвейер запущен: воркеров=%d", workers)
	return p
}

// Enqueue ставит задачу в очередь генерации и будит один воркер
func (p *Pipeline[W]) Enqueue(kind Kind, w W) (Job[W], error) {
	job := Job[W]{
		ID:       uuid.New(),
		Kind:     kind,
		Work:     w,
		Enqueued: time.Now(),
	}
	if !p.generate.Push(job) {
		return job, ErrClosed
	}
	p.opts.metrics.JobEnqueued(kind.String())
	p.opts.metrics.QueueDepth(metrics.QueueGenerate, p.generate.Len())
	return job, nil
}

func (p *Pipeline[W]) worker(id int) {
	for {
		job, ok := p.generate.Pop()
		if !ok {
			p.opts.log.Debug("воркер %d завершён", id)
			return
		}
		p.run(job)
	}
}

func (p *Pipeline[W]) run(job Job[W]) {
	p.inflight.Add(1)
	defer p.inflight.Add(-1)

	key := job.Work.Key()
	ctx, span := p.opts.tracer.Start(context.Background(), "pipeline.job",
		trace.WithAttributes(
			attribute.String("job.id", job.ID.String()),
			attribute.String("job.kind", job.Kind.String()),
			attribute.Int("chunk.x", key.X),
			attribute.Int("chunk.z", key.Y),
		))
	defer span.End()

	start := time.Now()
	job.Work.Begin()
	if job.Kind == GenerateAndBuild {
		job.Work.Generate(ctx)
	}
	job.Quads = job.Work.BuildMesh(ctx)
	job.Work.Finish()
	job.Took = time.Since(start)

	span.SetAttributes(attribute.Int("mesh.quads", job.Quads))
	p.completed.Add(1)
	p.opts.metrics.JobCompleted(job.Kind.String(), job.Took, job.Quads)

	// Очередь выгрузки закрывается только после остановки всех воркеров
	p.upload.Push(job)
	p.opts.metrics.QueueDepth(metrics.QueueUpload, p.upload.Len())
}

// DrainUpload без блокировки забирает все готовые задачи и вызывает visit для каждой.
// Вызывать только из потока, владеющего рендером.
func (p *Pipeline[W]) DrainUpload(visit func(Job[W])) int {
	n := 0
	for {
		job, ok := p.upload.TryPop()
		if !ok {
			break
		}
		visit(job)
		n++
	}
	if n > 0 {
		p.opts.metrics.QueueDepth(metrics.QueueUpload, p.upload.Len())
	}
	return n
}

// Close закрывает очередь генерации, дожидается всех воркеров и закрывает очередь выгрузки.
// Уже поставленные задачи выполняются до конца; их результаты остаются доступны через DrainUpload.
func (p *Pipeline[W]) Close() {
	p.closeOnce.Do(func() {
		p.generate.Close()
		p.pool.StopAndWait()
		p.upload.Close()
		p.opts.log.Debug("конвейер остановлен: выполнено задач=%d", p.completed.Load())
	})
}

// Stats возвращает снимок счётчиков
func (p *Pipeline[W]) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Queued:    p.generate.Len(),
		InFlight:  p.inflight.Load(),
		Ready:     p.upload.Len(),
		Completed: p.completed.Load(),
	}
}
