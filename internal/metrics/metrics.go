// Package metrics экспортирует Prometheus-метрики конвейера и мира.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxelstream/internal/logging"
)

const namespace = "voxelstream"

// Очереди конвейера
const (
	QueueGenerate = "generate"
	QueueUpload   = "upload"
)

// Sink инкапсулирует метрики. Методы безопасны для nil-получателя,
// поэтому компоненты работают и без метрик.
type Sink struct {
	gatherer prometheus.Gatherer

	jobsEnqueued  *prometheus.CounterVec
	jobsCompleted *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	queueDepth    *prometheus.GaugeVec
	quads         prometheus.Counter
	uploads       prometheus.Counter
	chunksLoaded  prometheus.Gauge
	chunksVisible prometheus.Gauge
	chunksEvicted prometheus.Counter
	throttled     prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg (nil - глобальный регистр).
func New(reg prometheus.Registerer) *Sink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &Sink{
		jobsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_enqueued_total",
			Help:      "Задачи, поставленные в очередь генерации.",
		}, []string{"kind"}),
		jobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Задачи, выполненные воркерами.",
		}, []string{"kind"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Длительность генерации и построения меша.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"kind"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Текущая длина очередей конвейера.",
		}, []string{"queue"}),
		quads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quads_emitted_total",
			Help:      "Квады, построенные жадным мешером.",
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Геометрия, переданная рендереру.",
		}),
		chunksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_loaded",
			Help:      "Чанки в хранилище.",
		}),
		chunksVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_visible",
			Help:      "Чанки, прошедшие отсечение в последнем кадре.",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_evicted_total",
			Help:      "Чанки, выгруженные за пределами окна.",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enqueue_throttled_total",
			Help:      "Постановки в очередь, отложенные ограничителем.",
		}),
	}

	reg.MustRegister(
		s.jobsEnqueued, s.jobsCompleted, s.jobDuration, s.queueDepth,
		s.quads, s.uploads, s.chunksLoaded, s.chunksVisible, s.chunksEvicted, s.throttled,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	} else {
		s.gatherer = prometheus.DefaultGatherer
	}
	return s
}

func (s *Sink) JobEnqueued(kind string) {
	if s == nil {
		return
	}
	s.jobsEnqueued.WithLabelValues(kind).Inc()
}

// JobCompleted учитывает выполненную задачу и число построенных квадов
func (s *Sink) JobCompleted(kind string, took time.Duration, quads int) {
	if s == nil {
		return
	}
	s.jobsCompleted.WithLabelValues(kind).Inc()
	s.jobDuration.WithLabelValues(kind).Observe(took.Seconds())
	s.quads.Add(float64(quads))
}

func (s *Sink) QueueDepth(queue string, depth int) {
	if s == nil {
		return
	}
	s.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

func (s *Sink) Uploaded() {
	if s == nil {
		return
	}
	s.uploads.Inc()
}

// Chunks обновляет gauges хранилища и видимости
func (s *Sink) Chunks(loaded, visible int) {
	if s == nil {
		return
	}
	s.chunksLoaded.Set(float64(loaded))
	s.chunksVisible.Set(float64(visible))
}

func (s *Sink) Evicted(n int) {
	if s == nil || n == 0 {
		return
	}
	s.chunksEvicted.Add(float64(n))
}

func (s *Sink) Throttled() {
	if s == nil {
		return
	}
	s.throttled.Inc()
}

// Handler возвращает HTTP-обработчик /metrics для регистра метрик
func (s *Sink) Handler() http.Handler {
	if s == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий. Возвращает сервер для остановки через Shutdown.
func (s *Sink) StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
