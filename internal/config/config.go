package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"

	"github.com/annel0/voxelstream/internal/util"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Atlas     AtlasConfig     `yaml:"atlas"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

type WorldConfig struct {
	Radius      int    `yaml:"radius"`
	EvictRadius int    `yaml:"evict_radius"`
	Seed        int64  `yaml:"seed"`
	Noise       string `yaml:"noise"` // perlin | simplex | flat
}

type PipelineConfig struct {
	Workers      int     `yaml:"workers"`
	EnqueueRate  float64 `yaml:"enqueue_rate"`
	EnqueueBurst int     `yaml:"enqueue_burst"`
}

type AtlasConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	TileSize int `yaml:"tile_size"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
	FrameRate   int `yaml:"frame_rate"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Service string `yaml:"service"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{}
}

// GetRadius возвращает радиус окна стриминга
func (w *WorldConfig) GetRadius() int {
	return getIntWithEnvFallback(w.Radius, "VOXEL_RADIUS", 3)
}

// GetEvictRadius возвращает радиус выгрузки; 0 - выгрузка отключена
func (w *WorldConfig) GetEvictRadius() int {
	return getIntWithEnvFallback(w.EvictRadius, "VOXEL_EVICT_RADIUS", 0)
}

// GetSeed возвращает сид мира
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}
	if envVal := os.Getenv("VOXEL_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return util.DefaultSeed
}

// GetNoise возвращает вид поля высот
func (w *WorldConfig) GetNoise() string {
	if w.Noise != "" {
		return w.Noise
	}
	return util.FieldPerlin
}

// GetWorkers возвращает размер пула: по умолчанию число логических CPU минус один поток рендера
func (p *PipelineConfig) GetWorkers() int {
	return getIntWithEnvFallback(p.Workers, "VOXEL_WORKERS", defaultWorkers())
}

func defaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 2 {
		return 1
	}
	return n - 1
}

// GetAtlas возвращает размеры атласа с дефолтами 1024x512, тайл 16
func (a *AtlasConfig) GetAtlas() (width, height, tile int) {
	width, height, tile = a.Width, a.Height, a.TileSize
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 512
	}
	if tile <= 0 {
		tile = 16
	}
	return width, height, tile
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getIntWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(s.MetricsPort, "VOXEL_METRICS_PORT", 2112)
}

// GetFrameRate возвращает частоту кадров симуляции
func (s *ServerConfig) GetFrameRate() int {
	return getIntWithEnvFallback(s.FrameRate, "VOXEL_FRAME_RATE", 60)
}

// GetService возвращает имя сервиса для трейсинга
func (t *TelemetryConfig) GetService() string {
	if t.Service != "" {
		return t.Service
	}
	return "voxelstream"
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultValue
}

// Validate проверяет согласованность параметров
func (c *Config) Validate() error {
	if c.World.Radius < 0 {
		return fmt.Errorf("world.radius не может быть отрицательным: %d", c.World.Radius)
	}
	if c.World.EvictRadius > 0 && c.World.EvictRadius <= c.World.GetRadius() {
		return fmt.Errorf("world.evict_radius (%d) должен быть больше radius (%d)", c.World.EvictRadius, c.World.GetRadius())
	}
	if c.Pipeline.EnqueueRate < 0 {
		return fmt.Errorf("pipeline.enqueue_rate не может быть отрицательным: %v", c.Pipeline.EnqueueRate)
	}
	if w, h, tile := c.Atlas.GetAtlas(); w%tile != 0 || h%tile != 0 {
		return fmt.Errorf("размер атласа %dx%d не кратен тайлу %d", w, h, tile)
	}
	return nil
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return Default(), nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
