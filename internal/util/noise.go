package util

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Параметры ландшафта по умолчанию
const (
	DefaultSeed        int64 = 238947
	DefaultFrequency         = 0.005
	DefaultOctaves           = 5
	DefaultPersistence       = 0.6
)

// Виды поля высот
const (
	FieldPerlin  = "perlin"
	FieldSimplex = "simplex"
	FieldFlat    = "flat"
)

// PerlinField - поле высот на шуме Перлина. Возвращает значения от 0 до 1.
// Безопасно для конкурентного чтения.
type PerlinField struct {
	noise     *perlin.Perlin
	frequency float64
}

// NewPerlinField создаёт поле с параметрами по умолчанию
func NewPerlinField(seed int64) *PerlinField {
	alpha := 1 / DefaultPersistence // Вес каждой следующей октавы
	beta := 2.0                     // Рост частоты между октавами
	return &PerlinField{
		noise:     perlin.NewPerlin(alpha, beta, DefaultOctaves, seed),
		frequency: DefaultFrequency,
	}
}

// Height возвращает нормализованную высоту колонки
func (f *PerlinField) Height(worldX, worldZ int) float64 {
	v := f.noise.Noise2D(float64(worldX)*f.frequency, float64(worldZ)*f.frequency)
	// Преобразуем в диапазон от 0 до 1
	return clamp01((v + 1.0) / 2.0)
}

// SimplexField - фрактальный OpenSimplex шум
type SimplexField struct {
	noise       opensimplex.Noise
	frequency   float64
	octaves     int
	persistence float64
}

// NewSimplexField создаёт поле с параметрами по умолчанию
func NewSimplexField(seed int64) *SimplexField {
	return &SimplexField{
		noise:       opensimplex.NewNormalized(seed),
		frequency:   DefaultFrequency,
		octaves:     DefaultOctaves,
		persistence: DefaultPersistence,
	}
}

// Height возвращает нормализованную высоту колонки
func (f *SimplexField) Height(worldX, worldZ int) float64 {
	amp, freq := 1.0, f.frequency
	sum, norm := 0.0, 0.0
	for i := 0; i < f.octaves; i++ {
		sum += amp * f.noise.Eval2(float64(worldX)*freq, float64(worldZ)*freq)
		norm += amp
		amp *= f.persistence
		freq *= 2
	}
	return clamp01(sum / norm)
}

// Flat - постоянная высота, для тестов и отладки
type Flat float64

// Height возвращает одно и то же значение для всех колонок
func (f Flat) Height(worldX, worldZ int) float64 {
	return clamp01(float64(f))
}

// HeightField - функция высоты, общая для всех полей
type HeightField interface {
	Height(worldX, worldZ int) float64
}

// NewField создаёт поле по имени из конфигурации
func NewField(kind string, seed int64) (HeightField, error) {
	switch kind {
	case "", FieldPerlin:
		return NewPerlinField(seed), nil
	case FieldSimplex:
		return NewSimplexField(seed), nil
	case FieldFlat:
		return Flat(0.5), nil
	}
	return nil, fmt.Errorf("неизвестное поле высот %q", kind)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
