package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel определяет уровни логирования
type LogLevel int8

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("неизвестный уровень логирования %q", s)
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options - общие параметры для всех создаваемых логгеров
type Options struct {
	Level LogLevel
	JSON  bool
}

var (
	optionsMu sync.RWMutex
	options   = Options{Level: INFO}
)

// Configure задаёт параметры для логгеров, создаваемых после вызова
func Configure(opts Options) {
	optionsMu.Lock()
	options = opts
	optionsMu.Unlock()
}

func currentOptions() Options {
	optionsMu.RLock()
	defer optionsMu.RUnlock()
	return options
}

// Logger - логгер компонента поверх zap
type Logger struct {
	component string
	level     zap.AtomicLevel
	base      *zap.Logger
	sugar     *zap.SugaredLogger
}

// NewLogger создаёт логгер компонента, пишущий в stdout
func NewLogger(component string) (*Logger, error) {
	opts := currentOptions()
	level := zap.NewAtomicLevelAt(opts.Level.zapLevel())

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(component)
	return wrap(component, level, base), nil
}

// NewNop создаёт логгер, который ничего не пишет
func NewNop(component string) *Logger {
	return wrap(component, zap.NewAtomicLevel(), zap.NewNop())
}

func wrap(component string, level zap.AtomicLevel, base *zap.Logger) *Logger {
	return &Logger{
		component: component,
		level:     level,
		base:      base,
		sugar:     base.Sugar(),
	}
}

// Component возвращает имя компонента
func (l *Logger) Component() string { return l.component }

// Zap возвращает нижележащий *zap.Logger для структурированных полей
func (l *Logger) Zap() *zap.Logger { return l.base }

// SetLevel меняет уровень логгера на лету
func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Close сбрасывает буферы
func (l *Logger) Close() error {
	err := l.base.Sync()
	// stdout не поддерживает fsync на части систем
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

// Глобальный логгер. До InitDefaultLogger пишет в никуда.
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewNop("default"))
}

// InitDefaultLogger инициализирует глобальный логгер
func InitDefaultLogger(component string) error {
	l, err := NewLogger(component)
	if err != nil {
		return fmt.Errorf("ошибка создания логгера: %w", err)
	}
	defaultLogger.Store(l)
	return nil
}

// CloseDefaultLogger сбрасывает глобальный логгер
func CloseDefaultLogger() {
	_ = defaultLogger.Load().Close()
}

// Default возвращает глобальный логгер
func Default() *Logger {
	return defaultLogger.Load()
}

func Debug(format string, args ...interface{}) { defaultLogger.Load().Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Load().Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Load().Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Load().Error(format, args...) }
