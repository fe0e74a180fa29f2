// Package log provides structured logging for olsfit on top of zerolog.
//
// Models and the training pipeline depend on the small Logger interface
// rather than on zerolog directly. Fields are passed as alternating
// key/value pairs using the key constants defined in this package:
//
//	logger := log.GetLoggerWithName("linear")
//	logger.Info("Training started",
//		log.OperationKey, log.OperationFit,
//		log.SamplesKey, 100,
//	)
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Structured logging keys.
const (
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	DurationMsKey = "duration_ms"
	ModelNameKey  = "model"
	ComponentKey  = "component"
	PredsKey      = "predictions"
	PathKey       = "path"
	StepKey       = "step"
)

// Values for OperationKey and PhaseKey.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationSave    = "save"
	OperationLoad    = "load"

	PhaseTraining    = "training"
	PhaseInference   = "inference"
	PhasePersistence = "persistence"
)

// Logger is the logging interface used throughout olsfit.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out Loggers that share one underlying sink.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level. A leading error value in fields is attached
// with zerolog's Err so it renders under the "error" key.
func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	ev := l.zl.Error()
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			fields = fields[1:]
		}
	}
	ev.Fields(fields).Msg(msg)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	return &zerologLogger{zl: l.zl.With().Fields(fields).Logger()}
}

// ZerologProvider is a LoggerProvider backed by a zerolog.Logger.
type ZerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing human readable output to stderr.
func NewZerologProvider(level zerolog.Level) *ZerologProvider {
	return NewZerologProviderWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// NewZerologProviderWithWriter creates a provider writing to w.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) *ZerologProvider {
	return &ZerologProvider{
		base: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.base}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.base.With().Str("logger", name).Logger()}
}

// Zerolog exposes the underlying zerolog.Logger.
func (p *ZerologProvider) Zerolog() *zerolog.Logger {
	return &p.base
}

// ToLogLevel parses a level name. Unknown names map to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

var (
	mu       sync.RWMutex
	provider *ZerologProvider
)

func globalProvider() *ZerologProvider {
	mu.RLock()
	p := provider
	mu.RUnlock()
	if p != nil {
		return p
	}

	mu.Lock()
	defer mu.Unlock()
	if provider == nil {
		provider = NewZerologProvider(zerolog.InfoLevel)
	}
	return provider
}

// SetupLogger installs a console provider at the given level.
func SetupLogger(level string) {
	mu.Lock()
	provider = NewZerologProvider(ToLogLevel(level))
	mu.Unlock()
}

// SetOutput installs a provider writing zerolog JSON to w.
func SetOutput(w io.Writer, level string) {
	mu.Lock()
	provider = NewZerologProviderWithWriter(w, ToLogLevel(level))
	mu.Unlock()
}

// GetLogger returns the global zerolog.Logger for event-style logging.
func GetLogger() *zerolog.Logger {
	return globalProvider().Zerolog()
}

// GetLoggerWithName returns a named Logger from the global provider.
func GetLoggerWithName(name string) Logger {
	return globalProvider().GetLoggerWithName(name)
}

// LogError logs err at error level on the global logger.
func LogError(err error, msg string) {
	GetLogger().Error().Err(err).Msg(msg)
}
