package logger

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/student-profile-api/pkg/config"
	"github.com/noah-isme/student-profile-api/pkg/middleware/requestid"
)

const serviceName = "student-profile-api"

// New builds the process logger from LOG_LEVEL and LOG_FORMAT. Production
// builds sample repeated lines; an unknown level falls back to info.
func New(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Encoding = "json"
	if cfg.Log.Format == "console" {
		zapCfg.Encoding = "console"
	}

	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build(zap.Fields(
		zap.String("service", serviceName),
		zap.String("env", cfg.Env),
	))
}

// Option tunes GinMiddleware.
type Option func(*middlewareOptions)

type middlewareOptions struct {
	skip   map[string]struct{}
	fields []func(*gin.Context) []zap.Field
}

// SkipPaths drops access lines for probe and scrape endpoints.
func SkipPaths(paths ...string) Option {
	return func(o *middlewareOptions) {
		for _, p := range paths {
			o.skip[p] = struct{}{}
		}
	}
}

// WithFields appends caller supplied fields, read after the handler ran.
func WithFields(fn func(*gin.Context) []zap.Field) Option {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.fields = append(o.fields, fn)
		}
	}
}

// GinMiddleware logs one line per request; 4xx at warn and 5xx at error level.
// Event streams are logged once when they close.
func GinMiddleware(l *zap.Logger, opts ...Option) gin.HandlerFunc {
	o := middlewareOptions{skip: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		if _, ok := o.skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		msg := "http_request"
		if strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream") {
			msg = "stream_closed"
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("ip", c.ClientIP()),
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		for _, fn := range o.fields {
			fields = append(fields, fn(c)...)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			l.Error(msg, fields...)
		case status >= 400:
			l.Warn(msg, fields...)
		default:
			l.Info(msg, fields...)
		}
	}
}
