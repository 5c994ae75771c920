package fauna

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Logger is used by the [fauna.Client] for responses and by [fauna.Decode]
// and [fauna.DecodePage] to report payloads replaced by a zero value.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	LogResponse(ctx context.Context, requestBody []byte, r *http.Response)
}

// ClientLogger is the [fauna.Logger] returned by [fauna.DefaultLogger]. The
// zero value discards everything.
type ClientLogger struct {
	Logger

	logger *slog.Logger
}

// NewClientLogger wraps a [slog.Logger].
func NewClientLogger(logger *slog.Logger) ClientLogger {
	return ClientLogger{logger: logger}
}

func (d ClientLogger) log(level slog.Level, msg string, args ...any) {
	if d.logger == nil {
		return
	}

	d.logger.Log(context.Background(), level, msg, args...)
}

func (d ClientLogger) Debug(msg string, args ...any) { d.log(slog.LevelDebug, msg, args...) }
func (d ClientLogger) Info(msg string, args ...any)  { d.log(slog.LevelInfo, msg, args...) }
func (d ClientLogger) Warn(msg string, args ...any)  { d.log(slog.LevelWarn, msg, args...) }
func (d ClientLogger) Error(msg string, args ...any) { d.log(slog.LevelError, msg, args...) }

// LogResponse logs one query round trip at info, adding the request body
// when debug is enabled. The secret is never logged.
func (d ClientLogger) LogResponse(ctx context.Context, requestBody []byte, r *http.Response) {
	if d.logger == nil {
		return
	}

	level := slog.LevelInfo
	if r.StatusCode >= http.StatusBadRequest {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("url", r.Request.URL.String()),
		slog.Int("status", r.StatusCode),
		slog.Int64("content_length", r.ContentLength),
		slog.Any("headers", redactedHeaders(r.Request.Header)),
	}
	if d.logger.Enabled(ctx, slog.LevelDebug) {
		attrs = append(attrs, slog.String("request_body", string(requestBody)))
	}

	d.logger.LogAttrs(ctx, level, "query response", attrs...)
}

func redactedHeaders(h http.Header) http.Header {
	headers := h.Clone()
	if _, found := headers[headerAuthorization]; found {
		headers[headerAuthorization] = []string{"hidden"}
	}

	return headers
}

// DefaultLogger returns a logger writing JSON to stdout when FAUNA_DEBUG
// holds a slog level, either a number ("-4", "0") or a name ("debug",
// "warn"), and a silent one otherwise.
func DefaultLogger() Logger {
	val, found := os.LookupEnv(EnvFaunaDebug)
	if !found {
		return ClientLogger{}
	}

	level, ok := parseLevel(val)
	if !ok {
		return ClientLogger{}
	}

	return NewClientLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

func parseLevel(val string) (slog.Level, bool) {
	val = strings.TrimSpace(val)
	if n, err := strconv.Atoi(val); err == nil {
		return slog.Level(n), n >= int(slog.LevelDebug)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(val)); err != nil {
		return 0, false
	}

	return level, true
}
