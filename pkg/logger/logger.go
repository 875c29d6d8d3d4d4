package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithSessionUID adds session UID to logger context
func (l *Logger) WithSessionUID(sessionUID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("session_uid", sessionUID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Inventory logging methods

// LogSeatTransition logs a successful seat state transition
func (l *Logger) LogSeatTransition(ctx context.Context, eventSeatingID, seatUID, from, to string, newVersion int64) {
	l.Logger.InfoContext(ctx,
		"Seat Transition",
		slog.String("event_seating_id", eventSeatingID),
		slog.String("seat_uid", seatUID),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int64("new_version", newVersion),
	)
}

// LogHoldCreated logs when a batch of seats is held
func (l *Logger) LogHoldCreated(ctx context.Context, eventSeatingID, sessionUID string, seatCount int, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Hold Created",
		slog.String("event_seating_id", eventSeatingID),
		slog.String("session_uid", sessionUID),
		slog.Int("seat_count", seatCount),
		slog.Time("expires_at", expiresAt),
	)
}

// LogPurchaseConfirmed logs a confirmed purchase
func (l *Logger) LogPurchaseConfirmed(ctx context.Context, eventSeatingID, sessionUID, token string, seatCount int, totalPriceCents int64) {
	l.Logger.InfoContext(ctx,
		"Purchase Confirmed",
		slog.String("event_seating_id", eventSeatingID),
		slog.String("session_uid", sessionUID),
		slog.String("idempotency_token", token),
		slog.Int("seat_count", seatCount),
		slog.Int64("total_price_cents", totalPriceCents),
	)
}

// LogReaperSweep logs the result of a reaper sweep
func (l *Logger) LogReaperSweep(ctx context.Context, reclaimed, deleted int, duration time.Duration) {
	l.Logger.InfoContext(ctx,
		"Reaper Sweep",
		slog.Int("reclaimed", reclaimed),
		slog.Int("deleted", deleted),
		slog.Duration("duration", duration),
	)
}

// LogSoldSeatWithLiveHold flags the anomaly of a sold seat still carrying a
// live hold row. This indicates a bug and must be alerted on, never ignored.
func (l *Logger) LogSoldSeatWithLiveHold(ctx context.Context, eventSeatingID, seatUID, sessionUID string, expiresAt time.Time) {
	l.Logger.ErrorContext(ctx,
		"ALERT: sold seat has live hold row",
		slog.String("event_seating_id", eventSeatingID),
		slog.String("seat_uid", seatUID),
		slog.String("session_uid", sessionUID),
		slog.Time("hold_expires_at", expiresAt),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.DebugContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
