package client

import (
	"context"
	"time"

	"github.com/satishbabariya/querykit/internal/debug"
)

// QueryEvent carries a statement through the middleware chain. Start is set
// before the first middleware runs; Duration and Err are filled in once the
// statement has executed, so they are only meaningful after next() returns.
type QueryEvent struct {
	SQL      string
	Bindings []any
	Start    time.Time
	Duration time.Duration
	Err      error
}

// Middleware intercepts a statement. Call next to run the rest of the chain
// and the statement itself; skipping next skips execution.
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// Use appends a middleware to the chain. Middlewares run in the order they
// were added.
func (c *Client) Use(middleware Middleware) {
	c.middlewares = append(c.middlewares, middleware)
}

func (c *Client) runMiddleware(ctx context.Context, event *QueryEvent, exec func() error) error {
	if len(c.middlewares) == 0 {
		return exec()
	}

	event.Start = time.Now()

	var next func() error
	index := 0

	next = func() error {
		if index >= len(c.middlewares) {
			err := exec()
			event.Duration = time.Since(event.Start)
			event.Err = err
			return err
		}
		middleware := c.middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware logs every statement through the debug logger.
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil {
			debug.Error("query failed", "sql", event.SQL, "error", err)
			return err
		}
		debug.Debug("query", "sql", event.SQL, "bindings", len(event.Bindings), "duration", event.Duration)
		return nil
	}
}

// TimingMiddleware reports how long each statement took.
func TimingMiddleware(onTiming func(sql string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.SQL, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware reports failed statements.
func ErrorMiddleware(onError func(sql string, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.SQL, err)
		}
		return err
	}
}
