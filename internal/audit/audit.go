// Package audit publishes reasoning traces for completed searches so
// downstream consumers (compliance review, ranking analysis) can replay
// why the pipeline surfaced what it did.
package audit

import (
	"context"
	"time"
)

// TraceEvent is the durable record of one search's reasoning trace.
type TraceEvent struct {
	RequestID   string    `json:"request_id"`
	Intent      string    `json:"intent"`
	Prompt      string    `json:"prompt"`
	Steps       []string  `json:"steps"`
	ResultCount int       `json:"result_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Publisher emits trace events. Publishing is best-effort: the pipeline
// logs failures but never fails a search over them.
type Publisher interface {
	Publish(ctx context.Context, event TraceEvent) error
	Close() error
}

// NopPublisher discards all events. Used when auditing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TraceEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
