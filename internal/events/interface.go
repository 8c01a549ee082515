package events

import (
	"context"
	"time"
)

// Sink receives status text, progress ticks and subscriber updates from the processor.
type Sink interface {
	Status(ctx context.Context, name, message string)
	Progress(ctx context.Context, name string, total, processed int, remaining time.Duration)
	Publish(ctx context.Context, ev Event)
}

// Event is a subscriber update.
type Event interface {
	EventType() string
}
