package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/slammedialab/vercel-siteid/internal/platform/metrics"
	"github.com/slammedialab/vercel-siteid/pkg/requestcontext"
)

// Publisher captures audit events. In async mode Emit never blocks: events go
// through a bounded buffer drained by a Worker, and a full buffer drops the
// event and counts it.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	buffer  int

	mu     sync.RWMutex
	closed bool
	inbox  chan Event
	done   chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.buffer = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.inbox = make(chan Event, p.buffer)
		p.done = make(chan struct{})
		worker := NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = worker.Run(context.Background())
		}()
	}
	return p
}

// Emit fills in id, timestamp and request metadata from ctx, then records
// the event. A nil Publisher discards events.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	event = enrich(ctx, event)

	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit append failed", "action", event.Action, "error", err)
		}
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.inbox <- event:
	default:
		p.metrics.IncrementAuditDropped()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped", "action", event.Action)
	}
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() {
	if p == nil || p.inbox == nil {
		return
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
}

func enrich(ctx context.Context, event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	return event
}
