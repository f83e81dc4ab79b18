package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"easyplit/pkg/requestcontext"
)

// Publisher appends events to the store, stamping IDs, timestamps, and
// request metadata from the context.
//
// The default is fail-closed: an append failure propagates and the calling
// operation must fail with it. WithFailOpen downgrades failures to a log
// line for events that must never block the user-facing path.
type Publisher struct {
	store    Store
	logger   *slog.Logger
	failOpen bool
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithFailOpen makes append failures non-fatal.
func WithFailOpen() PublisherOption {
	return func(p *Publisher) { p.failOpen = true }
}

// WithPublisherLogger sets the logger used for fail-open reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// NewPublisher creates a Publisher over the given store.
func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records one event. Zero-value fields are filled from the context.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.IPAddress == "" {
		event.IPAddress = requestcontext.ClientIP(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.failOpen {
			p.logger.ErrorContext(ctx, "audit append failed, continuing",
				"action", event.Action,
				"error", err,
			)
			return nil
		}
		return err
	}
	return nil
}
