package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/internal/observability"
	"github.com/pkordes/reactivities/backend/internal/repo"
)

// Beginner opens a unit of work. repo.Store satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (*repo.UnitOfWork, error)
}

// ListHandler handles ListActivities.
type ListHandler interface {
	Handle(ctx context.Context, uow *repo.UnitOfWork, q ListActivities) ([]domain.Activity, error)
}

// DetailsHandler handles ActivityDetails.
type DetailsHandler interface {
	Handle(ctx context.Context, uow *repo.UnitOfWork, q ActivityDetails) (domain.Activity, error)
}

// EditHandler handles EditActivity.
type EditHandler interface {
	Handle(ctx context.Context, uow *repo.UnitOfWork, c EditActivity) error
}

// Handlers is the handler registry: exactly one handler per request kind.
type Handlers struct {
	List    ListHandler
	Details DetailsHandler
	Edit    EditHandler
}

func (h Handlers) validate() error {
	var missing []Kind
	if h.List == nil {
		missing = append(missing, KindListActivities)
	}
	if h.Details == nil {
		missing = append(missing, KindActivityDetails)
	}
	if h.Edit == nil {
		missing = append(missing, KindEditActivity)
	}
	if len(missing) > 0 {
		return fmt.Errorf("mediator: %w: %v", domain.ErrHandlerNotFound, missing)
	}
	return nil
}

// Dispatcher is the single entry point from the HTTP boundary to the
// handlers. Its registry is fixed at construction, so Send needs no locking.
type Dispatcher struct {
	store    Beginner
	handlers Handlers
	log      *slog.Logger
	metrics  *observability.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for per-dispatch debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics records every dispatch in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New builds a Dispatcher. It returns domain.ErrHandlerNotFound if any
// request kind has no handler, so wiring mistakes stop the process at
// startup.
func New(store Beginner, handlers Handlers, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("mediator: store is required")
	}
	if err := handlers.validate(); err != nil {
		return nil, err
	}
	d := &Dispatcher{store: store, handlers: handlers, log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Send runs req through its handler inside a fresh unit of work and returns
// the handler's result unchanged. The unit of work is released on every
// path. A cancelled ctx is reported as domain.ErrCancelled.
func (d *Dispatcher) Send(ctx context.Context, req Request) (result any, err error) {
	if req == nil {
		return nil, fmt.Errorf("mediator.Dispatcher.Send: %w: nil request", domain.ErrHandlerNotFound)
	}
	kind := req.Kind()
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = domain.Code(err)
		}
		elapsed := time.Since(start)
		d.metrics.ObserveDispatch(string(kind), outcome, elapsed)
		d.log.DebugContext(ctx, "dispatch",
			"kind", kind,
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
		)
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mediator.Dispatcher.Send: %w: %w", domain.ErrCancelled, err)
	}

	uow, err := d.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("mediator.Dispatcher.Send: %w", cancelled(ctx, err))
	}
	defer uow.Release()

	switch r := req.(type) {
	case ListActivities:
		result, err = d.handlers.List.Handle(ctx, uow, r)
	case ActivityDetails:
		result, err = d.handlers.Details.Handle(ctx, uow, r)
	case EditActivity:
		err = d.handlers.Edit.Handle(ctx, uow, r)
	default:
		return nil, fmt.Errorf("mediator.Dispatcher.Send: %w: %T", domain.ErrHandlerNotFound, req)
	}
	if err != nil {
		return nil, fmt.Errorf("mediator.Dispatcher.Send: %w", cancelled(ctx, err))
	}
	return result, nil
}

// cancelled tags err with domain.ErrCancelled when ctx ended while the
// handler ran, whatever the driver reported.
func cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.Is(err, domain.ErrCancelled) {
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}
	return err
}

// Sender is satisfied by *Dispatcher. Consumers depend on it so tests can
// substitute the dispatcher.
type Sender interface {
	Send(ctx context.Context, req Request) (any, error)
}

// SendAs sends req and asserts the result to T.
func SendAs[T any](ctx context.Context, s Sender, req Request) (T, error) {
	var zero T
	res, err := s.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("mediator.SendAs: %s returned %T, want %T", req.Kind(), res, zero)
	}
	return v, nil
}
