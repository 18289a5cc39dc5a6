package object

import (
	"io"
	"iter"
	"log/slog"

	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/invariant"
)

// Factory is the arena binding a group of objects to one History. It keeps
// every object that has not been finalized on a live list, in creation
// order.
//
// A Factory and its objects must be used from a single goroutine.
type Factory struct {
	history *history.History
	logger  *slog.Logger
	ids     IDGenerator

	head   membership
	count  int
	closed bool
}

// FactoryOption configures a Factory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	logger      *slog.Logger
	ids         IDGenerator
	historyOpts []history.Option
}

// WithLogger sets the logger used by the factory and its history.
func WithLogger(logger *slog.Logger) FactoryOption {
	return func(c *factoryConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator sets the generator for object IDs. Default is
// UUIDv7Generator.
func WithIDGenerator(g IDGenerator) FactoryOption {
	return func(c *factoryConfig) {
		if g != nil {
			c.ids = g
		}
	}
}

// WithHistoryOptions passes options through to history.New.
func WithHistoryOptions(opts ...history.Option) FactoryOption {
	return func(c *factoryConfig) {
		c.historyOpts = append(c.historyOpts, opts...)
	}
}

// NewFactory creates a factory with an empty history.
func NewFactory(opts ...FactoryOption) *Factory {
	cfg := factoryConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := append([]history.Option{history.WithLogger(cfg.logger)}, cfg.historyOpts...)
	f := &Factory{
		history: history.New(hopts...),
		logger:  cfg.logger,
		ids:     cfg.ids,
	}
	f.head.next = &f.head
	f.head.prev = &f.head
	return f
}

// History returns the history every object of the factory is bound to.
func (f *Factory) History() *history.History {
	return f.history
}

// Len returns the number of objects not yet finalized, destroyed ones
// included.
func (f *Factory) Len() int {
	return f.count
}

// Closed reports whether Close has been called.
func (f *Factory) Closed() bool {
	return f.closed
}

// Objects iterates the objects not yet finalized, in creation order.
func (f *Factory) Objects() iter.Seq[Tracked] {
	return func(yield func(Tracked) bool) {
		for m := f.head.next; m != &f.head; {
			next := m.next
			if !yield(m.obj.self) {
				return
			}
			m = next
		}
	}
}

// Create allocates a T, runs init to bind its properties and stages its
// creation. init may be nil. init may set values on the new object, which
// apply directly and are not recorded. Linking the new object into lists or
// references of live objects is recorded with the creation; changing the new
// object's own lists or references panics with LINK_WHILE_CONSTRUCTING.
//
// The new object is Created when Create returns; unstaging the creation
// destroys and then finalizes it.
func Create[T any, PT interface {
	*T
	Tracked
}](f *Factory, init func(PT)) PT {
	invariant.Check(!f.closed, invariant.CodeFactoryClosed, "factory is closed")

	obj := PT(new(T))
	b := obj.base()
	b.self = obj
	b.factory = f
	b.id = f.ids.NewID()
	b.status = StatusConstructing
	f.add(b)

	if init != nil {
		init(obj)
	}

	b.history = f.history
	f.history.Stage(&statusChange{obj: b, create: true})
	return obj
}

// Close discards the whole history, finalizing every object whose destroy
// is dropped, then finalizes whatever is still live. OnDestroy is not called
// for objects finalized this way; OnDestruct is. Close is idempotent and the
// factory cannot create objects afterwards.
func (f *Factory) Close() {
	if f.closed {
		return
	}
	f.closed = true

	before := f.count
	f.history.Clear()
	discarded := before - f.count

	forced := 0
	for f.head.next != &f.head {
		f.head.next.obj.destruct()
		forced++
	}

	f.logger.Debug("factory closed",
		"finalized_by_history", discarded,
		"finalized_live", forced,
	)
}

func (f *Factory) add(b *Base) {
	m := &b.live
	m.obj = b
	m.prev = f.head.prev
	m.next = &f.head
	f.head.prev.next = m
	f.head.prev = m
	f.count++
}

func (f *Factory) remove(b *Base) {
	m := &b.live
	if m.next == nil {
		return
	}
	m.prev.next = m.next
	m.next.prev = m.prev
	m.next, m.prev = nil, nil
	f.count--
}
