package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/invariant"
	"github.com/roach88/undoable/internal/list"
	"github.com/roach88/undoable/internal/model"
	"github.com/roach88/undoable/internal/object"
)

// OpClose labels the events fired when the factory is closed after the
// last step.
const OpClose = "close"

// Option configures Run.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	observers []history.Observer
	onFactory func(*object.Factory)
}

// WithLogger sets the logger for the run and its factory.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver attaches o to the history of the run.
func WithObserver(o history.Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithFactoryHook calls fn with the fresh factory before the first step.
func WithFactoryHook(fn func(*object.Factory)) Option {
	return func(c *config) {
		c.onFactory = fn
	}
}

// runner executes the steps of one scenario.
type runner struct {
	factory *object.Factory
	history *history.History
	rec     *model.Recorder
	clock   history.Clock
	items   map[string]*model.Item
	result  *Result
	logger  *slog.Logger

	// mark is the recorder position at the last expect step.
	mark int
}

// Run executes a scenario against a fresh factory and returns its result.
//
// Failed expectations and precondition panics are reported in the result.
// The returned error is reserved for scenarios that cannot run, such as a
// step naming an item that was never created.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	var hopts []history.Option
	for _, o := range cfg.observers {
		hopts = append(hopts, history.WithObserver(o))
	}
	f := object.NewFactory(
		object.WithLogger(cfg.logger),
		object.WithIDGenerator(object.NewSequentialGenerator("item")),
		object.WithHistoryOptions(hopts...),
	)
	if cfg.onFactory != nil {
		cfg.onFactory(f)
	}

	r := &runner{
		factory: f,
		history: f.History(),
		rec:     &model.Recorder{},
		items:   make(map[string]*model.Item),
		result:  NewResult(s.Name),
		logger:  cfg.logger.With("scenario", s.Name),
	}

	r.logger.Debug("scenario started", "steps", len(s.Steps))
	err := r.runSteps(s.Steps)

	r.result.UndoDepth = r.history.UndoDepth()
	r.result.RedoDepth = r.history.RedoDepth()
	r.result.Live = f.Len()

	pos := r.rec.Len()
	if perr := invariant.Recover(f.Close); perr != nil {
		r.result.AddError("close: %s", perr.Error())
	}
	r.trace(len(s.Steps)+1, OpClose, pos)

	if err != nil {
		return nil, err
	}
	r.logger.Debug("scenario finished",
		"pass", r.result.Pass,
		"errors", len(r.result.Errors),
		"events", len(r.result.Trace),
	)
	return r.result, nil
}

func (r *runner) runSteps(steps []Step) error {
	for i, st := range steps {
		n := i + 1
		pos := r.rec.Len()

		var stepErr error
		perr := invariant.Recover(func() { stepErr = r.apply(n, st) })
		r.trace(n, st.Op, pos)
		r.result.Steps = n

		if stepErr != nil {
			return fmt.Errorf("step %d (%s): %w", n, st.Op, stepErr)
		}
		switch {
		case st.Panics != "" && perr == nil:
			r.result.AddError("step %d (%s): expected %s, step completed", n, st.Op, st.Panics)
		case st.Panics != "" && string(perr.Code) != st.Panics:
			r.result.AddError("step %d (%s): expected %s, got %s", n, st.Op, st.Panics, perr.Code)
		case st.Panics == "" && perr != nil:
			r.result.AddError("step %d (%s): %s", n, st.Op, perr.Error())
			r.logger.Debug("scenario stopped", "step", n, "code", string(perr.Code))
			return nil
		}

		r.logger.Debug("step executed",
			"step", n,
			"op", st.Op,
			"events", r.rec.Len()-pos,
		)
	}
	return nil
}

// trace appends the events recorded since pos.
func (r *runner) trace(step int, op string, pos int) {
	for _, ev := range r.rec.Since(pos) {
		r.result.Trace = append(r.result.Trace, TraceEvent{
			Seq:   r.clock.Next(),
			Step:  step,
			Op:    op,
			Event: ev.String(),
		})
	}
}

func (r *runner) apply(n int, st Step) error {
	switch st.Op {
	case OpCreate:
		for _, key := range st.Items {
			if _, ok := r.items[key]; ok {
				return fmt.Errorf("item %q already exists", key)
			}
			r.items[key] = model.New(r.factory, r.rec, key)
		}
		return nil
	case OpSet:
		return r.set(st)
	case OpLink:
		return r.link(st)
	case OpUnlink:
		it, err := r.item(st.Item)
		if err != nil {
			return err
		}
		switch st.Prop {
		case model.PropChildren:
			it.ChildNode.Unlink()
		case model.PropLinks:
			it.LinkNode.Unlink()
		default:
			return notAList(st.Prop)
		}
		return nil
	case OpRemove:
		return r.remove(st)
	case OpClear:
		it, err := r.item(st.Item)
		if err != nil {
			return err
		}
		switch st.Prop {
		case model.PropChildren:
			it.Children.Clear()
		case model.PropLinks:
			it.Links.Clear()
		default:
			return notAList(st.Prop)
		}
		return nil
	case OpRef:
		return r.ref(st)
	case OpDestroy:
		it, err := r.item(st.Item)
		if err != nil {
			return err
		}
		it.Destroy()
		return nil
	case OpCommit:
		r.history.Commit()
		return nil
	case OpUnstage:
		r.history.Unstage()
		return nil
	case OpUndo:
		r.history.Undo()
		return nil
	case OpRedo:
		r.history.Redo()
		return nil
	case OpReset:
		r.history.Clear()
		return nil
	case OpExpect:
		return r.expect(n, st)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

// item looks up a live item. Finalized items cannot be mutated.
func (r *runner) item(key string) (*model.Item, error) {
	it, ok := r.items[key]
	if !ok {
		return nil, fmt.Errorf("unknown item %q", key)
	}
	if it.IsDestructing() {
		return nil, fmt.Errorf("item %q has been finalized", key)
	}
	return it, nil
}

func (r *runner) set(st Step) error {
	it, err := r.item(st.Item)
	if err != nil {
		return err
	}
	if st.Value == nil {
		return fmt.Errorf("set requires a value")
	}
	switch st.Prop {
	case model.PropName:
		it.Name.Set(*st.Value)
	case model.PropWeight:
		w, err := strconv.Atoi(*st.Value)
		if err != nil {
			return fmt.Errorf("weight: %w", err)
		}
		it.Weight.Set(w)
	default:
		return fmt.Errorf("%q is not a scalar property", st.Prop)
	}
	return nil
}

func (r *runner) link(st Step) error {
	owner, err := r.item(st.Item)
	if err != nil {
		return err
	}
	target, err := r.item(st.Target)
	if err != nil {
		return err
	}
	var before *model.Item
	if st.Before != "" {
		if before, err = r.item(st.Before); err != nil {
			return err
		}
	}

	switch st.Prop {
	case model.PropChildren:
		return linkInto(&owner.Children.List, &target.ChildNode, childNode(before), st)
	case model.PropLinks:
		return linkInto(&owner.Links, &target.LinkNode, linkNode(before), st)
	default:
		return notAList(st.Prop)
	}
}

func (r *runner) remove(st Step) error {
	owner, err := r.item(st.Item)
	if err != nil {
		return err
	}
	target, err := r.item(st.Target)
	if err != nil {
		return err
	}
	switch st.Prop {
	case model.PropChildren:
		l := &owner.Children
		l.Remove(l.Find(&target.ChildNode))
	case model.PropLinks:
		l := &owner.Links
		l.Remove(l.Find(&target.LinkNode))
	default:
		return notAList(st.Prop)
	}
	return nil
}

func (r *runner) ref(st Step) error {
	owner, err := r.item(st.Item)
	if err != nil {
		return err
	}
	var target *model.Item
	if st.Target != "" {
		if target, err = r.item(st.Target); err != nil {
			return err
		}
	}
	switch st.Prop {
	case model.PropNext:
		owner.Next.Set(target)
	case model.PropOwned:
		owner.Owned.Set(target)
	default:
		return fmt.Errorf("%q is not a reference property", st.Prop)
	}
	return nil
}

// expect checks the step's expectations. Mismatches are recorded in the
// result; only an unknown item is an error.
func (r *runner) expect(n int, st Step) error {
	if st.Item != "" {
		it, ok := r.items[st.Item]
		if !ok {
			return fmt.Errorf("unknown item %q", st.Item)
		}
		if st.Status != "" && it.Status().String() != st.Status {
			r.result.AddError("step %d: %s status: expected %s, got %s", n, st.Item, st.Status, it.Status())
		}
		if st.Value != nil {
			if got := it.Describe(st.Prop); got != *st.Value {
				r.result.AddError("step %d: %s.%s: expected %q, got %q", n, st.Item, st.Prop, *st.Value, got)
			}
		}
	}

	if st.Events != nil {
		got := []string{}
		for _, ev := range r.rec.Since(r.mark) {
			got = append(got, ev.String())
		}
		if !slices.Equal(got, st.Events) {
			r.result.AddError("step %d: events: expected %q, got %q", n, st.Events, got)
		}
	}
	r.mark = r.rec.Len()

	r.expectCount(n, "undo_depth", st.UndoDepth, r.history.UndoDepth())
	r.expectCount(n, "redo_depth", st.RedoDepth, r.history.RedoDepth())
	r.expectCount(n, "staged", st.Staged, r.history.Staged())
	r.expectCount(n, "live", st.Live, r.factory.Len())
	return nil
}

func (r *runner) expectCount(n int, what string, want *int, got int) {
	if want != nil && *want != got {
		r.result.AddError("step %d: %s: expected %d, got %d", n, what, *want, got)
	}
}

func notAList(prop string) error {
	return fmt.Errorf("%q is not a list property", prop)
}

// linkInto links n into l before the member at before, at the front, or at
// the back. before is located in whatever list holds it, so naming a
// member of another list fails with FOREIGN_ITERATOR.
func linkInto[Tag any](l *list.List[*model.Item, Tag], n, before *list.Node[*model.Item, Tag], st Step) error {
	switch {
	case before != nil:
		if !before.IsLinked() {
			return fmt.Errorf("before %q is not linked", st.Before)
		}
		l.LinkAt(before.List().Find(before), n)
	case st.Front:
		l.LinkFront(n)
	default:
		l.LinkBack(n)
	}
	return nil
}

func childNode(it *model.Item) *list.Node[*model.Item, model.ChildTag] {
	if it == nil {
		return nil
	}
	return &it.ChildNode
}

func linkNode(it *model.Item) *list.Node[*model.Item, model.LinkTag] {
	if it == nil {
		return nil
	}
	return &it.LinkNode
}
