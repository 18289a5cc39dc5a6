// Package metrics exports history activity and factory size as Prometheus
// metrics.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/object"
)

const (
	metricsNamespace = "undoable"
	historySubsystem = "history"
	factorySubsystem = "factory"
)

// Collector records history events. It implements history.Observer.
type Collector struct {
	events    *prometheus.CounterVec
	commands  *prometheus.CounterVec
	undoDepth prometheus.Gauge
	redoDepth prometheus.Gauge
	staged    prometheus.Gauge
}

// NewCollector creates a collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: historySubsystem,
				Name:      "events_total",
				Help:      "History operations by kind",
			},
			[]string{"kind"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: historySubsystem,
				Name:      "commands_total",
				Help:      "Commands affected by history operations, by kind",
			},
			[]string{"kind"},
		),
		undoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: historySubsystem,
			Name:      "undo_depth",
			Help:      "Committed transactions available to undo",
		}),
		redoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: historySubsystem,
			Name:      "redo_depth",
			Help:      "Undone transactions available to redo",
		}),
		staged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: historySubsystem,
			Name:      "staged_commands",
			Help:      "Commands in the uncommitted stage",
		}),
	}

	for _, col := range []prometheus.Collector{c.events, c.commands, c.undoDepth, c.redoDepth, c.staged} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register history metrics: %w", err)
		}
	}
	return c, nil
}

// Observe implements history.Observer.
func (c *Collector) Observe(ev history.Event) {
	kind := string(ev.Kind)
	c.events.WithLabelValues(kind).Inc()
	c.commands.WithLabelValues(kind).Add(float64(ev.Commands))
	c.undoDepth.Set(float64(ev.UndoDepth))
	c.redoDepth.Set(float64(ev.RedoDepth))
	c.staged.Set(float64(ev.Staged))
}

// FactoryGauge exports the number of objects the tracked factory has not
// finalized. Tracking nothing reports 0.
type FactoryGauge struct {
	factory *object.Factory
}

// RegisterFactory registers a FactoryGauge tracking f, which may be nil.
func RegisterFactory(reg prometheus.Registerer, f *object.Factory) (*FactoryGauge, error) {
	fg := &FactoryGauge{factory: f}
	g := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: factorySubsystem,
			Name:      "live_objects",
			Help:      "Objects not yet finalized, destroyed ones included",
		},
		fg.value,
	)
	if err := reg.Register(g); err != nil {
		return nil, fmt.Errorf("register factory metrics: %w", err)
	}
	return fg, nil
}

// Track switches the gauge to f.
func (g *FactoryGauge) Track(f *object.Factory) {
	g.factory = f
}

func (g *FactoryGauge) value() float64 {
	if g.factory == nil {
		return 0
	}
	return float64(g.factory.Len())
}

// WriteText writes every metric gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
