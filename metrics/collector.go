package metrics

import (
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

// Branch label values for the generated counter.
const (
	branchTickForward = "tick_forward"
	branchSameTick    = "same_tick"
)

// GeneratorCollector exports generation events as Prometheus counters.
// Attach it to a generator with uuidv7.WithRecorder.
type GeneratorCollector struct {
	generated       *CounterVec
	overflows       Counter
	regressions     Counter
	entropyFailures Counter
}

var _ uuidv7.Recorder = (*GeneratorCollector)(nil)

// NewGeneratorCollector creates the generation metrics under the uuidv7
// namespace and registers them with the package Registerer.
func NewGeneratorCollector() *GeneratorCollector {
	return &GeneratorCollector{
		generated: NewCounterVec(CounterOpts{
			Namespace: "uuidv7",
			Name:      "generated_total",
			Help:      "Identifiers produced, partitioned by generation branch.",
		}, []string{"branch"}),
		overflows: NewCounter(CounterOpts{
			Namespace: "uuidv7",
			Name:      "counter_overflows_total",
			Help:      "Counter wraps that advanced the stored timestamp past the clock.",
		}),
		regressions: NewCounter(CounterOpts{
			Namespace: "uuidv7",
			Name:      "clock_regressions_total",
			Help:      "Clock readings strictly older than the stored timestamp.",
		}),
		entropyFailures: NewCounter(CounterOpts{
			Namespace: "uuidv7",
			Name:      "entropy_failures_total",
			Help:      "Generation attempts aborted because the random source failed.",
		}),
	}
}

// Generated implements uuidv7.Recorder.
func (c *GeneratorCollector) Generated(fresh bool) {
	if fresh {
		c.generated.WithLabelValues(branchTickForward).Inc()
		return
	}
	c.generated.WithLabelValues(branchSameTick).Inc()
}

// CounterOverflow implements uuidv7.Recorder.
func (c *GeneratorCollector) CounterOverflow() {
	c.overflows.Inc()
}

// ClockRegression implements uuidv7.Recorder.
func (c *GeneratorCollector) ClockRegression() {
	c.regressions.Inc()
}

// EntropyFailure implements uuidv7.Recorder.
func (c *GeneratorCollector) EntropyFailure() {
	c.entropyFailures.Inc()
}
