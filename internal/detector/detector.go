// Package detector implements pairwise spatial-temporal conflict detection
// over planned drone missions. The search is deliberately brute force: every
// unordered mission pair, every pair of their segments, time-sampled inside
// the segments' overlap window. Correctness over scalability — intended for
// fleets of tens of missions.
package detector

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/skyward/deconflict/pkg/core"
)

// DefaultSampleSteps is the number of equal sub-intervals an overlap window
// is divided into, giving DefaultSampleSteps+1 inclusive sample instants.
const DefaultSampleSteps = 10

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// TraceFunc observes every sampled instant during detection. It replaces
// the ambient process-wide logger a naive implementation would thread
// through the sampling loop; pass nil to disable tracing.
type TraceFunc func(droneA, droneB string, at time.Time, distance float64)

// Option configures a Detector.
type Option func(*config)

type config struct {
	sampleSteps int
	parallelism int
	trace       TraceFunc
}

// WithSampleSteps sets the number of sub-intervals per overlap window.
// Values below 1 fall back to the default.
func WithSampleSteps(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.sampleSteps = n
		}
	}
}

// WithParallelism evaluates mission pairs on up to n goroutines.
// Results are identical to the sequential pass, including order.
func WithParallelism(n int) Option {
	return func(c *config) {
		if n > 1 {
			c.parallelism = n
		}
	}
}

// WithTrace installs a sample observer.
func WithTrace(fn TraceFunc) Option {
	return func(c *config) {
		c.trace = fn
	}
}

// Detector finds proximity conflicts between missions. It is read-only
// over its inputs and safe for concurrent use.
type Detector struct {
	cfg    config
	logger Logger

	// OTEL metrics
	pairsChecked   metric.Int64Counter
	windowsSampled metric.Int64Counter
	conflictsFound metric.Int64Counter
}

// New creates a Detector with the given logger and options.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger, opts ...Option) (*Detector, error) {
	cfg := config{sampleSteps: DefaultSampleSteps}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Detector{
		cfg:    cfg,
		logger: logger,
	}

	m := meter()

	var err error

	d.pairsChecked, err = m.Int64Counter(
		"detector.pairs.checked",
		metric.WithDescription("Total mission pairs examined"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pairs counter: %w", err)
	}

	d.windowsSampled, err = m.Int64Counter(
		"detector.windows.sampled",
		metric.WithDescription("Total overlapping segment-pair windows sampled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating windows counter: %w", err)
	}

	d.conflictsFound, err = m.Int64Counter(
		"detector.conflicts.found",
		metric.WithDescription("Total conflicts emitted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating conflicts counter: %w", err)
	}

	return d, nil
}

// SampleSteps returns the configured sub-interval count.
func (d *Detector) SampleSteps() int {
	return d.cfg.sampleSteps
}

// Detect reports every sampled instant and location where two missions come
// closer than minSeparation. At most one conflict is recorded per
// (mission-pair, segment-pair) combination: sampling of a window stops at
// the first violation so adjacent sample instants do not produce duplicates.
//
// Missions with fewer than 2 waypoints contribute no segments and are
// silently skipped; non-monotonic waypoint times degrade to empty overlap
// windows. Detect never fails.
//
// The returned slice is ordered: pair order (input index) first, then
// segment order within the pair, then sample order.
func (d *Detector) Detect(missions []core.Mission, minSeparation float64) []core.Conflict {
	pairs := enumeratePairs(len(missions))

	var conflicts []core.Conflict
	if d.cfg.parallelism > 1 {
		conflicts = d.detectParallel(missions, pairs, minSeparation)
	} else {
		for _, p := range pairs {
			conflicts = append(conflicts, d.detectPair(&missions[p.a], &missions[p.b], minSeparation)...)
		}
	}

	ctx := context.Background()
	d.pairsChecked.Add(ctx, int64(len(pairs)))
	d.conflictsFound.Add(ctx, int64(len(conflicts)))

	return conflicts
}

// pair is an unordered mission pair, held as input indices with a < b.
type pair struct {
	a, b int
}

func enumeratePairs(n int) []pair {
	var pairs []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{a: i, b: j})
		}
	}
	return pairs
}

// detectPair runs the segment-pair search for one mission pair.
func (d *Detector) detectPair(ma, mb *core.Mission, minSeparation float64) []core.Conflict {
	if d.logger != nil {
		d.logger.Debug("Checking mission pair", "droneA", ma.DroneID, "droneB", mb.DroneID)
	}

	var conflicts []core.Conflict
	ctx := context.Background()

	for _, sa := range ma.Segments() {
		for _, sb := range mb.Segments() {
			// Overlap window: both segments active between these instants.
			start := maxTime(sa.Start.Time, sb.Start.Time)
			end := minTime(sa.End.Time, sb.End.Time)
			if !start.Before(end) {
				continue
			}

			d.windowsSampled.Add(ctx, 1)

			if c, found := d.sampleWindow(ma, mb, sa, sb, start, end, minSeparation); found {
				conflicts = append(conflicts, c)
			}
		}
	}

	return conflicts
}

// sampleWindow discretizes [start, end] into sampleSteps equal sub-intervals
// (sampleSteps+1 inclusive instants) and returns the first violation found.
// A zero-duration window cannot occur given the strict overlap test above,
// but if it did it degrades to a single sample at start.
func (d *Detector) sampleWindow(ma, mb *core.Mission, sa, sb core.Segment, start, end time.Time, minSeparation float64) (core.Conflict, bool) {
	steps := d.cfg.sampleSteps
	window := end.Sub(start)
	if window == 0 {
		steps = 0
	}

	for step := 0; step <= steps; step++ {
		at := start
		if steps > 0 {
			at = start.Add(time.Duration(step) * window / time.Duration(steps))
		}

		posA := sa.PositionAt(at)
		posB := sb.PositionAt(at)
		dist := posA.DistanceTo(posB)

		if d.cfg.trace != nil {
			d.cfg.trace(ma.DroneID, mb.DroneID, at, dist)
		}

		if dist < minSeparation {
			// One conflict per segment pair; later samples in this window
			// would only duplicate it.
			return core.Conflict{
				DroneA:   ma.DroneID,
				DroneB:   mb.DroneID,
				Location: posA,
				Time:     at,
				Reason:   core.ReasonProximity,
			}, true
		}
	}

	return core.Conflict{}, false
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
