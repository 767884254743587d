package detector

import (
	"golang.org/x/sync/errgroup"

	"github.com/skyward/deconflict/pkg/core"
)

// detectParallel evaluates mission pairs on a bounded goroutine pool.
// Each pair owns its own accumulator; results are concatenated in pair
// index order afterwards, so the output is byte-for-byte the same as the
// sequential pass. Missions are only read, never mutated, so the workers
// share them without locking.
func (d *Detector) detectParallel(missions []core.Mission, pairs []pair, minSeparation float64) []core.Conflict {
	perPair := make([][]core.Conflict, len(pairs))

	var g errgroup.Group
	g.SetLimit(d.cfg.parallelism)

	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			perPair[i] = d.detectPair(&missions[p.a], &missions[p.b], minSeparation)
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	var conflicts []core.Conflict
	for _, cs := range perPair {
		conflicts = append(conflicts, cs...)
	}
	return conflicts
}
