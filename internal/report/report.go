// Package report renders detection run results as plain text.
package report

import (
	"fmt"
	"io"

	"github.com/skyward/deconflict/pkg/core"
)

const timeLayout = "2006-01-02 15:04:05"

// Write renders the missions and detected conflicts to w.
func Write(w io.Writer, missions []core.Mission, conflicts []core.Conflict, summary core.RunSummary) error {
	fmt.Fprintf(w, "Detection run %s\n", summary.StartedAt.Format(timeLayout))
	fmt.Fprintf(w, "  safety distance: %g  sample steps: %d\n", summary.SafetyDistance, summary.SampleSteps)
	fmt.Fprintf(w, "  missions: %d  pairs checked: %d\n\n", summary.MissionCount, summary.PairCount)

	fmt.Fprintln(w, "Missions:")
	for _, m := range missions {
		if len(m.Waypoints) == 0 {
			fmt.Fprintf(w, "  %s: no waypoints\n", m.DroneID)
			continue
		}
		first := m.Waypoints[0]
		last := m.Waypoints[len(m.Waypoints)-1]
		fmt.Fprintf(w, "  %s: %d waypoints, %s -> %s\n",
			m.DroneID, len(m.Waypoints),
			first.Time.Format(timeLayout), last.Time.Format(timeLayout))
	}
	fmt.Fprintln(w)

	if len(conflicts) == 0 {
		_, err := fmt.Fprintln(w, "No conflicts detected. Airspace clear.")
		return err
	}

	fmt.Fprintln(w, "Detected Conflicts:")
	for _, c := range conflicts {
		_, err := fmt.Fprintf(w, "  Conflict between %s and %s at (%g, %g, %g) at time %s due to %s\n",
			c.DroneA, c.DroneB,
			c.Location.X, c.Location.Y, c.Location.Z,
			c.Time.Format(timeLayout), c.Reason)
		if err != nil {
			return err
		}
	}
	return nil
}
