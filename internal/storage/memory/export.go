package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skyward/deconflict/pkg/core"
)

// RunExport is the root JSON structure of an exported detection run.
type RunExport struct {
	StartedAt      string         `json:"startedAt"`
	DurationMs     float64        `json:"durationMs"`
	SafetyDistance float64        `json:"safetyDistance"`
	SampleSteps    int            `json:"sampleSteps"`
	MissionCount   int            `json:"missionCount"`
	PairCount      int            `json:"pairCount"`
	Missions       []MissionJSON  `json:"missions"`
	Conflicts      []ConflictJSON `json:"conflicts"`
}

// MissionJSON represents one drone's trajectory in the export.
type MissionJSON struct {
	DroneID   string          `json:"droneId"`
	Waypoints []core.Waypoint `json:"waypoints"`
}

// ConflictJSON represents one detected conflict in the export.
type ConflictJSON struct {
	DroneA string  `json:"droneA"`
	DroneB string  `json:"droneB"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Time   string  `json:"time"`
	Reason string  `json:"reason"`
}

// exportJSON writes the run data to a (optionally gzipped) JSON file.
// Caller must hold b.mu.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	timestamp := b.run.StartedAt.Format("20060102_150405")
	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("run_%s.json.gz", timestamp)
	} else {
		filename = fmt.Sprintf("run_%s.json", timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RunExport {
	export := RunExport{
		StartedAt:      b.run.StartedAt.Format("2006-01-02 15:04:05"),
		DurationMs:     b.run.Duration.Seconds() * 1000,
		SafetyDistance: b.run.SafetyDistance,
		SampleSteps:    b.run.SampleSteps,
		MissionCount:   len(b.missions),
		PairCount:      b.run.PairCount,
		Missions:       make([]MissionJSON, 0, len(b.missions)),
		Conflicts:      make([]ConflictJSON, 0, len(b.conflicts)),
	}

	for _, m := range b.missions {
		export.Missions = append(export.Missions, MissionJSON{
			DroneID:   m.DroneID,
			Waypoints: m.Waypoints,
		})
	}

	for _, c := range b.conflicts {
		export.Conflicts = append(export.Conflicts, ConflictJSON{
			DroneA: c.DroneA,
			DroneB: c.DroneB,
			X:      c.Location.X,
			Y:      c.Location.Y,
			Z:      c.Location.Z,
			Time:   c.Time.Format("2006-01-02 15:04:05"),
			Reason: c.Reason,
		})
	}

	return export
}

func (b *Backend) writeJSON(path string, export RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

func (b *Backend) writeGzipJSON(path string, export RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	if err := enc.Encode(export); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gz.Close()
}
