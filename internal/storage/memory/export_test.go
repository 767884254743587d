package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skyward/deconflict/internal/config"
	"github.com/skyward/deconflict/pkg/core"
)

func exportFixture(t *testing.T, b *Backend) {
	t.Helper()

	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	summary := core.RunSummary{
		StartedAt:      t0,
		Duration:       250 * time.Millisecond,
		SafetyDistance: 20,
		SampleSteps:    10,
		MissionCount:   2,
		PairCount:      1,
		ConflictCount:  1,
	}

	if err := b.BeginRun(summary); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	m1 := core.NewMission("Drone1")
	m1.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 0, Y: 100, Z: 15}, Time: t0})
	m1.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 200, Y: 100, Z: 15}, Time: t0.Add(2 * time.Minute)})

	m2 := core.NewMission("Drone2")
	m2.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 200, Y: 100, Z: 15}, Time: t0})
	m2.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 0, Y: 100, Z: 15}, Time: t0.Add(2 * time.Minute)})

	_ = b.AddMission(m1)
	_ = b.AddMission(m2)
	_ = b.RecordConflict(core.Conflict{
		DroneA:   "Drone1",
		DroneB:   "Drone2",
		Location: core.Position3D{X: 100, Y: 100, Z: 15},
		Time:     t0.Add(time.Minute),
		Reason:   core.ReasonProximity,
	})

	if err := b.EndRun(summary); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}
}

func TestBuildExport(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	exportFixture(t, b)

	b.mu.RLock()
	export := b.buildExport()
	b.mu.RUnlock()

	if export.MissionCount != 2 {
		t.Errorf("expected 2 missions, got %d", export.MissionCount)
	}
	if len(export.Missions) != 2 {
		t.Fatalf("expected 2 mission entries, got %d", len(export.Missions))
	}
	if export.Missions[0].DroneID != "Drone1" {
		t.Errorf("expected first mission Drone1, got %s", export.Missions[0].DroneID)
	}
	if len(export.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict entry, got %d", len(export.Conflicts))
	}

	c := export.Conflicts[0]
	if c.X != 100 || c.Y != 100 || c.Z != 15 {
		t.Errorf("unexpected conflict location (%v, %v, %v)", c.X, c.Y, c.Z)
	}
	if c.Time != "2025-04-02 10:01:00" {
		t.Errorf("unexpected conflict time %q", c.Time)
	}
	if c.Reason != "Spatial proximity" {
		t.Errorf("unexpected reason %q", c.Reason)
	}
	if export.StartedAt != "2025-04-02 10:00:00" {
		t.Errorf("unexpected startedAt %q", export.StartedAt)
	}
	if export.DurationMs != 250 {
		t.Errorf("unexpected durationMs %v", export.DurationMs)
	}
}

func TestExportPlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	exportFixture(t, b)

	path := b.GetExportedFilePath()
	if path == "" {
		t.Fatal("no exported file path")
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("expected .json suffix, got %s", path)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("export written outside output dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var export RunExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("unmarshalling export: %v", err)
	}
	if len(export.Conflicts) != 1 {
		t.Errorf("expected 1 conflict in file, got %d", len(export.Conflicts))
	}
}

func TestExportGzipJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	exportFixture(t, b)

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected .json.gz suffix, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("opening gzip reader: %v", err)
	}
	defer gz.Close()

	var export RunExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if export.MissionCount != 2 {
		t.Errorf("expected 2 missions in file, got %d", export.MissionCount)
	}
}

func TestExportCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	b := New(config.MemoryConfig{OutputDir: dir})
	exportFixture(t, b)

	if _, err := os.Stat(b.GetExportedFilePath()); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}
