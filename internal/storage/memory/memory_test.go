package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/skyward/deconflict/internal/config"
	"github.com/skyward/deconflict/pkg/core"
)

func testSummary() core.RunSummary {
	return core.RunSummary{
		StartedAt:      time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
		SafetyDistance: 20,
		SampleSteps:    10,
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestBeginRunResetsCollections(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.BeginRun(testSummary()); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	m := core.NewMission("Drone1")
	_ = b.AddMission(m)
	_ = b.RecordConflict(core.Conflict{DroneA: "Drone1", DroneB: "Drone2"})

	if b.MissionCount() != 1 {
		t.Errorf("expected 1 mission, got %d", b.MissionCount())
	}
	if len(b.Conflicts()) != 1 {
		t.Errorf("expected 1 conflict, got %d", len(b.Conflicts()))
	}

	if err := b.BeginRun(testSummary()); err != nil {
		t.Fatalf("second BeginRun failed: %v", err)
	}

	if b.MissionCount() != 0 {
		t.Errorf("expected missions reset, got %d", b.MissionCount())
	}
	if len(b.Conflicts()) != 0 {
		t.Errorf("expected conflicts reset, got %d", len(b.Conflicts()))
	}
}

func TestEndRunWithoutBeginFails(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.EndRun(testSummary()); err == nil {
		t.Error("expected error from EndRun without BeginRun")
	}
}

func TestConflictsReturnsCopy(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.BeginRun(testSummary())
	_ = b.RecordConflict(core.Conflict{DroneA: "Drone1", DroneB: "Drone2"})

	got := b.Conflicts()
	got[0].DroneA = "mutated"

	if b.Conflicts()[0].DroneA != "Drone1" {
		t.Error("Conflicts should return a copy, not the internal slice")
	}
}

func TestConcurrentRecording(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.BeginRun(testSummary())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = b.AddMission(core.NewMission("DroneX"))
		}()
		go func() {
			defer wg.Done()
			_ = b.RecordConflict(core.Conflict{DroneA: "Drone1", DroneB: "Drone2"})
		}()
	}
	wg.Wait()

	if b.MissionCount() != 10 {
		t.Errorf("expected 10 missions, got %d", b.MissionCount())
	}
	if len(b.Conflicts()) != 10 {
		t.Errorf("expected 10 conflicts, got %d", len(b.Conflicts()))
	}
}
