package vision

import "testing"

func TestVisionSim_DeterministicRuns(t *testing.T) {
	run := func() CoverageReport {
		vs := NewVisionSim(
			WithGridConfig(testConfig()),
			WithSeed(42),
			WithRemovalEvery(50),
			WithRandomCasters(4, 6, 12, "red", "blue"),
		)
		vs.RunTicks(300)
		return vs.Report()
	}

	a := run()
	b := run()
	if a.Crossings != b.Crossings || a.Removals != b.Removals || a.DirtyPeak != b.DirtyPeak {
		t.Fatalf("same seed gave different runs: %+v vs %+v", a, b)
	}
	for p, v := range a.ExploredByPlayer {
		if b.ExploredByPlayer[p] != v {
			t.Fatalf("explored fraction for %s differs: %f vs %f", p, v, b.ExploredByPlayer[p])
		}
	}
}

func TestVisionSim_NoRefCountUnderflowUnderChurn(t *testing.T) {
	strictInvariants = true
	defer func() { strictInvariants = false }()

	vs := NewVisionSim(
		WithGridConfig(testConfig()),
		WithSeed(7),
		WithRemovalEvery(25),
		WithRandomCasters(6, 4, 16, "red", "blue", "green"),
	)
	vs.RunTicks(500)

	if vs.Grid.ClampedRemovals() != 0 {
		t.Fatalf("clamped %d removals under churn, want 0", vs.Grid.ClampedRemovals())
	}
}

func TestVisionSim_ExploredIsMonotonic(t *testing.T) {
	vs := NewVisionSim(
		WithGridConfig(testConfig()),
		WithSeed(3),
		WithRandomCasters(3, 6, 10, "red"),
	)

	prev := 0.0
	for seg := 0; seg < 5; seg++ {
		vs.RunTicks(100)
		frac := vs.Report().ExploredByPlayer["red"]
		if frac < prev {
			t.Fatalf("explored fraction shrank: %f → %f", prev, frac)
		}
		prev = frac
	}
	if prev == 0 {
		t.Fatal("walking casters should have explored something")
	}
}

func TestVisionSim_CrossingsLogged(t *testing.T) {
	vs := NewVisionSim(
		WithGridConfig(testConfig()),
		WithSeed(11),
		WithCaster("red", 10, 10, 6),
	)
	vs.RunTicks(200)

	r := vs.Report()
	if r.Crossings == 0 {
		t.Fatal("a walking caster must cross cell boundaries")
	}
	if got := vs.SimLog.CountCategory("caster", "crossed"); got != r.Crossings {
		t.Fatalf("log has %d crossings, report says %d", got, r.Crossings)
	}
	if vs.SimLog.CountCategory("caster", "spawn") != 1 {
		t.Fatal("expected exactly one spawn entry")
	}
}

func TestVisionSim_RemovalsDarkenButKeepExplored(t *testing.T) {
	vs := NewVisionSim(
		WithGridConfig(testConfig()),
		WithSeed(5),
		WithRemovalEvery(10),
		WithRandomCasters(3, 6, 10, "red"),
	)
	vs.RunTicks(60) // all casters removed by tick 30

	r := vs.Report()
	if r.LiveCasters != 0 {
		t.Fatalf("expected all casters removed, %d live", r.LiveCasters)
	}
	if r.VisibleByPlayer["red"] != 0 {
		t.Fatalf("no live casters but %f of cells visible", r.VisibleByPlayer["red"])
	}
	if r.ExploredByPlayer["red"] == 0 {
		t.Fatal("explored record must survive caster removal")
	}
}
