package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/Garsondee/Fog-Sense/internal/config"
	"github.com/Garsondee/Fog-Sense/internal/vision"
)

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var configPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 0, "ticks per run (0 = value from config)")
	flag.Int64Var(&seedBase, "seed-base", 0, "base RNG seed for run 1 (0 = value from config)")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", "", "scenario TOML file (default: built-in scenario)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if ticks <= 0 {
		ticks = cfg.Sim.Ticks
	}
	if seedBase == 0 {
		seedBase = cfg.Sim.Seed
	}

	fmt.Printf("=== Fog Coverage Report ===\n")
	fmt.Printf("grid=%dx%d cell=%.1f casters=%d/player players=%v\n",
		cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.CellSize, cfg.Sim.Casters, cfg.Sim.Players)
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", runs, ticks, seedBase, seedStep)

	all := make([]vision.CoverageReport, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		vs := vision.NewVisionSim(
			vision.WithGridConfig(cfg.GridConfig()),
			vision.WithSeed(seed),
			vision.WithRemovalEvery(cfg.Sim.RemovalEvery),
			vision.WithRandomCasters(cfg.Sim.Casters, cfg.Sim.SightMin, cfg.Sim.SightMax, cfg.Sim.Players...),
		)
		vs.RunTicks(ticks)
		r := vs.Report()
		all = append(all, r)
		printRun(i+1, seed, r)
	}

	printAggregate(all)
}

func printRun(idx int, seed int64, r vision.CoverageReport) {
	fmt.Printf("--- run %d (seed=%d) ---\n", idx, seed)
	fmt.Printf("casters=%d live=%d crossings=%d removals=%d\n",
		r.Casters, r.LiveCasters, r.Crossings, r.Removals)
	fmt.Printf("dirty cells/tick: mean=%.1f peak=%d\n", r.DirtyMean, r.DirtyPeak)
	for _, p := range sortedPlayers(r) {
		fmt.Printf("  %-8s explored=%5.1f%% visible=%5.1f%%\n",
			p, 100*r.ExploredByPlayer[p], 100*r.VisibleByPlayer[p])
	}
	fmt.Println()
}

func printAggregate(all []vision.CoverageReport) {
	if len(all) == 0 {
		return
	}
	var crossings, dirtyPeak int
	var dirtyMean float64
	explored := map[string]float64{}
	for _, r := range all {
		crossings += r.Crossings
		dirtyMean += r.DirtyMean
		if r.DirtyPeak > dirtyPeak {
			dirtyPeak = r.DirtyPeak
		}
		for p, v := range r.ExploredByPlayer {
			explored[p] += v
		}
	}
	n := float64(len(all))

	fmt.Printf("=== aggregate over %d runs ===\n", len(all))
	fmt.Printf("crossings/run=%.1f dirty mean/tick=%.1f dirty peak=%d\n",
		float64(crossings)/n, dirtyMean/n, dirtyPeak)
	players := make([]string, 0, len(explored))
	for p := range explored {
		players = append(players, p)
	}
	sort.Strings(players)
	for _, p := range players {
		fmt.Printf("  %-8s mean explored=%5.1f%%\n", p, 100*explored[p]/n)
	}
}

func sortedPlayers(r vision.CoverageReport) []string {
	out := make([]string, 0, len(r.ExploredByPlayer))
	for p := range r.ExploredByPlayer {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
