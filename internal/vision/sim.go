package vision

import (
	"fmt"
	"math"
	"math/rand"
)

// simCaster is one random-walking vision source in a VisionSim.
type simCaster struct {
	id     int
	label  string
	player string
	x, y   float64
	vx, vy float64
	sight  float64
	alive  bool
}

// VisionSim is a headless harness that drives a VisionGrid with randomly
// walking casters. Deterministically seeded; used by tests and
// cmd/fog-report. It mirrors the live update loop but has no Ebiten
// dependency.
type VisionSim struct {
	Grid    *VisionGrid
	Surface *VisionSurface
	SimLog  *SimLog
	Tick    int

	casters []*simCaster
	players []string
	rng     *rand.Rand
	nextID  int

	// removalEvery kills one random caster every N ticks (0 = never).
	removalEvery int

	// running aggregates
	crossings  int
	removals   int
	dirtyTotal int
	dirtyPeak  int
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // grid config, seed, verbose — applied first
	simOptCaster                      // add casters — applied after grids exist
)

// SimOption is a builder function applied to a VisionSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*VisionSim)
}

// WithGridConfig sets the grid geometry for both grid and surface.
func WithGridConfig(cfg GridConfig) SimOption {
	return SimOption{simOptInfra, func(vs *VisionSim) {
		vs.Grid = NewVisionGrid(cfg)
		vs.Surface = NewVisionSurface(SurfaceConfig{
			GridWidth:    cfg.GridWidth,
			GridHeight:   cfg.GridHeight,
			CellSize:     cfg.CellSize,
			MaxDistance:  2,
			EdgeSoftness: 1,
		})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(vs *VisionSim) {
		vs.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation harness
	}}
}

// WithVerbose enables per-tick position logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(vs *VisionSim) {
		vs.SimLog = NewSimLog(v)
	}}
}

// WithRemovalEvery kills one random caster every n ticks.
func WithRemovalEvery(n int) SimOption {
	return SimOption{simOptInfra, func(vs *VisionSim) {
		vs.removalEvery = n
	}}
}

// WithCaster adds a caster for a player at a world position with the
// given sight range. Its walk direction is drawn from the sim RNG.
func WithCaster(player string, x, y, sight float64) SimOption {
	return SimOption{simOptCaster, func(vs *VisionSim) {
		vs.addCaster(player, x, y, sight)
	}}
}

// WithRandomCasters scatters n casters for each named player across the map.
func WithRandomCasters(n int, sightMin, sightMax float64, players ...string) SimOption {
	return SimOption{simOptCaster, func(vs *VisionSim) {
		cfg := vs.Grid.Config()
		for _, p := range players {
			for i := 0; i < n; i++ {
				x := vs.rng.Float64() * cfg.MapWidth
				y := vs.rng.Float64() * cfg.MapHeight
				sight := sightMin + vs.rng.Float64()*(sightMax-sightMin)
				vs.addCaster(p, x, y, sight)
			}
		}
	}}
}

// NewVisionSim constructs a VisionSim in two ordered passes:
//  1. Infrastructure (grid config, seed, verbose, removal cadence)
//  2. Casters
func NewVisionSim(opts ...SimOption) *VisionSim {
	vs := &VisionSim{
		SimLog: NewSimLog(false),
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- harness default
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(vs)
		}
	}
	if vs.Grid == nil {
		vs.Grid = NewVisionGrid(GridConfig{
			GridWidth: 64, GridHeight: 64, CellSize: 2, MapWidth: 128, MapHeight: 128,
		})
	}
	if vs.Surface == nil {
		cfg := vs.Grid.Config()
		vs.Surface = NewVisionSurface(SurfaceConfig{
			GridWidth: cfg.GridWidth, GridHeight: cfg.GridHeight, CellSize: cfg.CellSize,
			MaxDistance: 2, EdgeSoftness: 1,
		})
	}
	for _, o := range opts {
		if o.kind == simOptCaster {
			o.fn(vs)
		}
	}
	return vs
}

// addCaster registers a caster with the grid and gives it a random
// walk direction.
func (vs *VisionSim) addCaster(player string, x, y, sight float64) {
	id := vs.nextID
	vs.nextID++
	angle := vs.rng.Float64() * 2 * math.Pi
	c := &simCaster{
		id:     id,
		label:  fmt.Sprintf("C%02d", id),
		player: player,
		x:      x,
		y:      y,
		vx:     math.Cos(angle),
		vy:     math.Sin(angle),
		sight:  sight,
		alive:  true,
	}
	vs.casters = append(vs.casters, c)
	if !containsString(vs.players, player) {
		vs.players = append(vs.players, player)
	}
	vs.Grid.UpdateCaster(c.id, c.player, c.x, c.y, c.sight)
	vs.SimLog.Add(vs.Tick, c.label, player, "caster", "spawn",
		fmt.Sprintf("(%.1f,%.1f) r=%.1f", x, y, sight), sight)
}

// Players returns the player ids seen so far, in registration order.
func (vs *VisionSim) Players() []string {
	return vs.players
}

// RunTicks advances the simulation n ticks. Each tick every live caster
// takes one step (bouncing off map edges), the grid is updated, and the
// dirty sets are drained the way a renderer would.
func (vs *VisionSim) RunTicks(n int) {
	cfg := vs.Grid.Config()
	for i := 0; i < n; i++ {
		vs.Tick++
		for _, c := range vs.casters {
			if !c.alive {
				continue
			}
			c.x += c.vx
			c.y += c.vy
			if c.x < 0 || c.x > cfg.MapWidth {
				c.vx = -c.vx
				c.x += 2 * c.vx
			}
			if c.y < 0 || c.y > cfg.MapHeight {
				c.vy = -c.vy
				c.y += 2 * c.vy
			}
			crossed := vs.Grid.UpdateCaster(c.id, c.player, c.x, c.y, c.sight)
			if crossed {
				vs.crossings++
				vs.SimLog.Add(vs.Tick, c.label, c.player, "caster", "crossed",
					fmt.Sprintf("(%.1f,%.1f)", c.x, c.y), 0)
			}
			vs.SimLog.AddVerbose(vs.Tick, c.label, c.player, "caster", "position",
				fmt.Sprintf("(%.1f,%.1f)", c.x, c.y), 0)
		}

		if vs.removalEvery > 0 && vs.Tick%vs.removalEvery == 0 {
			vs.removeRandomCaster()
		}

		// Drain dirty state like a throttled renderer would.
		dirty := len(vs.Grid.DirtyCells())
		vs.dirtyTotal += dirty
		if dirty > vs.dirtyPeak {
			vs.dirtyPeak = dirty
		}
		for p := range vs.Grid.DirtyPlayers() {
			vs.Surface.UpdateSDF(p, vs.Grid.VisibilityMask(p))
		}
		vs.Grid.ClearDirtyState()
	}
}

// removeRandomCaster kills one live caster, if any remain.
func (vs *VisionSim) removeRandomCaster() {
	var live []*simCaster
	for _, c := range vs.casters {
		if c.alive {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return
	}
	c := live[vs.rng.Intn(len(live))]
	c.alive = false
	vs.Grid.RemoveCaster(c.id)
	vs.removals++
	vs.SimLog.Add(vs.Tick, c.label, c.player, "caster", "removed", "", 0)
}

// CoverageReport is the end-of-run aggregate for one VisionSim run.
type CoverageReport struct {
	Ticks            int
	Casters          int // spawned over the whole run
	LiveCasters      int
	Crossings        int
	Removals         int
	DirtyMean        float64 // dirty cells drained per tick, mean
	DirtyPeak        int
	ExploredByPlayer map[string]float64 // fraction of cells ever seen
	VisibleByPlayer  map[string]float64 // fraction of cells currently seen
}

// Report computes the aggregate for the run so far.
func (vs *VisionSim) Report() CoverageReport {
	cfg := vs.Grid.Config()
	total := float64(cfg.GridWidth * cfg.GridHeight)
	r := CoverageReport{
		Ticks:            vs.Tick,
		Casters:          len(vs.casters),
		LiveCasters:      vs.Grid.Stats().TotalCasters,
		Crossings:        vs.crossings,
		Removals:         vs.removals,
		DirtyPeak:        vs.dirtyPeak,
		ExploredByPlayer: make(map[string]float64),
		VisibleByPlayer:  make(map[string]float64),
	}
	if vs.Tick > 0 {
		r.DirtyMean = float64(vs.dirtyTotal) / float64(vs.Tick)
	}
	for _, p := range vs.players {
		explored, visible := 0, 0
		for gy := 0; gy < cfg.GridHeight; gy++ {
			for gx := 0; gx < cfg.GridWidth; gx++ {
				if vs.Grid.IsCellExplored(gx, gy, p) {
					explored++
				}
				if vs.Grid.IsCellVisible(gx, gy, p) {
					visible++
				}
			}
		}
		r.ExploredByPlayer[p] = float64(explored) / total
		r.VisibleByPlayer[p] = float64(visible) / total
	}
	return r
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
