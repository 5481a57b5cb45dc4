// Package vision tracks per-player fog of war: a reference-counted
// visibility grid fed by moving casters, a sticky explored record, and
// a pattern-based smooth fog surface for rendering.
package vision

import "math"

// GridConfig describes the logical cell grid laid over the world.
// GridWidth is expected to be about MapWidth/CellSize; the mapping is not
// enforced, but queries outside it are meaningless.
type GridConfig struct {
	GridWidth  int
	GridHeight int
	CellSize   float64
	MapWidth   float64
	MapHeight  float64
}

// Cell is a grid coordinate.
type Cell struct {
	X int
	Y int
}

// CellState is the fog state of one cell from one player's point of view.
type CellState uint8

const (
	CellUnexplored CellState = iota // never seen
	CellVisible                     // at least one caster currently covers it
	CellExplored                    // seen before, no caster covers it now
)

// String returns a short display name for a cell state.
func (s CellState) String() string {
	switch s {
	case CellVisible:
		return "visible"
	case CellExplored:
		return "explored"
	default:
		return "unexplored"
	}
}

// caster is one vision source. footprint is the exact cell set whose
// reference counts this caster currently holds; removal and moves must
// subtract this cached set, never a recomputed one, or repeated moves
// would leak or double-free counts.
type caster struct {
	player     string
	worldX     float64
	worldY     float64
	sightRange float64
	gridX      int
	gridY      int
	footprint  []Cell
}

// playerGrids is the per-player grid pair: reference counts and the
// sticky explored record.
type playerGrids struct {
	counts   []int32
	explored []bool
}

// strictInvariants makes a negative reference count panic instead of
// clamping. Enabled by tests; release builds keep it off so a single
// double-removal bug cannot crash a running match.
var strictInvariants = false

// VisionGrid tracks, per player, which cells are covered by how many
// casters and which cells have ever been seen. All methods are intended
// for the simulation goroutine only — no locks.
type VisionGrid struct {
	cfg     GridConfig
	casters map[int]*caster
	players map[string]*playerGrids

	dirtyCells   map[Cell]struct{}
	dirtyPlayers map[string]struct{}

	// clampedRemovals counts reference counts that would have gone
	// negative and were clamped. Nonzero means a caster bookkeeping bug.
	clampedRemovals int
}

// GridStats is a diagnostic snapshot of a VisionGrid.
type GridStats struct {
	TotalCasters int
	DirtyCells   int
	DirtyPlayers int
}

// NewVisionGrid creates an empty grid for the given config.
func NewVisionGrid(cfg GridConfig) *VisionGrid {
	g := &VisionGrid{}
	g.Reinitialize(cfg)
	return g
}

// Reinitialize discards every caster, grid and dirty-state entry and
// starts over with the new config. Equivalent to destruct + construct.
func (g *VisionGrid) Reinitialize(cfg GridConfig) {
	g.cfg = cfg
	g.casters = make(map[int]*caster)
	g.players = make(map[string]*playerGrids)
	g.dirtyCells = make(map[Cell]struct{})
	g.dirtyPlayers = make(map[string]struct{})
	g.clampedRemovals = 0
}

// Config returns the active grid config.
func (g *VisionGrid) Config() GridConfig {
	return g.cfg
}

// inBounds reports whether (gx,gy) lies on the grid.
func (g *VisionGrid) inBounds(gx, gy int) bool {
	return gx >= 0 && gx < g.cfg.GridWidth && gy >= 0 && gy < g.cfg.GridHeight
}

// worldToCell converts a world position to its containing cell.
func (g *VisionGrid) worldToCell(wx, wy float64) (int, int) {
	return int(math.Floor(wx / g.cfg.CellSize)), int(math.Floor(wy / g.cfg.CellSize))
}

// grids returns the grid pair for a player, allocating on first use.
func (g *VisionGrid) grids(player string) *playerGrids {
	pg := g.players[player]
	if pg == nil {
		n := g.cfg.GridWidth * g.cfg.GridHeight
		pg = &playerGrids{
			counts:   make([]int32, n),
			explored: make([]bool, n),
		}
		g.players[player] = pg
	}
	return pg
}

// computeFootprint returns every in-bounds cell whose center lies within
// sightRange of (wx,wy). A filled-circle test, not a raycast.
func (g *VisionGrid) computeFootprint(wx, wy, sightRange float64) []Cell {
	cs := g.cfg.CellSize
	minX := int(math.Floor((wx - sightRange) / cs))
	maxX := int(math.Floor((wx + sightRange) / cs))
	minY := int(math.Floor((wy - sightRange) / cs))
	maxY := int(math.Floor((wy + sightRange) / cs))
	r2 := sightRange * sightRange

	var cells []Cell
	for gy := minY; gy <= maxY; gy++ {
		for gx := minX; gx <= maxX; gx++ {
			if !g.inBounds(gx, gy) {
				continue
			}
			cx := (float64(gx) + 0.5) * cs
			cy := (float64(gy) + 0.5) * cs
			dx := cx - wx
			dy := cy - wy
			if dx*dx+dy*dy <= r2 {
				cells = append(cells, Cell{X: gx, Y: gy})
			}
		}
	}
	return cells
}

// applyFootprint increments the player's reference count at each cell,
// setting the sticky explored bit and marking cells dirty.
func (g *VisionGrid) applyFootprint(pg *playerGrids, cells []Cell) {
	for _, c := range cells {
		idx := c.Y*g.cfg.GridWidth + c.X
		pg.counts[idx]++
		pg.explored[idx] = true
		g.dirtyCells[c] = struct{}{}
	}
}

// retractFootprint decrements the player's reference count at each cell
// and marks them dirty. Counts never go below zero: a would-be negative
// count is clamped and recorded (panics under strictInvariants).
func (g *VisionGrid) retractFootprint(pg *playerGrids, cells []Cell) {
	for _, c := range cells {
		idx := c.Y*g.cfg.GridWidth + c.X
		if pg.counts[idx] <= 0 {
			if strictInvariants {
				panic("vision: reference count underflow")
			}
			g.clampedRemovals++
		} else {
			pg.counts[idx]--
		}
		g.dirtyCells[c] = struct{}{}
	}
}

// moveFootprint retracts the old cell set and applies the new one in a
// single pass, marking dirty only the symmetric difference. Cells in the
// overlap keep their count (one down, one up) and stay clean.
func (g *VisionGrid) moveFootprint(pg *playerGrids, oldFp, newFp []Cell) {
	inNew := make(map[Cell]struct{}, len(newFp))
	for _, c := range newFp {
		inNew[c] = struct{}{}
	}
	inOld := make(map[Cell]struct{}, len(oldFp))
	for _, c := range oldFp {
		inOld[c] = struct{}{}
	}

	for _, c := range oldFp {
		idx := c.Y*g.cfg.GridWidth + c.X
		if pg.counts[idx] <= 0 {
			if strictInvariants {
				panic("vision: reference count underflow")
			}
			g.clampedRemovals++
		} else {
			pg.counts[idx]--
		}
		if _, kept := inNew[c]; !kept {
			g.dirtyCells[c] = struct{}{}
		}
	}
	for _, c := range newFp {
		idx := c.Y*g.cfg.GridWidth + c.X
		pg.counts[idx]++
		pg.explored[idx] = true
		if _, kept := inOld[c]; !kept {
			g.dirtyCells[c] = struct{}{}
		}
	}
}

// UpdateCaster registers or moves a vision source. Returns true when the
// caster is new or its containing grid cell changed; movement within the
// same cell is free and returns false without touching any state.
func (g *VisionGrid) UpdateCaster(id int, player string, wx, wy, sightRange float64) bool {
	gx, gy := g.worldToCell(wx, wy)

	c := g.casters[id]
	if c == nil {
		fp := g.computeFootprint(wx, wy, sightRange)
		g.applyFootprint(g.grids(player), fp)
		g.casters[id] = &caster{
			player:     player,
			worldX:     wx,
			worldY:     wy,
			sightRange: sightRange,
			gridX:      gx,
			gridY:      gy,
			footprint:  fp,
		}
		g.dirtyPlayers[player] = struct{}{}
		return true
	}

	if gx == c.gridX && gy == c.gridY {
		// Sub-cell movement: footprint unchanged, nothing to do.
		c.worldX = wx
		c.worldY = wy
		c.sightRange = sightRange
		return false
	}

	fp := g.computeFootprint(wx, wy, sightRange)
	g.moveFootprint(g.grids(c.player), c.footprint, fp)

	c.worldX = wx
	c.worldY = wy
	c.sightRange = sightRange
	c.gridX = gx
	c.gridY = gy
	c.footprint = fp
	g.dirtyPlayers[c.player] = struct{}{}
	return true
}

// RemoveCaster retracts a caster's cached footprint and forgets it.
// No-op for an unknown id. Explored bits are untouched.
func (g *VisionGrid) RemoveCaster(id int) {
	c := g.casters[id]
	if c == nil {
		return
	}
	g.retractFootprint(g.grids(c.player), c.footprint)
	g.dirtyPlayers[c.player] = struct{}{}
	delete(g.casters, id)
}

// IsCellVisible reports whether (gx,gy) is currently covered by at least
// one of the player's casters. Out-of-range cells and unknown players
// are not visible.
func (g *VisionGrid) IsCellVisible(gx, gy int, player string) bool {
	if !g.inBounds(gx, gy) {
		return false
	}
	pg := g.players[player]
	if pg == nil {
		return false
	}
	return pg.counts[gy*g.cfg.GridWidth+gx] > 0
}

// IsCellExplored reports whether the player has ever seen (gx,gy).
func (g *VisionGrid) IsCellExplored(gx, gy int, player string) bool {
	if !g.inBounds(gx, gy) {
		return false
	}
	pg := g.players[player]
	if pg == nil {
		return false
	}
	return pg.explored[gy*g.cfg.GridWidth+gx]
}

// CellVisionState classifies a world position for a player. Takes world
// coordinates, unlike IsCellVisible/IsCellExplored which take grid
// coordinates: overlay/UI callers work in world space, bulk grid
// consumers in grid space.
func (g *VisionGrid) CellVisionState(wx, wy float64, player string) CellState {
	gx, gy := g.worldToCell(wx, wy)
	switch {
	case g.IsCellVisible(gx, gy, player):
		return CellVisible
	case g.IsCellExplored(gx, gy, player):
		return CellExplored
	default:
		return CellUnexplored
	}
}

// VisibilityMask returns a row-major float mask for the player: 1.0 where
// currently visible, else 0.0. Explored-but-fogged cells read 0 here; use
// CellVisionState for the three-way distinction. The slice is freshly
// allocated on every call — callers may keep it.
func (g *VisionGrid) VisibilityMask(player string) []float32 {
	mask := make([]float32, g.cfg.GridWidth*g.cfg.GridHeight)
	pg := g.players[player]
	if pg == nil {
		return mask
	}
	for i, n := range pg.counts {
		if n > 0 {
			mask[i] = 1.0
		}
	}
	return mask
}

// DirtyCells returns the cells whose state changed since the last
// ClearDirtyState. The returned map is the live set; callers must not
// mutate it.
func (g *VisionGrid) DirtyCells() map[Cell]struct{} {
	return g.dirtyCells
}

// DirtyPlayers returns the players whose grids changed since the last
// ClearDirtyState.
func (g *VisionGrid) DirtyPlayers() map[string]struct{} {
	return g.dirtyPlayers
}

// ClearDirtyState empties both dirty sets. Only consumers call this,
// once per render/upload cycle, after draining the sets.
func (g *VisionGrid) ClearDirtyState() {
	clear(g.dirtyCells)
	clear(g.dirtyPlayers)
}

// Stats returns a diagnostic snapshot.
func (g *VisionGrid) Stats() GridStats {
	return GridStats{
		TotalCasters: len(g.casters),
		DirtyCells:   len(g.dirtyCells),
		DirtyPlayers: len(g.dirtyPlayers),
	}
}

// ClampedRemovals reports how many reference-count underflows were
// clamped since the last Reinitialize. Anything above zero indicates a
// double-removal bug in the caller.
func (g *VisionGrid) ClampedRemovals() int {
	return g.clampedRemovals
}
