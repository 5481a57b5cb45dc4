// Package fogview is the interactive fog-of-war demo: wandering casters
// feed a VisionGrid, and the per-player fog mask is drawn as a smooth
// overlay via VisionSurface.
package fogview

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Fog-Sense/internal/config"
	"github.com/Garsondee/Fog-Sense/internal/vision"
)

// uploadEvery throttles fog texture rebuilds: the dirty sets are drained
// on this cadence, not every frame.
const uploadEvery = 5

// playerColors are the caster dot colours per player slot.
var playerColors = []color.RGBA{
	{R: 235, G: 80, B: 70, A: 255},  // red
	{R: 70, G: 130, B: 235, A: 255}, // blue
	{R: 90, G: 200, B: 110, A: 255}, // green
	{R: 230, G: 200, B: 70, A: 255}, // yellow
}

// wanderer is one moving caster in the demo world.
type wanderer struct {
	id     int
	player string
	x, y   float64
	vx, vy float64
	sight  float64
}

type Game struct {
	cfg     *config.Config
	grid    *vision.VisionGrid
	surface *vision.VisionSurface

	casters []*wanderer
	players []string
	rng     *rand.Rand
	tick    int

	viewIdx   int // which player's fog is shown
	paused    bool
	rawGrid   bool // G: raw mask blocks instead of the smooth overlay
	statusMsg string

	// fogTex holds the upscaled overlay for the viewed player; fogPix is
	// its staging RGBA buffer, rebuilt only when the dirty sets say so.
	fogTex   *ebiten.Image
	fogPix   []byte
	prevKeys map[ebiten.Key]bool
}

// New builds the demo from a scenario config.
func New(cfg *config.Config) *Game {
	g := &Game{
		cfg:      cfg,
		grid:     vision.NewVisionGrid(cfg.GridConfig()),
		surface:  vision.NewVisionSurface(cfg.SurfaceConfig()),
		players:  cfg.Sim.Players,
		rng:      rand.New(rand.NewSource(cfg.Sim.Seed)), // #nosec G404 -- demo
		prevKeys: make(map[ebiten.Key]bool),
	}
	g.initCasters()

	w := cfg.Grid.Width * cfg.Surface.Upscale
	h := cfg.Grid.Height * cfg.Surface.Upscale
	g.fogTex = ebiten.NewImage(w, h)
	g.fogPix = make([]byte, w*h*4)
	g.rebuildFog()
	return g
}

func (g *Game) initCasters() {
	id := 0
	for _, p := range g.players {
		for i := 0; i < g.cfg.Sim.Casters; i++ {
			angle := g.rng.Float64() * 2 * math.Pi
			c := &wanderer{
				id:     id,
				player: p,
				x:      g.rng.Float64() * g.cfg.Grid.MapWidth,
				y:      g.rng.Float64() * g.cfg.Grid.MapHeight,
				vx:     math.Cos(angle) * 0.4,
				vy:     math.Sin(angle) * 0.4,
				sight:  g.cfg.Sim.SightMin + g.rng.Float64()*(g.cfg.Sim.SightMax-g.cfg.Sim.SightMin),
			}
			id++
			g.casters = append(g.casters, c)
			g.grid.UpdateCaster(c.id, c.player, c.x, c.y, c.sight)
		}
	}
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.handleInput()
	if g.paused {
		return nil
	}
	g.tick++

	for _, c := range g.casters {
		c.x += c.vx
		c.y += c.vy
		if c.x < 0 || c.x > g.cfg.Grid.MapWidth {
			c.vx = -c.vx
			c.x += 2 * c.vx
		}
		if c.y < 0 || c.y > g.cfg.Grid.MapHeight {
			c.vy = -c.vy
			c.y += 2 * c.vy
		}
		g.grid.UpdateCaster(c.id, c.player, c.x, c.y, c.sight)
	}

	// Throttled consumer: drain the dirty sets, rebuild what changed,
	// then clear. The grid never clears them on its own.
	if g.tick%uploadEvery == 0 {
		if _, dirty := g.grid.DirtyPlayers()[g.viewedPlayer()]; dirty {
			g.rebuildFog()
		}
		g.grid.ClearDirtyState()
	}
	return nil
}

func (g *Game) viewedPlayer() string {
	return g.players[g.viewIdx]
}

// rebuildFog pulls the viewed player's mask through the surface and
// restages the overlay RGBA: unseen cells are near-black, explored
// cells a dark veil, visible cells clear with soft pattern edges.
func (g *Game) rebuildFog() {
	player := g.viewedPlayer()
	scale := g.cfg.Surface.Upscale
	mask := g.grid.VisibilityMask(player)
	g.surface.UpdateSDF(player, mask)

	var bright []uint8
	if g.rawGrid {
		bright = g.rawBlocks(mask, scale)
	} else {
		bright = g.surface.CreateUpscaledTexture(player, mask, scale).Pix
		if !g.surface.TakeUploadNeeded(player) {
			return
		}
	}

	w := g.cfg.Grid.Width * scale
	h := g.cfg.Grid.Height * scale
	cs := g.cfg.Grid.CellSize
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			i := py*w + px
			// Fog alpha: fully lit pixels get no veil.
			alpha := 255 - int(bright[i])
			if alpha > 0 {
				// Explored cells keep a lighter veil than unseen ones.
				wx := (float64(px) + 0.5) / float64(scale) * cs
				wy := (float64(py) + 0.5) / float64(scale) * cs
				if g.grid.CellVisionState(wx, wy, player) == vision.CellExplored {
					if alpha > 150 {
						alpha = 150
					}
				}
			}
			o := i * 4
			g.fogPix[o+0] = 8
			g.fogPix[o+1] = 10
			g.fogPix[o+2] = 14
			g.fogPix[o+3] = uint8(alpha)
		}
	}
	g.fogTex.WritePixels(g.fogPix)
}

// rawBlocks renders the mask as hard blocks, for comparing against the
// pattern-smoothed overlay.
func (g *Game) rawBlocks(mask []float32, scale int) []uint8 {
	w, h := g.cfg.Grid.Width, g.cfg.Grid.Height
	out := make([]uint8, w*scale*h*scale)
	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			if mask[gy*w+gx] <= 0 {
				continue
			}
			for py := 0; py < scale; py++ {
				row := (gy*scale+py)*w*scale + gx*scale
				for px := 0; px < scale; px++ {
					out[row+px] = 255
				}
			}
		}
	}
	return out
}

func (g *Game) handleInput() {
	keys := []ebiten.Key{ebiten.KeyTab, ebiten.KeySpace, ebiten.KeyG, ebiten.KeyC}
	currentKeys := make(map[ebiten.Key]bool, len(keys))
	for _, k := range keys {
		currentKeys[k] = ebiten.IsKeyPressed(k)
	}

	if currentKeys[ebiten.KeyTab] && !g.prevKeys[ebiten.KeyTab] {
		g.viewIdx = (g.viewIdx + 1) % len(g.players)
		g.rebuildFog()
	}
	if currentKeys[ebiten.KeySpace] && !g.prevKeys[ebiten.KeySpace] {
		g.paused = !g.paused
	}
	if currentKeys[ebiten.KeyG] && !g.prevKeys[ebiten.KeyG] {
		g.rawGrid = !g.rawGrid
		g.rebuildFog()
	}
	if currentKeys[ebiten.KeyC] && !g.prevKeys[ebiten.KeyC] {
		g.copyDebugReport()
	}

	g.prevKeys = currentKeys
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 52, G: 76, B: 46, A: 255}) // open ground

	scale := g.cfg.Surface.Upscale
	pxPerWorld := float64(scale) / g.cfg.Grid.CellSize

	// Casters of every player; the viewed player's are drawn on top of
	// the fog so they stay visible through their own shroud.
	for _, c := range g.casters {
		if c.player == g.viewedPlayer() {
			continue
		}
		g.drawCaster(screen, c, pxPerWorld)
	}

	screen.DrawImage(g.fogTex, nil)

	for _, c := range g.casters {
		if c.player != g.viewedPlayer() {
			continue
		}
		g.drawCaster(screen, c, pxPerWorld)
		// Sight radius ring.
		col := g.playerColor(c.player)
		col.A = 90
		vector.StrokeCircle(screen,
			float32(c.x*pxPerWorld), float32(c.y*pxPerWorld),
			float32(c.sight*pxPerWorld), 1, col, true)
	}

	st := g.grid.Stats()
	hud := fmt.Sprintf("view=%s tick=%d casters=%d dirty=%d/%d  [Tab] player [Space] pause [G] raw [C] copy report",
		g.viewedPlayer(), g.tick, st.TotalCasters, st.DirtyCells, st.DirtyPlayers)
	if g.statusMsg != "" {
		hud += "  " + g.statusMsg
	}
	ebitenutil.DebugPrint(screen, hud)
}

func (g *Game) drawCaster(screen *ebiten.Image, c *wanderer, pxPerWorld float64) {
	vector.DrawFilledCircle(screen,
		float32(c.x*pxPerWorld), float32(c.y*pxPerWorld),
		3, g.playerColor(c.player), true)
}

func (g *Game) playerColor(player string) color.RGBA {
	for i, p := range g.players {
		if p == player {
			return playerColors[i%len(playerColors)]
		}
	}
	return color.RGBA{R: 200, G: 200, B: 200, A: 255}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Grid.Width * g.cfg.Surface.Upscale, g.cfg.Grid.Height * g.cfg.Surface.Upscale
}
