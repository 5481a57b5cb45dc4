package fogview

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/Fog-Sense/internal/vision"
)

// fogDebugReport renders the current vision state as a pasteable text
// block: per-player coverage plus an ASCII map of the viewed player's
// fog (#=visible, .=explored, space=unexplored).
func (g *Game) fogDebugReport() string {
	var b strings.Builder
	st := g.grid.Stats()
	fmt.Fprintf(&b, "--- FogSense debug report ---\n")
	fmt.Fprintf(&b, "tick=%d seed=%d grid=%dx%d cell=%.1f casters=%d\n",
		g.tick, g.cfg.Sim.Seed, g.cfg.Grid.Width, g.cfg.Grid.Height, g.cfg.Grid.CellSize, st.TotalCasters)

	total := g.cfg.Grid.Width * g.cfg.Grid.Height
	for _, p := range g.players {
		visible, explored := 0, 0
		for gy := 0; gy < g.cfg.Grid.Height; gy++ {
			for gx := 0; gx < g.cfg.Grid.Width; gx++ {
				if g.grid.IsCellVisible(gx, gy, p) {
					visible++
				}
				if g.grid.IsCellExplored(gx, gy, p) {
					explored++
				}
			}
		}
		fmt.Fprintf(&b, "player=%-8s visible=%5.1f%% explored=%5.1f%%\n",
			p, 100*float64(visible)/float64(total), 100*float64(explored)/float64(total))
	}

	p := g.viewedPlayer()
	fmt.Fprintf(&b, "\nmap (%s):\n", p)
	cs := g.cfg.Grid.CellSize
	for gy := 0; gy < g.cfg.Grid.Height; gy++ {
		for gx := 0; gx < g.cfg.Grid.Width; gx++ {
			wx := (float64(gx) + 0.5) * cs
			wy := (float64(gy) + 0.5) * cs
			switch g.grid.CellVisionState(wx, wy, p) {
			case vision.CellVisible:
				b.WriteByte('#')
			case vision.CellExplored:
				b.WriteByte('.')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// copyDebugReport puts the report on the system clipboard and records
// the outcome for the HUD.
func (g *Game) copyDebugReport() {
	if err := clipboard.WriteAll(g.fogDebugReport()); err != nil {
		g.statusMsg = fmt.Sprintf("clipboard: %v", err)
		return
	}
	g.statusMsg = "report copied"
}
