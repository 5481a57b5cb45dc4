package vision

import "image"

// SurfaceConfig describes the fog surface geometry and edge shaping.
// MaxDistance and EdgeSoftness control how hard a visible/fogged
// boundary reads: larger MaxDistance spreads the falloff budget, larger
// EdgeSoftness dims boundary cells more.
type SurfaceConfig struct {
	GridWidth    int
	GridHeight   int
	CellSize     float64
	MaxDistance  float64
	EdgeSoftness float64
}

// fullyLit is the value a cell deep inside a visible region converges to.
const fullyLit = 255

// VisionSurface turns per-player visibility masks into smooth one-channel
// fog buffers. The smoothing is a neighbor-count approximation, not a
// true distance transform: interior cells saturate, boundary cells are
// dimmed per missing cardinal neighbor. Buffers are owned here and only
// ever read by the renderer.
type VisionSurface struct {
	cfg SurfaceConfig

	sdf        map[string]*image.Gray
	upscaled   map[string]*image.Gray
	needUpload map[string]bool
	stampCache map[int]*stampSet
}

// NewVisionSurface creates a surface with no per-player buffers yet;
// buffers appear lazily on first access per player.
func NewVisionSurface(cfg SurfaceConfig) *VisionSurface {
	s := &VisionSurface{}
	s.Reinitialize(cfg)
	return s
}

// Reinitialize drops every per-player buffer and adopts the new grid
// dimensions. The stamp cache survives — patterns are config-independent.
func (s *VisionSurface) Reinitialize(cfg SurfaceConfig) {
	s.cfg = cfg
	s.sdf = make(map[string]*image.Gray)
	s.upscaled = make(map[string]*image.Gray)
	s.needUpload = make(map[string]bool)
	if s.stampCache == nil {
		s.stampCache = make(map[int]*stampSet)
	}
}

// Dispose releases all per-player buffers. Idempotent.
func (s *VisionSurface) Dispose() {
	s.sdf = make(map[string]*image.Gray)
	s.upscaled = make(map[string]*image.Gray)
	s.needUpload = make(map[string]bool)
}

// SDFTexture returns the player's smoothed fog buffer, allocating a
// zeroed GridWidth x GridHeight one on first call. The handle is stable
// until Dispose or Reinitialize.
func (s *VisionSurface) SDFTexture(player string) *image.Gray {
	img := s.sdf[player]
	if img == nil {
		img = image.NewGray(image.Rect(0, 0, s.cfg.GridWidth, s.cfg.GridHeight))
		s.sdf[player] = img
	}
	return img
}

// edgeStep is the per-missing-neighbor dimming applied at a boundary.
func (s *VisionSurface) edgeStep() float64 {
	maxDist := s.cfg.MaxDistance
	if maxDist < 1 {
		maxDist = 1
	}
	step := fullyLit * s.cfg.EdgeSoftness / (4 * maxDist)
	if step < 0 {
		step = 0
	}
	return step
}

// UpdateSDF recomputes the player's smoothed buffer from a visibility
// mask (VisionGrid.VisibilityMask layout) and flags it for re-upload.
// Invisible cells go black; visible cells start fully lit and lose
// edgeStep per invisible cardinal neighbor, so only cells on a
// visible/fogged boundary deviate from the interior value.
func (s *VisionSurface) UpdateSDF(player string, mask []float32) {
	w, h := s.cfg.GridWidth, s.cfg.GridHeight
	if len(mask) < w*h {
		return
	}
	img := s.SDFTexture(player)
	step := s.edgeStep()

	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			idx := gy*w + gx
			if mask[idx] <= 0 {
				img.Pix[idx] = 0
				continue
			}
			missing := 4 - popcount4(neighborMask(mask, w, h, gx, gy))
			v := fullyLit - float64(missing)*step
			if v < 0 {
				v = 0
			}
			img.Pix[idx] = uint8(v)
		}
	}
	s.needUpload[player] = true
}

// popcount4 counts set bits in a 4-bit mask.
func popcount4(m int) int {
	n := 0
	for b := 0; b < 4; b++ {
		if m&(1<<b) != 0 {
			n++
		}
	}
	return n
}

// TakeUploadNeeded reports whether the player's buffer changed since the
// renderer last uploaded it, and clears the flag.
func (s *VisionSurface) TakeUploadNeeded(player string) bool {
	if !s.needUpload[player] {
		return false
	}
	s.needUpload[player] = false
	return true
}

// EdgeFactor measures how close (gx,gy) sits to a visible/fogged
// transition in the player's smoothed buffer: 0 exactly for an unknown
// player, near 0 deep inside a uniform region, larger at boundaries.
// Computed as the largest absolute brightness difference against the
// four cardinal neighbors, normalized to [0,1].
func (s *VisionSurface) EdgeFactor(gx, gy int, player string) float64 {
	img := s.sdf[player]
	if img == nil {
		return 0
	}
	w, h := s.cfg.GridWidth, s.cfg.GridHeight
	if gx < 0 || gx >= w || gy < 0 || gy >= h {
		return 0
	}
	center := int(img.Pix[gy*w+gx])
	maxDiff := 0
	check := func(nx, ny int) {
		if nx < 0 || nx >= w || ny < 0 || ny >= h {
			return
		}
		d := center - int(img.Pix[ny*w+nx])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	check(gx, gy-1)
	check(gx+1, gy)
	check(gx, gy+1)
	check(gx-1, gy)
	return float64(maxDiff) / fullyLit
}

// CreateUpscaledTexture produces the player's render-ready upscaled fog
// buffer from a visibility mask. The buffer is owned by the surface and
// reused across calls at the same scale.
func (s *VisionSurface) CreateUpscaledTexture(player string, mask []float32, scale int) *image.Gray {
	outW := s.cfg.GridWidth * scale
	outH := s.cfg.GridHeight * scale
	img := s.upscaled[player]
	if img == nil || img.Bounds().Dx() != outW || img.Bounds().Dy() != outH {
		img = image.NewGray(image.Rect(0, 0, outW, outH))
		s.upscaled[player] = img
	}
	copy(img.Pix, s.UpscaleWithPatterns(mask, scale))
	s.needUpload[player] = true
	return img
}
