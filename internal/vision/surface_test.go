package vision

import "testing"

func testSurfaceConfig(w, h int) SurfaceConfig {
	return SurfaceConfig{GridWidth: w, GridHeight: h, CellSize: 2, MaxDistance: 2, EdgeSoftness: 1}
}

func TestAAPatterns_TableShape(t *testing.T) {
	table := AAPatterns()
	if len(table) != 16 {
		t.Fatalf("expected 16 patterns, got %d", len(table))
	}
	for mask, p := range table {
		if len(p) != 16 {
			t.Fatalf("pattern %04b has %d cells, want 16", mask, len(p))
		}
	}
}

func TestAAPatterns_IsolatedCell(t *testing.T) {
	p := AAPatterns()[0b0000]
	corners := []int{0*4 + 0, 0*4 + 3, 3*4 + 0, 3*4 + 3}
	for _, idx := range corners {
		if p[idx] != 128 {
			t.Fatalf("isolated stamp corner [%d] = %d, want 128", idx, p[idx])
		}
	}
	centers := []int{1*4 + 1, 1*4 + 2, 2*4 + 1, 2*4 + 2}
	for _, idx := range centers {
		if p[idx] != 255 {
			t.Fatalf("isolated stamp center [%d] = %d, want 255", idx, p[idx])
		}
	}
}

func TestAAPatterns_AllNeighborsVisible(t *testing.T) {
	p := AAPatterns()[0b1111]
	for idx, v := range p {
		if v != 255 {
			t.Fatalf("fully surrounded stamp [%d] = %d, want uniform 255", idx, v)
		}
	}
}

func TestAAPatterns_Memoized(t *testing.T) {
	if AAPatterns() != AAPatterns() {
		t.Fatal("pattern table should be computed once and shared")
	}
}

func TestUpscale_AllZeroMask(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(8, 8))
	out := s.UpscaleWithPatterns(make([]float32, 64), 4)
	if len(out) != 32*32 {
		t.Fatalf("output length %d, want %d", len(out), 32*32)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("all-zero mask produced nonzero at %d", i)
		}
	}
}

func TestUpscale_AllOneMask(t *testing.T) {
	w, h, scale := 8, 8, 4
	s := NewVisionSurface(testSurfaceConfig(w, h))
	mask := make([]float32, w*h)
	for i := range mask {
		mask[i] = 1
	}
	out := s.UpscaleWithPatterns(mask, scale)
	if len(out) != w*scale*h*scale {
		t.Fatalf("output length %d, want %d", len(out), w*scale*h*scale)
	}

	// Interior cells have all four neighbors visible: uniformly bright.
	for gy := 1; gy < h-1; gy++ {
		for gx := 1; gx < w-1; gx++ {
			for py := 0; py < scale; py++ {
				for px := 0; px < scale; px++ {
					v := out[(gy*scale+py)*w*scale+gx*scale+px]
					if v != 255 {
						t.Fatalf("interior block (%d,%d) pixel (%d,%d) = %d, want 255", gx, gy, px, py, v)
					}
				}
			}
		}
	}

	// Map border cells lose their off-grid neighbors and dim toward the edge.
	if out[0] == 255 {
		t.Fatal("top-left corner pixel should be dimmed by the map border")
	}
}

func TestUpscale_NonNativeScale(t *testing.T) {
	w, h, scale := 6, 6, 8
	s := NewVisionSurface(testSurfaceConfig(w, h))
	mask := make([]float32, w*h)
	for i := range mask {
		mask[i] = 1
	}
	out := s.UpscaleWithPatterns(mask, scale)
	if len(out) != w*scale*h*scale {
		t.Fatalf("output length %d, want %d", len(out), w*scale*h*scale)
	}
	// A resampled all-255 stamp stays all 255: interior must be seamless.
	center := out[(3*scale+scale/2)*w*scale+2*scale+scale/2]
	if center != 255 {
		t.Fatalf("interior pixel at non-native scale = %d, want 255", center)
	}
}

func TestSDFTexture_LazyAndStable(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(16, 12))
	img := s.SDFTexture("player1")
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Fatalf("buffer bounds %v, want 16x12", img.Bounds())
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("fresh buffer must be zeroed, pixel %d = %d", i, v)
		}
	}
	if s.SDFTexture("player1") != img {
		t.Fatal("repeated calls must return the same handle")
	}
	if s.SDFTexture("player2") == img {
		t.Fatal("players must not share buffers")
	}
}

// blobMask builds a w*h mask with a visible rectangle [x0,x1)x[y0,y1).
func blobMask(w, h, x0, y0, x1, y1 int) []float32 {
	mask := make([]float32, w*h)
	for gy := y0; gy < y1; gy++ {
		for gx := x0; gx < x1; gx++ {
			mask[gy*w+gx] = 1
		}
	}
	return mask
}

func TestUpdateSDF_InteriorSaturates(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(16, 16))
	s.UpdateSDF("player1", blobMask(16, 16, 2, 2, 14, 14))

	img := s.SDFTexture("player1")
	if img.Pix[8*16+8] != 255 {
		t.Fatalf("deep interior cell = %d, want fully lit 255", img.Pix[8*16+8])
	}
	if img.Pix[0] != 0 {
		t.Fatal("fogged cell must be 0")
	}
	// A cell on the blob boundary is visible but dimmer than the interior.
	edge := img.Pix[2*16+8]
	if edge == 0 || edge == 255 {
		t.Fatalf("boundary cell = %d, want strictly between 0 and 255", edge)
	}
}

func TestEdgeFactor_Contract(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(16, 16))

	if s.EdgeFactor(8, 8, "ghost") != 0 {
		t.Fatal("unknown player must read exactly 0")
	}

	s.UpdateSDF("player1", blobMask(16, 16, 2, 2, 14, 14))
	interior := s.EdgeFactor(8, 8, "player1")
	boundary := s.EdgeFactor(2, 8, "player1")
	if interior >= 0.01 {
		t.Fatalf("solid interior edge factor = %f, want near 0", interior)
	}
	if boundary <= interior {
		t.Fatalf("boundary (%f) must exceed interior (%f)", boundary, interior)
	}
	if s.EdgeFactor(-1, 0, "player1") != 0 || s.EdgeFactor(0, 99, "player1") != 0 {
		t.Fatal("out-of-range cells must read 0")
	}
}

func TestUpdateSDF_MarksForUpload(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(8, 8))
	if s.TakeUploadNeeded("player1") {
		t.Fatal("no upload needed before any update")
	}
	s.UpdateSDF("player1", make([]float32, 64))
	if !s.TakeUploadNeeded("player1") {
		t.Fatal("update must flag the buffer for upload")
	}
	if s.TakeUploadNeeded("player1") {
		t.Fatal("TakeUploadNeeded must clear the flag")
	}
}

func TestCreateUpscaledTexture_SizeAndReuse(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(8, 8))
	mask := blobMask(8, 8, 2, 2, 6, 6)

	img := s.CreateUpscaledTexture("player1", mask, 4)
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Fatalf("upscaled bounds %v, want 32x32", img.Bounds())
	}
	if s.CreateUpscaledTexture("player1", mask, 4) != img {
		t.Fatal("same scale must reuse the owned buffer")
	}
	if s.CreateUpscaledTexture("player1", mask, 8) == img {
		t.Fatal("a new scale must allocate a matching buffer")
	}
}

func TestSurface_ReinitializeDropsBuffers(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(8, 8))
	old := s.SDFTexture("player1")

	s.Reinitialize(testSurfaceConfig(16, 16))
	img := s.SDFTexture("player1")
	if img == old {
		t.Fatal("reinitialize must drop old buffers")
	}
	if img.Bounds().Dx() != 16 {
		t.Fatalf("new buffer must use new dimensions, got %v", img.Bounds())
	}
}

func TestSurface_DisposeIdempotent(t *testing.T) {
	s := NewVisionSurface(testSurfaceConfig(8, 8))
	s.SDFTexture("player1")
	s.Dispose()
	s.Dispose()
	if s.EdgeFactor(0, 0, "player1") != 0 {
		t.Fatal("disposed player must read as unknown")
	}
}
