package vision

import "testing"

func BenchmarkUpdateCaster_CrossCell(b *testing.B) {
	g := NewVisionGrid(testConfig())
	g.UpdateCaster(1, "player1", 30, 32, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Alternate between two cells so every update crosses a boundary.
		x := 30.0
		if i%2 == 1 {
			x = 34.0
		}
		g.UpdateCaster(1, "player1", x, 32, 10)
	}
}

func BenchmarkUpdateCaster_SubCell(b *testing.B) {
	g := NewVisionGrid(testConfig())
	g.UpdateCaster(1, "player1", 32, 32, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Wiggle inside cell (16,16): the incremental fast path.
		g.UpdateCaster(1, "player1", 32.2+0.1*float64(i%4), 32.5, 10)
	}
}

func BenchmarkUpscaleWithPatterns(b *testing.B) {
	s := NewVisionSurface(testSurfaceConfig(64, 64))
	mask := blobMask(64, 64, 8, 8, 56, 56)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.UpscaleWithPatterns(mask, 4)
	}
}

func BenchmarkUpdateSDF(b *testing.B) {
	s := NewVisionSurface(testSurfaceConfig(64, 64))
	mask := blobMask(64, 64, 8, 8, 56, 56)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.UpdateSDF("player1", mask)
	}
}
