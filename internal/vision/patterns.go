package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// Neighbor bits for the 4-bit AA pattern mask.
const (
	neighborN = 1 << iota
	neighborE
	neighborS
	neighborW
)

// patternSize is the native edge length of an AA stamp.
const patternSize = 4

// Stamp brightness per number of exposed borders a pixel sits on.
// 0b1111 stamps are uniform 255 so adjacent stamps tile seamlessly.
var borderBrightness = [3]uint8{255, 192, 128}

// AAPattern is one 4x4 anti-aliasing stamp, row-major.
type AAPattern [patternSize * patternSize]uint8

// aaPatterns is the memoized 16-entry stamp table, built once.
var aaPatterns *[16]AAPattern

// AAPatterns returns the stamp for every 4-bit NESW neighbor mask. An
// exposed side (neighbor not visible) dims the stamp pixels along that
// side: one exposed border gives 192, a corner on two gives 128. With
// all four neighbors visible the stamp is uniformly 255.
func AAPatterns() *[16]AAPattern {
	if aaPatterns != nil {
		return aaPatterns
	}
	var table [16]AAPattern
	for mask := 0; mask < 16; mask++ {
		for py := 0; py < patternSize; py++ {
			for px := 0; px < patternSize; px++ {
				exposed := 0
				if mask&neighborN == 0 && py == 0 {
					exposed++
				}
				if mask&neighborS == 0 && py == patternSize-1 {
					exposed++
				}
				if mask&neighborW == 0 && px == 0 {
					exposed++
				}
				if mask&neighborE == 0 && px == patternSize-1 {
					exposed++
				}
				table[mask][py*patternSize+px] = borderBrightness[exposed]
			}
		}
	}
	aaPatterns = &table
	return aaPatterns
}

// neighborMask builds the 4-bit visibility mask of (gx,gy)'s cardinal
// neighbors from a row-major visibility mask. Off-grid neighbors count
// as not visible.
func neighborMask(mask []float32, w, h, gx, gy int) int {
	bits := 0
	if gy > 0 && mask[(gy-1)*w+gx] > 0 {
		bits |= neighborN
	}
	if gx < w-1 && mask[gy*w+gx+1] > 0 {
		bits |= neighborE
	}
	if gy < h-1 && mask[(gy+1)*w+gx] > 0 {
		bits |= neighborS
	}
	if gx > 0 && mask[gy*w+gx-1] > 0 {
		bits |= neighborW
	}
	return bits
}

// scalePattern resamples a native 4x4 stamp to scale x scale.
func scalePattern(p AAPattern, scale int) []uint8 {
	src := image.NewGray(image.Rect(0, 0, patternSize, patternSize))
	copy(src.Pix, p[:])
	dst := image.NewGray(image.Rect(0, 0, scale, scale))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	out := make([]uint8, scale*scale)
	copy(out, dst.Pix)
	return out
}

// stampSet is the 16 stamps resampled to one scale.
type stampSet [16][]uint8

// stampsAtScale returns the pattern table at the requested scale, using
// the native table directly for scale 4 and a cached bilinear resample
// otherwise.
func (s *VisionSurface) stampsAtScale(scale int) *stampSet {
	if set, ok := s.stampCache[scale]; ok {
		return set
	}
	native := AAPatterns()
	set := &stampSet{}
	for mask := 0; mask < 16; mask++ {
		if scale == patternSize {
			set[mask] = native[mask][:]
		} else {
			set[mask] = scalePattern(native[mask], scale)
		}
	}
	s.stampCache[scale] = set
	return set
}

// UpscaleWithPatterns expands a row-major visibility mask by the given
// integer scale. Invisible cells produce zero blocks; visible cells are
// stamped with the AA pattern selected by their 4-neighbor mask, so fog
// edges come out soft without a per-pixel distance computation.
func (s *VisionSurface) UpscaleWithPatterns(mask []float32, scale int) []uint8 {
	w, h := s.cfg.GridWidth, s.cfg.GridHeight
	out := make([]uint8, w*scale*h*scale)
	if scale <= 0 || len(mask) < w*h {
		return out
	}
	stamps := s.stampsAtScale(scale)
	outW := w * scale

	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			if mask[gy*w+gx] <= 0 {
				continue
			}
			stamp := stamps[neighborMask(mask, w, h, gx, gy)]
			baseX := gx * scale
			baseY := gy * scale
			for py := 0; py < scale; py++ {
				row := (baseY+py)*outW + baseX
				copy(out[row:row+scale], stamp[py*scale:(py+1)*scale])
			}
		}
	}
	return out
}
