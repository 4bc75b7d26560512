package jp2

import (
	"math"

	"github.com/mrjoshuak/go-jp2/internal/clamp"
)

// normalizer converts decoded samples of one component to 8 bits.
type normalizer struct {
	fracBits int
	mid      int32
	max      int32
	lut      []uint8 // depth < 8
	shift    int     // depth > 8
	raw      bool    // palette indices pass through unscaled
}

func newNormalizer(ci ComponentInfo, raw bool) normalizer {
	n := normalizer{
		fracBits: max(ci.FracBits, 0),
		raw:      raw,
	}
	if ci.Depth > 0 {
		n.mid = int32(1) << (ci.Depth - 1)
		n.max = int32(1)<<ci.Depth - 1
	}
	switch {
	case raw:
	case ci.Depth < 8:
		n.lut = depthTable(ci.Depth)
	case ci.Depth > 8:
		n.shift = ci.Depth - 8
	}
	return n
}

// depthTable maps every value of a depth-bit sample to 8 bits.
func depthTable(depth int) []uint8 {
	size := 1 << depth
	t := make([]uint8, size)
	if size == 1 {
		return t
	}
	for i := range t {
		t[i] = uint8(math.Round(float64(i) * 255 / float64(size-1)))
	}
	return t
}

// apply shifts out fractional bits, removes the level shift and scales.
func (n *normalizer) apply(s int32) uint8 {
	v := s>>n.fracBits + n.mid
	switch {
	case n.raw:
		return clamp.Uint8(v)
	case n.lut != nil:
		return n.lut[clamp.To(v, 0, n.max)]
	case n.shift > 0:
		return clamp.Uint8(v >> n.shift)
	default:
		return clamp.Uint8(v)
	}
}
