package jp2

import "context"

// tileRegion is the part of the row buffer covered by one tile of one
// subsampled component.
type tileRegion struct {
	x0, y0   int // tile origin; y0 is relative to the row buffer
	ox, oy   int // offset of the first decoded sample from the origin
	w, h     int // clipped tile size on the image grid
	cw, ch   int // decoded samples per row and column
	csx, csy int
	channel  int
}

// gridOffset returns the distance from image coordinate p to the next
// multiple of the subsampling factor s.
func gridOffset(p, s int) int {
	return (s - p%s) % s
}

// gridPos locates offset d along one axis of decoded samples spaced s apart.
// It returns the sample at or before d, the distance past it, and whether d
// is itself a decoded sample. Offsets outside the decoded run clamp to the
// nearest sample.
func gridPos(d, s, last int) (i, frac int, on bool) {
	if d < 0 {
		return 0, 0, false
	}
	i, frac = d/s, d%s
	if i > last {
		return last, 0, false
	}
	return i, frac, frac == 0
}

// interpolate fills the positions of a subsampled component that lie
// between decoded samples. Each position gets the bilinear blend of the four
// surrounding decoded samples; at the tile edges the missing corners repeat
// the nearest decoded one.
func interpolate(ctx context.Context, buf []byte, stride, nc int, t tileRegion) error {
	if t.cw == 0 || t.ch == 0 || t.ox >= t.w || t.oy >= t.h {
		return nil
	}
	// Last decoded sample that lies inside the clipped region.
	lastI := min(t.cw-1, (t.w-1-t.ox)/t.csx)
	lastJ := min(t.ch-1, (t.h-1-t.oy)/t.csy)
	area := t.csx * t.csy
	half := area / 2

	at := func(i, j int) int {
		return int(buf[(t.y0+t.oy+j*t.csy)*stride+(t.x0+t.ox+i*t.csx)*nc+t.channel])
	}

	for y := 0; y < t.h; y++ {
		if err := ctx.Err(); err != nil {
			return interrupted(err)
		}
		j, dy, onRow := gridPos(y-t.oy, t.csy, lastJ)
		j1 := min(j+1, lastJ)
		row := (t.y0 + y) * stride
		for x := 0; x < t.w; x++ {
			i, dx, onCol := gridPos(x-t.ox, t.csx, lastI)
			if onRow && onCol {
				continue
			}
			i1 := min(i+1, lastI)
			a, b := at(i, j), at(i1, j)
			c, d := at(i, j1), at(i1, j1)
			v := a*(t.csx-dx)*(t.csy-dy) + b*dx*(t.csy-dy) + c*(t.csx-dx)*dy + d*dx*dy
			buf[row+(t.x0+x)*nc+t.channel] = uint8((v + half) / area)
		}
	}
	return nil
}
