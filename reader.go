package jp2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// readerState tracks the raster reader state machine.
type readerState int

const (
	stateUninitialized readerState = iota
	stateConfigured
	stateStreaming
	stateExhausted
	stateClosed
)

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// TargetWidth and TargetHeight select the lowest resolution level that
	// is at least this large. Zero values select full resolution.
	TargetWidth  int
	TargetHeight int
}

// Reader assembles decoded tiles into interleaved 8-bit scanlines and
// serves them as a byte stream. Rows are produced one tile row at a time.
//
// A Reader owns its TileSource: the source is closed when the stream is
// exhausted, when a read fails, or on Close.
type Reader struct {
	ctx   context.Context
	src   TileSource
	md    *Metadata
	state readerState

	level          int
	width, height  int
	tilesX, tilesY int
	nc, stride     int
	comps          []ComponentInfo
	norms          []normalizer
	channels       []int

	ty  int // next tile row
	y0  int // image row at the start of buf
	buf []byte
	pos int
	blk Block

	err      error
	closeErr error
}

// NewReader returns a Reader over src configured for opts. md supplies the
// channel mapping and palette; it may be nil for an identity mapping. On
// error src is closed.
func NewReader(ctx context.Context, src TileSource, md *Metadata, opts *ReaderOptions) (*Reader, error) {
	r := &Reader{ctx: ctx, src: src, md: md}
	var w, h int
	if opts != nil {
		w, h = opts.TargetWidth, opts.TargetHeight
	}
	if err := r.SetTargetSize(w, h); err != nil {
		return nil, r.fail(err)
	}
	return r, nil
}

// selectLevel returns the lowest level whose size is at least w x h, or the
// full resolution level if none is.
func selectLevel(src TileSource, w, h int) int {
	full := max(src.NumLevels()-1, 0)
	if w <= 0 && h <= 0 {
		return full
	}
	for r := 0; r < full; r++ {
		lw, lh := src.LevelSize(r)
		if lw >= w && lh >= h {
			return r
		}
	}
	return full
}

// SetTargetSize reconfigures the reader for the lowest resolution level
// that covers w x h. It must be called before the first read.
func (r *Reader) SetTargetSize(w, h int) error {
	if r.state > stateConfigured {
		return errors.New("jp2: target size set after reading started")
	}
	level := selectLevel(r.src, w, h)
	if err := r.src.SetLevel(level); err != nil {
		return fmt.Errorf("selecting resolution level %d: %w", level, err)
	}
	if err := r.configure(); err != nil {
		return err
	}
	r.level = level
	r.state = stateConfigured

	slog.Debug("jp2: resolution level selected",
		slog.Int("level", level),
		slog.Int("width", r.width),
		slog.Int("height", r.height),
		slog.Int("components", r.nc))
	return nil
}

func (r *Reader) configure() error {
	r.width, r.height = r.src.ImageSize()
	r.tilesX, r.tilesY = r.src.NumTiles()
	r.nc = r.src.NumComponents()
	r.stride = r.width * r.nc
	if r.nc == 0 {
		return fmt.Errorf("%w: codestream has no components", ErrMalformedBox)
	}

	// Palette indices are served unscaled in a single byte.
	raw := r.md != nil && r.md.Palette != nil
	if raw && r.md.Palette.NumEntries() > 256 {
		return fmt.Errorf("%w: palette with %d entries", ErrUnsupportedFeature, r.md.Palette.NumEntries())
	}
	r.comps = make([]ComponentInfo, r.nc)
	r.norms = make([]normalizer, r.nc)
	for c := range r.comps {
		ci := r.src.Component(c)
		if raw && ci.Depth > 8 {
			return fmt.Errorf("%w: %d-bit palette index in component %d", ErrUnsupportedFeature, ci.Depth, c)
		}
		ci.SubX, ci.SubY = max(ci.SubX, 1), max(ci.SubY, 1)
		r.comps[c] = ci
		r.norms[c] = newNormalizer(ci, raw)
	}

	r.channels = make([]int, r.nc)
	for c := range r.channels {
		r.channels[c] = c
	}
	if r.md != nil {
		if r.md.NumComponents != r.nc {
			return fmt.Errorf("%w: image header has %d components, codestream %d", ErrMalformedBox, r.md.NumComponents, r.nc)
		}
		copy(r.channels, r.md.Channels)
	}
	for c, ch := range r.channels {
		switch {
		case ch < 0:
			r.channels[c] = r.nc - 1
		case ch >= r.nc:
			return fmt.Errorf("%w: component %d mapped to channel %d of %d", ErrMalformedBox, c, ch, r.nc)
		}
	}
	return nil
}

// Width returns the output width at the selected level.
func (r *Reader) Width() int { return r.width }

// Height returns the output height at the selected level.
func (r *Reader) Height() int { return r.height }

// NumComponents returns the number of interleaved channels per pixel.
func (r *Reader) NumComponents() int { return r.nc }

// Stride returns the length of one output scanline.
func (r *Reader) Stride() int { return r.stride }

// Level returns the selected resolution level.
func (r *Reader) Level() int { return r.level }

func interrupted(err error) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, err)
}

// nextRow decodes the next tile row into buf. It reports false once every
// tile row has been produced.
func (r *Reader) nextRow() (bool, error) {
	if r.state == stateExhausted {
		return false, nil
	}
	if r.ty >= r.tilesY || r.y0 >= r.height {
		r.free()
		r.state = stateExhausted
		return false, nil
	}
	r.state = stateStreaming

	_, rh := r.src.TileSize(0, r.ty)
	rh = min(rh, r.height-r.y0)

	n := rh * r.stride
	if cap(r.buf) < n {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	clear(r.buf)

	x0 := 0
	for tx := 0; tx < r.tilesX && x0 < r.width; tx++ {
		if err := r.ctx.Err(); err != nil {
			return false, interrupted(err)
		}
		tw, _ := r.src.TileSize(tx, r.ty)
		tw = min(tw, r.width-x0)
		for c := range r.comps {
			if err := r.decodeTileComponent(tx, c, x0, tw, rh); err != nil {
				return false, err
			}
		}
		x0 += tw
	}

	slog.Debug("jp2: tile row decoded",
		slog.Int("tileRow", r.ty),
		slog.Int("y", r.y0),
		slog.Int("rows", rh))

	r.ty++
	r.y0 += rh
	r.pos = 0
	return true, nil
}

// decodeTileComponent pulls the final block for component c of tile
// (tx, r.ty) and scatters it into the tile's region of buf.
func (r *Reader) decodeTileComponent(tx, c, x0, tw, rh int) error {
	blk := &r.blk
	blk.Progressive = false
	for {
		if err := r.src.DecodeBlock(tx, r.ty, c, blk); err != nil {
			return fmt.Errorf("decoding tile (%d,%d) component %d: %w", tx, r.ty, c, err)
		}
		if !blk.Progressive {
			break
		}
		if err := r.ctx.Err(); err != nil {
			return interrupted(err)
		}
	}
	if blk.Width > 0 && blk.Height > 0 && blk.Offset+(blk.Height-1)*blk.Scan+blk.Width > len(blk.Data) {
		return fmt.Errorf("tile (%d,%d) component %d: %dx%d block exceeds %d samples",
			tx, r.ty, c, blk.Width, blk.Height, len(blk.Data))
	}

	ci := r.comps[c]
	ch := r.channels[c]
	norm := &r.norms[c]
	// Component samples sit on multiples of the subsampling factor, which
	// need not coincide with the tile origin.
	ox := gridOffset(x0, ci.SubX)
	oy := gridOffset(r.y0, ci.SubY)
	for j := 0; j < blk.Height; j++ {
		y := oy + j*ci.SubY
		if y >= rh {
			break
		}
		row := y * r.stride
		for i := 0; i < blk.Width; i++ {
			x := x0 + ox + i*ci.SubX
			if x >= x0+tw {
				break
			}
			r.buf[row+x*r.nc+ch] = norm.apply(blk.At(i, j))
		}
	}

	if ci.SubX == 1 && ci.SubY == 1 {
		return nil
	}
	return interpolate(r.ctx, r.buf, r.stride, r.nc, tileRegion{
		x0: x0, y0: 0,
		ox: ox, oy: oy,
		w: tw, h: rh,
		cw: blk.Width, ch: blk.Height,
		csx: ci.SubX, csy: ci.SubY,
		channel: ch,
	})
}

// fill makes sure unread bytes are buffered. It returns io.EOF at the end
// of the image.
func (r *Reader) fill() error {
	if r.err != nil {
		return r.err
	}
	if r.state == stateClosed {
		return ErrClosed
	}
	for r.pos >= len(r.buf) {
		ok, err := r.nextRow()
		if err != nil {
			return r.fail(err)
		}
		if !ok {
			return io.EOF
		}
	}
	return nil
}

// Read reads interleaved 8-bit samples in raster order.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := r.fill(); err != nil {
		return 0, err
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

// ReadByte reads a single sample.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Skip discards up to n bytes and returns the number discarded. A row is
// decoded first if none is buffered yet.
func (r *Reader) Skip(n int64) (int64, error) {
	if r.buf == nil {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	var skipped int64
	for skipped < n {
		if err := r.fill(); err != nil {
			return skipped, err
		}
		k := min(int64(len(r.buf)-r.pos), n-skipped)
		r.pos += int(k)
		skipped += k
	}
	return skipped, nil
}

// Close releases the tile source. Reads after Close fail with ErrClosed.
func (r *Reader) Close() error {
	if r.state == stateClosed {
		return nil
	}
	r.free()
	r.state = stateClosed
	return r.closeErr
}

// fail records err for every later read and releases the source.
func (r *Reader) fail(err error) error {
	r.err = err
	r.free()
	return err
}

func (r *Reader) free() {
	if r.src != nil {
		r.closeErr = r.src.Close()
		r.src = nil
	}
	r.buf = nil
	r.pos = 0
	r.blk = Block{}
}
