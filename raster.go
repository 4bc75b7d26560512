package jp2

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/mrjoshuak/go-jp2/box"
	"github.com/mrjoshuak/go-jp2/icc"
)

// Raster is a fully decoded 8-bit image with interleaved channels.
type Raster struct {
	Width      int
	Height     int
	Components int
	Pix        []byte

	ColorSpace ColorSpace
	Profile    *icc.Profile

	// Palette is set when Pix holds palette indices.
	Palette color.Palette
}

// ToRaster drains the reader into a Raster. The colour space is checked
// before any tile is decoded.
func (r *Reader) ToRaster() (*Raster, error) {
	cs, err := r.resolveColorSpace()
	if err != nil {
		r.Close()
		return nil, err
	}

	ras := &Raster{
		Width:      r.width,
		Height:     r.height,
		Components: r.nc,
		Pix:        make([]byte, r.width*r.height*r.nc),
		ColorSpace: cs,
	}
	if r.md != nil {
		ras.Profile = r.md.Profile
		if r.md.Palette != nil && cs == ColorSpaceSRGB && r.md.Palette.NumColumns() >= 3 {
			ras.Palette = paletteModel(r.md.Palette, r.md.ComponentMap)
		}
	}

	if _, err := io.ReadFull(r, ras.Pix); err != nil {
		r.Close()
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("closing tile source: %w", err)
	}
	return ras, nil
}

func (r *Reader) resolveColorSpace() (ColorSpace, error) {
	if r.md != nil {
		return r.md.ResolvedColorSpace()
	}
	md := Metadata{NumComponents: r.nc, ColorSpace: ColorSpaceUnspecified}
	return md.ResolvedColorSpace()
}

// paletteModel converts the palette to 8-bit colours. The component map, if
// any, selects which columns feed red, green, blue and alpha.
func paletteModel(p *box.PaletteBox, cmap *box.ComponentMapBox) color.Palette {
	cols := []int{0, 1, 2}
	if p.NumColumns() >= 4 {
		cols = append(cols, 3)
	}
	if cmap != nil {
		var mapped []int
		for _, m := range cmap.Mappings {
			if m.MappingType == box.MapPalette && int(m.PaletteColumn) < p.NumColumns() {
				mapped = append(mapped, int(m.PaletteColumn))
			}
		}
		if len(mapped) >= 3 {
			cols = mapped[:min(len(mapped), 4)]
		}
	}

	norms := make([]normalizer, len(cols))
	for i, c := range cols {
		norms[i] = newNormalizer(ComponentInfo{Depth: p.Depth(c)}, false)
		if !p.Signed(c) {
			// Unsigned entries carry no level shift.
			norms[i].mid = 0
		}
	}

	n := min(p.NumEntries(), 256)
	pal := make(color.Palette, n)
	for i := 0; i < n; i++ {
		c := color.NRGBA{A: 0xFF}
		c.R = norms[0].apply(p.Value(i, cols[0]))
		c.G = norms[1].apply(p.Value(i, cols[1]))
		c.B = norms[2].apply(p.Value(i, cols[2]))
		if len(cols) == 4 {
			c.A = norms[3].apply(p.Value(i, cols[3]))
		}
		pal[i] = c
	}
	return pal
}

// Image returns the raster as an image.Image: Paletted for palette rasters,
// Gray for one channel, NRGBA for grey with alpha or RGB with alpha, RGBA
// for RGB and CMYK for four-channel ICC CMYK data.
func (ras *Raster) Image() (image.Image, error) {
	rect := image.Rect(0, 0, ras.Width, ras.Height)
	n := ras.Width * ras.Height

	if ras.Palette != nil && ras.Components == 1 {
		return &image.Paletted{Pix: ras.Pix, Stride: ras.Width, Rect: rect, Palette: ras.Palette}, nil
	}

	switch ras.Components {
	case 1:
		return &image.Gray{Pix: ras.Pix, Stride: ras.Width, Rect: rect}, nil
	case 2:
		img := image.NewNRGBA(rect)
		for i := 0; i < n; i++ {
			v, a := ras.Pix[2*i], ras.Pix[2*i+1]
			copy(img.Pix[4*i:], []byte{v, v, v, a})
		}
		return img, nil
	case 3:
		img := image.NewRGBA(rect)
		for i := 0; i < n; i++ {
			copy(img.Pix[4*i:], ras.Pix[3*i:3*i+3])
			img.Pix[4*i+3] = 0xFF
		}
		return img, nil
	case 4:
		if ras.Profile != nil && ras.Profile.ColorSpace == icc.ColorSpaceCMYK {
			return &image.CMYK{Pix: ras.Pix, Stride: 4 * ras.Width, Rect: rect}, nil
		}
		return &image.NRGBA{Pix: ras.Pix, Stride: 4 * ras.Width, Rect: rect}, nil
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedColorSpace, ras.Components)
	}
}

// Decode reads a JP2 file from r and decodes its first codestream to a
// Raster. open supplies the decoder for the codestream box.
func Decode(ctx context.Context, r io.Reader, open func(*box.CodestreamBox) (TileSource, error), opts *ReaderOptions) (*Raster, error) {
	f, err := ReadFile(r)
	if err != nil {
		return nil, err
	}
	md, err := f.Metadata()
	if err != nil {
		return nil, err
	}
	jp2c := f.Codestream()
	if jp2c == nil {
		return nil, fmt.Errorf("%w: jp2c", ErrMissingRequiredBox)
	}
	src, err := open(jp2c)
	if err != nil {
		return nil, fmt.Errorf("opening codestream: %w", err)
	}
	rd, err := NewReader(ctx, src, md, opts)
	if err != nil {
		return nil, err
	}
	return rd.ToRaster()
}
