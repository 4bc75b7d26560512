package jp2

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-jp2/box"
	"github.com/mrjoshuak/go-jp2/icc"
)

func TestToRaster_Gray(t *testing.T) {
	src := grayPlane(2, 2, []int32{0, 64, 128, 255})
	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)

	ras, err := rd.ToRaster()
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceGray, ras.ColorSpace)
	assert.Equal(t, 1, ras.Components)
	assert.Equal(t, []byte{0, 64, 128, 255}, ras.Pix)
	assert.Equal(t, 1, src.closed)

	img, err := ras.Image()
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok, "got %T", img)
	assert.Equal(t, color.Gray{Y: 128}, gray.GrayAt(0, 1))
}

func TestToRaster_UnsupportedColorSpace(t *testing.T) {
	tests := []struct {
		name string
		md   *Metadata
	}{
		{"cmyk", &Metadata{NumComponents: 1, Channels: []int{0}, ColorSpace: ColorSpaceCMYK}},
		{"icc without profile", &Metadata{NumComponents: 1, Channels: []int{0}, ColorSpace: ColorSpaceICC}},
		{"unknown", &Metadata{NumComponents: 1, Channels: []int{0}, ColorSpace: ColorSpaceUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := grayPlane(2, 2, make([]int32, 4))
			rd, err := NewReader(context.Background(), src, tt.md, nil)
			require.NoError(t, err)
			_, err = rd.ToRaster()
			assert.ErrorIs(t, err, ErrUnsupportedColorSpace)
			assert.Zero(t, src.decodes, "nothing decoded")
			assert.Equal(t, 1, src.closed)
		})
	}
}

func TestToRaster_Palette(t *testing.T) {
	pclr, err := box.NewPaletteBox([]int{8, 8, 8}, nil, [][]int32{{255, 0, 0}, {0, 0, 255}})
	require.NoError(t, err)
	md := &Metadata{
		NumComponents: 1,
		Channels:      []int{0},
		Palette:       pclr,
		ComponentMap:  box.NewPaletteMapBox(0, 3),
		ColorSpace:    ColorSpaceSRGB,
	}
	rd, err := NewReader(context.Background(), grayPlane(2, 2, []int32{0, 1, 1, 0}), md, nil)
	require.NoError(t, err)
	ras, err := rd.ToRaster()
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 1, 1, 0}, ras.Pix)
	require.Len(t, ras.Palette, 2)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, ras.Palette[0])
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, ras.Palette[1])

	img, err := ras.Image()
	require.NoError(t, err)
	p, ok := img.(*image.Paletted)
	require.True(t, ok, "got %T", img)
	assert.Equal(t, uint8(1), p.ColorIndexAt(1, 0))
}

func TestPaletteModel(t *testing.T) {
	// 12-bit columns in a swapped order with an alpha column.
	pclr, err := box.NewPaletteBox([]int{12, 12, 12, 8}, nil, [][]int32{{4095, 0, 2048, 128}})
	require.NoError(t, err)
	cmap := &box.ComponentMapBox{Mappings: []box.ComponentMapping{
		{MappingType: box.MapPalette, PaletteColumn: 2},
		{MappingType: box.MapPalette, PaletteColumn: 1},
		{MappingType: box.MapPalette, PaletteColumn: 0},
		{MappingType: box.MapPalette, PaletteColumn: 3},
	}}
	pal := paletteModel(pclr, cmap)
	require.Len(t, pal, 1)
	assert.Equal(t, color.NRGBA{R: 128, G: 0, B: 255, A: 128}, pal[0])
}

func TestRaster_Image(t *testing.T) {
	t.Run("gray alpha", func(t *testing.T) {
		ras := &Raster{Width: 1, Height: 1, Components: 2, Pix: []byte{10, 20}}
		img, err := ras.Image()
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{R: 10, G: 10, B: 10, A: 20}, img.(*image.NRGBA).NRGBAAt(0, 0))
	})
	t.Run("rgb", func(t *testing.T) {
		ras := &Raster{Width: 1, Height: 1, Components: 3, Pix: []byte{1, 2, 3}}
		img, err := ras.Image()
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, img.(*image.RGBA).RGBAAt(0, 0))
	})
	t.Run("rgba", func(t *testing.T) {
		ras := &Raster{Width: 1, Height: 1, Components: 4, Pix: []byte{1, 2, 3, 4}}
		img, err := ras.Image()
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, img.(*image.NRGBA).NRGBAAt(0, 0))
	})
	t.Run("cmyk", func(t *testing.T) {
		profile, err := icc.Parse(iccProfile(icc.ColorSpaceCMYK))
		require.NoError(t, err)
		ras := &Raster{Width: 1, Height: 1, Components: 4, Pix: []byte{1, 2, 3, 4}, ColorSpace: ColorSpaceICC, Profile: profile}
		img, err := ras.Image()
		require.NoError(t, err)
		assert.Equal(t, color.CMYK{C: 1, M: 2, Y: 3, K: 4}, img.(*image.CMYK).CMYKAt(0, 0))
	})
	t.Run("too many channels", func(t *testing.T) {
		ras := &Raster{Width: 1, Height: 1, Components: 5, Pix: make([]byte, 5)}
		_, err := ras.Image()
		assert.ErrorIs(t, err, ErrUnsupportedColorSpace)
	})
}

func TestDecode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(img.Pix, []byte{0, 50, 100, 150, 200, 250})

	var buf bytes.Buffer
	enc := &fakeEncoder{}
	require.NoError(t, EncodeImage(context.Background(), &buf, img, enc, nil))

	open := func(jp2c *box.CodestreamBox) (TileSource, error) {
		assert.Equal(t, enc.out, jp2c.Data)
		return sourceFrom(enc.src), nil
	}
	ras, err := Decode(context.Background(), &buf, open, nil)
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceGray, ras.ColorSpace)
	assert.Equal(t, 3, ras.Width)
	assert.Equal(t, 2, ras.Height)
	assert.Equal(t, img.Pix, ras.Pix)
}

func TestDecode_OpenError(t *testing.T) {
	open := func(*box.CodestreamBox) (TileSource, error) { return nil, errDecode }
	_, err := Decode(context.Background(), bytes.NewReader(minimalBytes(t)), open, nil)
	assert.ErrorIs(t, err, errDecode)
}
