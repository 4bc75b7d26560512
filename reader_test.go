package jp2

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-jp2/box"
)

func TestSelectLevel(t *testing.T) {
	src := &fakeSource{levels: [][2]int{{64, 64}, {128, 128}, {256, 256}, {512, 512}}}
	tests := []struct {
		w, h int
		want int
	}{
		{100, 100, 1},
		{128, 128, 1},
		{129, 10, 2},
		{0, 0, 3},
		{1000, 1000, 3},
		{1, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, selectLevel(src, tt.w, tt.h), "target %dx%d", tt.w, tt.h)
	}
}

func TestReader_SetTargetSize(t *testing.T) {
	src := &fakeSource{
		levels: [][2]int{{64, 64}, {128, 128}, {256, 256}, {512, 512}},
		tileW:  512,
		tileH:  512,
		comps:  []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}},
	}
	rd, err := NewReader(context.Background(), src, nil, &ReaderOptions{TargetWidth: 100, TargetHeight: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, rd.Level())
	assert.Equal(t, 128, rd.Width())
	assert.Equal(t, 128, rd.Height())
	assert.Equal(t, 128, rd.Stride())

	require.NoError(t, rd.SetTargetSize(0, 0))
	assert.Equal(t, 512, rd.Width())
	require.NoError(t, rd.Close())
}

func TestReader_Gray(t *testing.T) {
	pix := make([]int32, 16)
	want := make([]byte, 16)
	for i := range pix {
		pix[i] = int32(i * 16)
		want[i] = byte(i * 16)
	}
	src := grayPlane(4, 4, pix)

	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, src.closed, "source released on exhaustion")

	require.NoError(t, rd.Close())
	assert.Equal(t, 1, src.closed)
	_, err = rd.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReader_Tiles(t *testing.T) {
	const w, h = 5, 3
	pix := make([]int32, w*h)
	want := make([]byte, w*h)
	for i := range pix {
		pix[i] = int32(10 + i)
		want[i] = byte(10 + i)
	}
	src := grayPlane(w, h, pix)
	src.tileW, src.tileH = 2, 2

	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 6, src.decodes)
}

func TestReader_Progressive(t *testing.T) {
	src := grayPlane(2, 2, []int32{1, 2, 3, 4})
	src.progressive = 2

	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
	assert.Equal(t, 3, src.decodes)
}

func TestReader_ChannelMap(t *testing.T) {
	comps := []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}, {Depth: 8, SubX: 1, SubY: 1}, {Depth: 8, SubX: 1, SubY: 1}}
	planes := [][]int32{{10, 11}, {20, 21}, {30, 31}}

	tests := []struct {
		name     string
		channels []int
		want     []byte
	}{
		{"identity", []int{0, 1, 2}, []byte{10, 20, 30, 11, 21, 31}},
		{"reversed", []int{2, 1, 0}, []byte{30, 20, 10, 31, 21, 11}},
		{"opacity last", []int{-1, 0, 1}, []byte{20, 30, 10, 21, 31, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := &Metadata{NumComponents: 3, Channels: tt.channels, ColorSpace: ColorSpaceSRGB}
			rd, err := NewReader(context.Background(), newFakeSource(2, 1, comps, planes), md, nil)
			require.NoError(t, err)
			got, err := io.ReadAll(rd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_ComponentMismatch(t *testing.T) {
	src := grayPlane(2, 2, []int32{1, 2, 3, 4})
	md := &Metadata{NumComponents: 3, Channels: []int{0, 1, 2}}
	_, err := NewReader(context.Background(), src, md, nil)
	assert.ErrorIs(t, err, ErrMalformedBox)
	assert.Equal(t, 1, src.closed)

	md = &Metadata{NumComponents: 1, Channels: []int{4}}
	_, err = NewReader(context.Background(), grayPlane(2, 2, []int32{1, 2, 3, 4}), md, nil)
	assert.ErrorIs(t, err, ErrMalformedBox)
}

func TestReader_HorizontalChroma(t *testing.T) {
	// 8x4 luma with a 4x4 chroma plane subsampled 2x1.
	luma := make([]int32, 32)
	chroma := make([]int32, 16)
	base := []int32{10, 20, 40, 80}
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			chroma[j*4+i] = base[i] + int32(j)
		}
	}
	comps := []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}, {Depth: 8, SubX: 2, SubY: 1}}
	rd, err := NewReader(context.Background(), newFakeSource(8, 4, comps, [][]int32{luma, chroma}), nil, nil)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	require.Len(t, got, 8*4*2)

	for j := 0; j < 4; j++ {
		row := make([]byte, 8)
		for x := range row {
			row[x] = got[(j*8+x)*2+1]
		}
		d := byte(j)
		assert.Equal(t, []byte{10 + d, 15 + d, 20 + d, 30 + d, 40 + d, 60 + d, 80 + d, 80 + d}, row, "row %d", j)
	}
}

func TestReader_VerticalChroma(t *testing.T) {
	comps := []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}, {Depth: 8, SubX: 1, SubY: 2}}
	planes := [][]int32{make([]int32, 4), {0, 100}}
	rd, err := NewReader(context.Background(), newFakeSource(1, 4, comps, planes), nil, nil)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 50, 0, 100, 0, 100}, got)
}

func TestReader_Chroma420(t *testing.T) {
	comps := []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}, {Depth: 8, SubX: 2, SubY: 2}}
	planes := [][]int32{make([]int32, 16), {0, 100, 100, 200}}
	rd, err := NewReader(context.Background(), newFakeSource(4, 4, comps, planes), nil, nil)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)

	chroma := make([]byte, 16)
	for i := range chroma {
		chroma[i] = got[2*i+1]
	}
	assert.Equal(t, []byte{
		0, 50, 100, 100,
		50, 100, 150, 150,
		100, 150, 200, 200,
		100, 150, 200, 200,
	}, chroma)
}

func TestReader_OddTileChroma(t *testing.T) {
	luma := []int32{1, 2, 3, 4, 5, 6}
	chroma := []int32{10, 20, 30}
	tests := []struct {
		name string
		w, h int
		sub  ComponentInfo
		tile func(s *fakeSource)
	}{
		{"horizontal", 6, 1, ComponentInfo{Depth: 8, SubX: 2, SubY: 1}, func(s *fakeSource) { s.tileW = 3 }},
		{"vertical", 1, 6, ComponentInfo{Depth: 8, SubX: 1, SubY: 2}, func(s *fakeSource) { s.tileH = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comps := []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}, tt.sub}
			src := newFakeSource(tt.w, tt.h, comps, [][]int32{luma, chroma})
			tt.tile(src)
			rd, err := NewReader(context.Background(), src, nil, nil)
			require.NoError(t, err)
			got, err := io.ReadAll(rd)
			require.NoError(t, err)
			require.Len(t, got, 12)

			y, c := make([]byte, 6), make([]byte, 6)
			for i := range y {
				y[i], c[i] = got[2*i], got[2*i+1]
			}
			assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, y)
			// The second tile starts between chroma samples; its first
			// position repeats the tile's first decoded sample.
			assert.Equal(t, []byte{10, 15, 20, 30, 30, 30}, c)
		})
	}
}

func TestReader_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := grayPlane(4, 4, make([]int32, 16))
	src.tileW, src.tileH = 2, 2
	src.cancel = cancel

	rd, err := NewReader(ctx, src, nil, nil)
	require.NoError(t, err)
	_, err = io.ReadAll(rd)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.closed)

	_, err = rd.ReadByte()
	assert.ErrorIs(t, err, ErrInterrupted, "error is sticky")
}

func TestReader_InterruptedDuringInterpolation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	comps := []ComponentInfo{{Depth: 8, SubX: 2, SubY: 1}}
	src := newFakeSource(4, 1, comps, [][]int32{{1, 2}})
	src.cancel = cancel

	rd, err := NewReader(ctx, src, nil, nil)
	require.NoError(t, err)
	_, err = rd.ReadByte()
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, 1, src.decodes)
}

func TestReader_DecodeError(t *testing.T) {
	src := grayPlane(2, 2, make([]int32, 4))
	src.failDecode = errDecode
	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)
	_, err = io.ReadAll(rd)
	assert.ErrorIs(t, err, errDecode)
	assert.Equal(t, 1, src.closed)
}

func TestReader_Skip(t *testing.T) {
	pix := make([]int32, 12)
	for i := range pix {
		pix[i] = int32(i)
	}
	src := grayPlane(3, 4, pix)
	src.tileH = 1

	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)

	n, err := rd.Skip(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	b, err := rd.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(5), b)

	n, err = rd.Skip(100)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, int64(6), n)
}

func TestReader_SkipZero(t *testing.T) {
	src := grayPlane(2, 2, []int32{7, 8, 9, 10})
	rd, err := NewReader(context.Background(), src, nil, nil)
	require.NoError(t, err)

	n, err := rd.Skip(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 1, src.decodes)

	b, err := rd.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(7), b)
	assert.Equal(t, 1, src.decodes)
}

func TestReader_PaletteLimits(t *testing.T) {
	large := make([][]int32, 300)
	for i := range large {
		large[i] = []int32{int32(i % 256)}
	}
	pal300, err := box.NewPaletteBox([]int{8}, nil, large)
	require.NoError(t, err)
	pal2, err := box.NewPaletteBox([]int{8}, nil, [][]int32{{0}, {255}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		pclr  *box.PaletteBox
		depth int
	}{
		{"too many entries", pal300, 8},
		{"wide index", pal2, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := &Metadata{
				NumComponents: 1,
				Channels:      []int{0},
				Palette:       tt.pclr,
				ComponentMap:  box.NewPaletteMapBox(0, 1),
			}
			src := newFakeSource(2, 1, []ComponentInfo{{Depth: tt.depth, SubX: 1, SubY: 1}}, [][]int32{{0, 1}})
			_, err := NewReader(context.Background(), src, md, nil)
			assert.ErrorIs(t, err, ErrUnsupportedFeature)
			assert.Equal(t, 1, src.closed)
			assert.Zero(t, src.decodes)
		})
	}
}
