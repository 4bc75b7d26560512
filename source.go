package jp2

import (
	"context"
	"io"
)

// ComponentInfo describes one codestream component as decoded by a
// TileSource.
type ComponentInfo struct {
	// Depth is the nominal bit range of the component samples.
	Depth int

	// FracBits is the number of fixed-point fractional bits in decoded
	// samples.
	FracBits int

	// SubX and SubY are the horizontal and vertical subsampling factors.
	SubX, SubY int
}

// Block is a decoded tile-component. Samples are zero-centred: the decoder
// has removed the 2^(Depth-1) level shift.
type Block struct {
	Data   []int32
	Offset int // index of the first sample in Data
	Scan   int // distance in Data between rows
	Width  int
	Height int

	// Progressive is set while further refinement passes remain; the block
	// must be requested again until it is cleared.
	Progressive bool
}

// At returns the sample at column i of row j.
func (b *Block) At(i, j int) int32 {
	return b.Data[b.Offset+j*b.Scan+i]
}

// TileSource is the boundary to a JPEG 2000 wavelet and entropy decoder.
// Levels are numbered from 0 (lowest resolution) to NumLevels()-1 (full
// resolution). Sizes returned after SetLevel refer to the active level.
type TileSource interface {
	// NumLevels returns the number of selectable resolution levels.
	NumLevels() int

	// LevelSize returns the image size at resolution level r.
	LevelSize(r int) (width, height int)

	// SetLevel reconfigures the inverse transform to produce level r.
	SetLevel(r int) error

	// ImageSize returns the image size at the active level.
	ImageSize() (width, height int)

	// NumTiles returns the tile grid dimensions.
	NumTiles() (x, y int)

	// NumComponents returns the number of codestream components.
	NumComponents() int

	// Component returns the properties of component c.
	Component(c int) ComponentInfo

	// TileSize returns the size of tile (tx, ty) on the image grid, clipped
	// to the image.
	TileSize(tx, ty int) (width, height int)

	// TileComponentSize returns the size of component c of tile (tx, ty)
	// on that component's own sample grid.
	TileComponentSize(tx, ty, c int) (width, height int)

	// DecodeBlock decodes component c of tile (tx, ty) into b.
	DecodeBlock(tx, ty, c int, b *Block) error

	// Close releases the decoder.
	Close() error
}

// EncodableSource supplies full-resolution component samples to an Encoder.
type EncodableSource interface {
	// Size returns the image size on the reference grid.
	Size() (width, height int)

	// NumComponents returns the number of components.
	NumComponents() int

	// Depth returns the bit depth of component c.
	Depth(c int) int

	// Signed reports whether component c holds signed samples.
	Signed(c int) bool

	// Subsampling returns the subsampling factors of component c.
	Subsampling(c int) (dx, dy int)

	// Samples returns component c row by row on its own sample grid.
	Samples(c int) []int32
}

// EncodeParams controls rate allocation in the Encoder.
type EncodeParams struct {
	Lossless         bool
	CompressionRatio float64
}

// Encoder is the boundary to a JPEG 2000 codestream encoder.
type Encoder interface {
	// Encode writes the codestream for src to w.
	Encode(ctx context.Context, src EncodableSource, p EncodeParams, w io.Writer) error
}
