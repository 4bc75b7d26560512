package codestream

import "fmt"

// Header holds the geometry fields of the codestream main header.
type Header struct {
	// SIZ marker data
	Profile       uint16
	ImageWidth    uint32
	ImageHeight   uint32
	ImageXOffset  uint32
	ImageYOffset  uint32
	TileWidth     uint32
	TileHeight    uint32
	TileXOffset   uint32
	TileYOffset   uint32
	NumComponents uint16
	ComponentInfo []ComponentInfo

	// Derived values
	NumTilesX uint32
	NumTilesY uint32

	// COD marker data
	NumLayers         uint16
	NumDecompositions uint8
	WaveletTransform  uint8
	HasCOD            bool
}

// ComponentInfo holds per-component size information from the SIZ marker.
type ComponentInfo struct {
	// Bit depth of the component (Ssiz).
	// If bit 7 is set, the component is signed.
	BitDepth uint8

	// Horizontal subsampling factor (XRsiz).
	SubsamplingX uint8

	// Vertical subsampling factor (YRsiz).
	SubsamplingY uint8
}

// Precision returns the bit precision (1-38).
func (c ComponentInfo) Precision() int {
	return int(c.BitDepth&0x7F) + 1
}

// IsSigned returns true if the component values are signed.
func (c ComponentInfo) IsSigned() bool {
	return c.BitDepth&0x80 != 0
}

// Width returns the image area width on the reference grid.
func (h *Header) Width() int {
	return int(h.ImageWidth - h.ImageXOffset)
}

// Height returns the image area height on the reference grid.
func (h *Header) Height() int {
	return int(h.ImageHeight - h.ImageYOffset)
}

// NumResolutions returns the number of resolution levels.
func (h *Header) NumResolutions() int {
	return int(h.NumDecompositions) + 1
}

// IsReversible returns true if the 5-3 reversible wavelet is used.
func (h *Header) IsReversible() bool {
	return h.WaveletTransform == 1
}

// Validate checks the header for consistency.
func (h *Header) Validate() error {
	if h.ImageWidth <= h.ImageXOffset || h.ImageHeight <= h.ImageYOffset {
		return fmt.Errorf("invalid image dimensions: %dx%d", h.ImageWidth, h.ImageHeight)
	}

	if h.TileWidth == 0 || h.TileHeight == 0 {
		return fmt.Errorf("invalid tile dimensions: %dx%d", h.TileWidth, h.TileHeight)
	}

	if h.NumComponents == 0 || h.NumComponents > 16384 {
		return fmt.Errorf("invalid number of components: %d", h.NumComponents)
	}

	for i, comp := range h.ComponentInfo {
		if comp.SubsamplingX == 0 || comp.SubsamplingY == 0 {
			return fmt.Errorf("component %d: invalid subsampling: %dx%d",
				i, comp.SubsamplingX, comp.SubsamplingY)
		}
	}

	return nil
}

// calculateDerivedValues computes the tile grid.
func (h *Header) calculateDerivedValues() {
	if h.TileWidth > 0 && h.ImageWidth > h.TileXOffset {
		h.NumTilesX = (h.ImageWidth - h.TileXOffset + h.TileWidth - 1) / h.TileWidth
	}
	if h.TileHeight > 0 && h.ImageHeight > h.TileYOffset {
		h.NumTilesY = (h.ImageHeight - h.TileYOffset + h.TileHeight - 1) / h.TileHeight
	}
}
