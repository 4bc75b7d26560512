package jp2

import (
	"fmt"

	"github.com/mrjoshuak/go-jp2/box"
	"github.com/mrjoshuak/go-jp2/icc"
)

// Metadata is the decode configuration derived from a JP2 header box.
type Metadata struct {
	Width         int
	Height        int
	NumComponents int
	BitDepths     []int
	Signed        []bool

	// Channels maps each codestream component to its output channel.
	// A negative entry sends the component to the last output channel.
	Channels []int

	// Palette and ComponentMap are set for palette images.
	Palette      *box.PaletteBox
	ComponentMap *box.ComponentMapBox

	ColorSpace ColorSpace

	// Profile is the parsed ICC profile when ColorSpace is ColorSpaceICC
	// and the profile header is valid.
	Profile *icc.Profile

	CaptureResolution *Resolution
	DisplayResolution *Resolution
}

// NewMetadata interprets the children of h.
func NewMetadata(h *box.HeaderBox) (*Metadata, error) {
	ihdr := h.ImageHeader()
	if ihdr == nil {
		return nil, fmt.Errorf("%w: ihdr", ErrMissingRequiredBox)
	}

	nc := int(ihdr.NumComponents)
	m := &Metadata{
		Width:         int(ihdr.Width),
		Height:        int(ihdr.Height),
		NumComponents: nc,
		BitDepths:     make([]int, nc),
		Signed:        make([]bool, nc),
		Channels:      make([]int, nc),
		Palette:       h.Palette(),
		ComponentMap:  h.ComponentMap(),
		ColorSpace:    ColorSpaceUnspecified,
	}

	bpcc := h.BitsPerComp()
	if ihdr.VariableDepth() && (bpcc == nil || len(bpcc.BitsPerComponent) < nc) {
		return nil, fmt.Errorf("%w: variable bit depth without a bpcc entry per component", ErrMissingRequiredBox)
	}
	for i := 0; i < nc; i++ {
		if ihdr.VariableDepth() {
			m.BitDepths[i] = bpcc.Depth(i)
			m.Signed[i] = bpcc.Signed(i)
		} else {
			m.BitDepths[i] = ihdr.Depth()
			m.Signed[i] = ihdr.Signed()
		}
		m.Channels[i] = i
	}

	if cdef := h.ChannelDef(); cdef != nil {
		for _, d := range cdef.Definitions {
			if int(d.Channel) >= nc {
				return nil, fmt.Errorf("%w: channel definition for channel %d of %d", ErrMalformedBox, d.Channel, nc)
			}
			// Association 0 applies to the whole image and has no colour
			// index; like an unassociated channel it goes last.
			if d.Association <= box.AssociationAll {
				m.Channels[d.Channel] = -1
				continue
			}
			m.Channels[d.Channel] = d.Association - 1
		}
	}

	if colr := h.ColorSpec(); colr != nil {
		if colr.HasICC() {
			m.ColorSpace = ColorSpaceICC
			if p, err := colr.Profile(); err == nil {
				m.Profile = p
			}
		} else {
			m.ColorSpace = colorSpaceFromEnum(colr.EnumeratedColorspace)
		}
	}

	if res := h.Resolution(); res != nil {
		if c := res.Capture(); c != nil {
			m.CaptureResolution = &Resolution{X: c.Horizontal(), Y: c.Vertical()}
		}
		if d := res.Display(); d != nil {
			m.DisplayResolution = &Resolution{X: d.Horizontal(), Y: d.Vertical()}
		}
	}
	return m, nil
}

// IsPalette reports whether samples index a palette.
func (m *Metadata) IsPalette() bool {
	return m.Palette != nil
}

// ResolvedColorSpace returns the colour space used to build a raster.
// Without a colour specification it is inferred from the component count.
// It fails with ErrUnsupportedColorSpace for unknown enumerated codes and
// ICC colour specifications without a usable profile.
func (m *Metadata) ResolvedColorSpace() (ColorSpace, error) {
	switch m.ColorSpace {
	case ColorSpaceSRGB, ColorSpaceGray:
		return m.ColorSpace, nil
	case ColorSpaceICC:
		if m.Profile == nil {
			return ColorSpaceUnknown, fmt.Errorf("%w: invalid ICC profile", ErrUnsupportedColorSpace)
		}
		return ColorSpaceICC, nil
	case ColorSpaceUnspecified:
		switch m.outputComponents() {
		case 1, 2:
			return ColorSpaceGray, nil
		case 3, 4:
			return ColorSpaceSRGB, nil
		}
		return ColorSpaceUnknown, fmt.Errorf("%w: cannot infer from %d components", ErrUnsupportedColorSpace, m.outputComponents())
	default:
		return ColorSpaceUnknown, fmt.Errorf("%w: %s", ErrUnsupportedColorSpace, m.ColorSpace)
	}
}

// outputComponents returns the number of colour channels after palette
// expansion.
func (m *Metadata) outputComponents() int {
	if m.Palette != nil {
		return m.Palette.NumColumns()
	}
	return m.NumComponents
}
