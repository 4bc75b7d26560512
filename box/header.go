package box

import "fmt"

// HeaderBox is the JP2 header super-box ("jp2h"). The image header must be
// its first child; palette, component mapping, channel definition, bits per
// component and resolution boxes may each appear once. Any number of colour
// specification boxes may appear, the first of which governs decoding.
type HeaderBox struct {
	ContainerBox

	imageHeader  *ImageHeaderBox
	bitsPerComp  *BitsPerCompBox
	colorSpec    *ColorSpecBox
	palette      *PaletteBox
	componentMap *ComponentMapBox
	channelDef   *ChannelDefBox
	resolution   *ResolutionSuperBox
}

// NewHeaderBox returns a jp2h box holding ihdr followed by the other boxes,
// checked as Add would.
func NewHeaderBox(ihdr *ImageHeaderBox, boxes ...Box) (*HeaderBox, error) {
	h := &HeaderBox{}
	if err := h.Add(ihdr); err != nil {
		return nil, err
	}
	for _, b := range boxes {
		if err := h.Add(b); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Type returns TypeJP2Header.
func (h *HeaderBox) Type() Type { return TypeJP2Header }

// ImageHeader returns the ihdr child, or nil if none was added.
func (h *HeaderBox) ImageHeader() *ImageHeaderBox { return h.imageHeader }

// BitsPerComp returns the bpcc child, or nil.
func (h *HeaderBox) BitsPerComp() *BitsPerCompBox { return h.bitsPerComp }

// ColorSpec returns the first colr child, or nil.
func (h *HeaderBox) ColorSpec() *ColorSpecBox { return h.colorSpec }

// ColorSpecs returns every colr child in order.
func (h *HeaderBox) ColorSpecs() []*ColorSpecBox {
	var out []*ColorSpecBox
	for _, b := range h.children {
		if c, ok := b.(*ColorSpecBox); ok {
			out = append(out, c)
		}
	}
	return out
}

// Palette returns the pclr child, or nil.
func (h *HeaderBox) Palette() *PaletteBox { return h.palette }

// ComponentMap returns the cmap child, or nil.
func (h *HeaderBox) ComponentMap() *ComponentMapBox { return h.componentMap }

// ChannelDef returns the cdef child, or nil.
func (h *HeaderBox) ChannelDef() *ChannelDefBox { return h.channelDef }

// Resolution returns the res child, or nil.
func (h *HeaderBox) Resolution() *ResolutionSuperBox { return h.resolution }

// Add appends b after checking the header's structural rules.
func (h *HeaderBox) Add(b Box) error {
	if b == nil {
		return fmt.Errorf("%w: nil child", ErrMalformedBox)
	}
	if h.imageHeader == nil {
		ihdr, ok := b.(*ImageHeaderBox)
		if !ok || ihdr == nil {
			return fmt.Errorf("%w: %q before ihdr", ErrStructuralOrder, b.Type())
		}
		h.imageHeader = ihdr
		h.children = append(h.children, b)
		return nil
	}

	switch v := b.(type) {
	case *ImageHeaderBox:
		return fmt.Errorf("%w: ihdr", ErrDuplicateBox)
	case *BitsPerCompBox:
		if h.bitsPerComp != nil {
			return fmt.Errorf("%w: bpcc", ErrDuplicateBox)
		}
		h.bitsPerComp = v
	case *ColorSpecBox:
		if h.colorSpec == nil {
			h.colorSpec = v
		}
	case *PaletteBox:
		if h.palette != nil {
			return fmt.Errorf("%w: pclr", ErrDuplicateBox)
		}
		h.palette = v
	case *ComponentMapBox:
		if h.componentMap != nil {
			return fmt.Errorf("%w: cmap", ErrDuplicateBox)
		}
		h.componentMap = v
	case *ChannelDefBox:
		if h.channelDef != nil {
			return fmt.Errorf("%w: cdef", ErrDuplicateBox)
		}
		h.channelDef = v
	case *ResolutionSuperBox:
		if h.resolution != nil {
			return fmt.Errorf("%w: res", ErrDuplicateBox)
		}
		h.resolution = v
	}
	h.children = append(h.children, b)
	return nil
}

// Describe exports the header and its children.
func (h *HeaderBox) Describe() *Node {
	return h.describe("HeaderBox", TypeJP2Header)
}

func (h *HeaderBox) readPayload(p *payload) error {
	return readChildren(p, h.Add)
}
