package box

import (
	"fmt"
	"io"
)

// VariableBitDepth is the ihdr bit depth value meaning the components differ
// and a bpcc box lists them.
const VariableBitDepth = 0xFF

// CompressionJPEG2000 is the only ihdr compression type defined for JP2.
const CompressionJPEG2000 = 7

// ImageHeaderBox represents the image header box.
type ImageHeaderBox struct {
	frame
	Height            uint32
	Width             uint32
	NumComponents     uint16
	BitsPerComponent  uint8 // depth-1 with sign in bit 7, or VariableBitDepth
	CompressionType   uint8 // Always 7 for JP2
	UnknownColorspace uint8
	IPR               uint8
}

// NewImageHeaderBox returns an ihdr box for components of a common depth.
// A depth of 0 stores VariableBitDepth.
func NewImageHeaderBox(width, height uint32, numComponents uint16, depth int, signed bool) *ImageHeaderBox {
	b := &ImageHeaderBox{
		Height:           height,
		Width:            width,
		NumComponents:    numComponents,
		BitsPerComponent: VariableBitDepth,
		CompressionType:  CompressionJPEG2000,
	}
	if depth > 0 {
		b.BitsPerComponent = encodeDepth(depth, signed)
	}
	return b
}

// Type returns TypeImageHeader.
func (b *ImageHeaderBox) Type() Type { return TypeImageHeader }

// VariableDepth reports whether component depths are listed in a bpcc box.
func (b *ImageHeaderBox) VariableDepth() bool {
	return b.BitsPerComponent == VariableBitDepth
}

// Depth returns the common component bit depth, or 0 if it varies.
func (b *ImageHeaderBox) Depth() int {
	if b.VariableDepth() {
		return 0
	}
	return decodeDepth(b.BitsPerComponent)
}

// Signed reports whether the common component depth is signed.
func (b *ImageHeaderBox) Signed() bool {
	return !b.VariableDepth() && b.BitsPerComponent&0x80 != 0
}

// PayloadLen returns the contents length.
func (b *ImageHeaderBox) PayloadLen() int64 { return b.length(14) }

// WritePayload writes the ihdr fields.
func (b *ImageHeaderBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u32(b.Height)
	e.u32(b.Width)
	e.u16(b.NumComponents)
	e.u8(b.BitsPerComponent)
	e.u8(b.CompressionType)
	e.u8(b.UnknownColorspace)
	e.u8(b.IPR)
	return e.err
}

// Describe exports the ihdr fields.
func (b *ImageHeaderBox) Describe() *Node {
	n := newNode("ImageHeaderBox", TypeImageHeader).
		Attr("width", b.Width).
		Attr("height", b.Height).
		Attr("numComponents", b.NumComponents)
	if b.VariableDepth() {
		n.Attr("bitDepth", "variable")
	} else {
		n.Attr("bitDepth", b.Depth()).Attr("signed", b.Signed())
	}
	return n.
		Attr("compression", b.CompressionType).
		Attr("unknownColorspace", b.UnknownColorspace).
		Attr("ipr", b.IPR)
}

func (b *ImageHeaderBox) readPayload(p *payload) error {
	if p.remaining() < 14 {
		return fmt.Errorf("%w: image header box too short", ErrMalformedBox)
	}
	b.Height = p.u32()
	b.Width = p.u32()
	b.NumComponents = p.u16()
	b.BitsPerComponent = p.u8()
	b.CompressionType = p.u8()
	b.UnknownColorspace = p.u8()
	b.IPR = p.u8()
	return nil
}

// BitsPerCompBox represents per-component bit depth.
type BitsPerCompBox struct {
	frame
	BitsPerComponent []uint8 // depth-1 with sign in bit 7
}

// NewBitsPerCompBox returns a bpcc box for the given depths and signedness.
func NewBitsPerCompBox(depths []int, signed []bool) *BitsPerCompBox {
	b := &BitsPerCompBox{BitsPerComponent: make([]uint8, len(depths))}
	for i, d := range depths {
		b.BitsPerComponent[i] = encodeDepth(d, i < len(signed) && signed[i])
	}
	return b
}

// Type returns TypeBitsPerComp.
func (b *BitsPerCompBox) Type() Type { return TypeBitsPerComp }

// Depth returns the bit depth of component c.
func (b *BitsPerCompBox) Depth(c int) int {
	return decodeDepth(b.BitsPerComponent[c])
}

// Signed reports whether component c is signed.
func (b *BitsPerCompBox) Signed(c int) bool {
	return b.BitsPerComponent[c]&0x80 != 0
}

// PayloadLen returns the contents length.
func (b *BitsPerCompBox) PayloadLen() int64 { return b.length(len(b.BitsPerComponent)) }

// WritePayload writes one byte per component.
func (b *BitsPerCompBox) WritePayload(w io.Writer) error {
	_, err := w.Write(b.BitsPerComponent)
	return err
}

// Describe exports the per-component depths.
func (b *BitsPerCompBox) Describe() *Node {
	n := newNode("BitsPerCompBox", TypeBitsPerComp)
	for i := range b.BitsPerComponent {
		n.Add((&Node{Name: "component"}).
			Attr("index", i).
			Attr("bitDepth", b.Depth(i)).
			Attr("signed", b.Signed(i)))
	}
	return n
}

func (b *BitsPerCompBox) readPayload(p *payload) error {
	b.BitsPerComponent = p.rest()
	return nil
}

func encodeDepth(depth int, signed bool) uint8 {
	v := uint8(depth-1) & 0x7F
	if signed {
		v |= 0x80
	}
	return v
}

func decodeDepth(v uint8) int {
	return int(v&0x7F) + 1
}
