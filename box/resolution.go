package box

import (
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-jp2/internal/clamp"
)

// ResolutionBox is a capture ("resc") or default display ("resd")
// resolution box. Each axis is stored as numerator/denominator x 10^exponent
// grid points per metre.
type ResolutionBox struct {
	frame
	kind Type

	VerticalNum   uint16
	VerticalDen   uint16
	HorizontalNum uint16
	HorizontalDen uint16
	VerticalExp   int8
	HorizontalExp int8
}

// NewCaptureResolutionBox returns a resc box for the given dots per metre.
func NewCaptureResolutionBox(horizontal, vertical float64) *ResolutionBox {
	return newResolutionBox(TypeCaptureRes, horizontal, vertical)
}

// NewDisplayResolutionBox returns a resd box for the given dots per metre.
func NewDisplayResolutionBox(horizontal, vertical float64) *ResolutionBox {
	return newResolutionBox(TypeDisplayRes, horizontal, vertical)
}

func newResolutionBox(kind Type, horizontal, vertical float64) *ResolutionBox {
	b := &ResolutionBox{kind: kind}
	b.HorizontalNum, b.HorizontalDen, b.HorizontalExp = encodeResolution(horizontal)
	b.VerticalNum, b.VerticalDen, b.VerticalExp = encodeResolution(vertical)
	return b
}

// encodeResolution splits dots per metre into a 16-bit numerator with unit
// denominator, dividing by ten until the value fits below 32768.
func encodeResolution(v float64) (num, den uint16, exp int8) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 1, 0
	}
	for v >= 32768 && exp < math.MaxInt8 {
		v /= 10
		exp++
	}
	return uint16(clamp.To(math.Round(v), 0, math.MaxUint16)), 1, exp
}

func decodeResolution(num, den uint16, exp int8) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * math.Pow10(int(exp))
}

// Type returns TypeCaptureRes or TypeDisplayRes.
func (b *ResolutionBox) Type() Type {
	if b.kind == 0 {
		return TypeCaptureRes
	}
	return b.kind
}

// Horizontal returns the horizontal resolution in dots per metre.
func (b *ResolutionBox) Horizontal() float64 {
	return decodeResolution(b.HorizontalNum, b.HorizontalDen, b.HorizontalExp)
}

// Vertical returns the vertical resolution in dots per metre.
func (b *ResolutionBox) Vertical() float64 {
	return decodeResolution(b.VerticalNum, b.VerticalDen, b.VerticalExp)
}

// PayloadLen returns the contents length.
func (b *ResolutionBox) PayloadLen() int64 { return b.length(10) }

// WritePayload writes VRN, VRD, HRN, HRD, VRE, HRE.
func (b *ResolutionBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u16(b.VerticalNum)
	e.u16(b.VerticalDen)
	e.u16(b.HorizontalNum)
	e.u16(b.HorizontalDen)
	e.u8(uint8(b.VerticalExp))
	e.u8(uint8(b.HorizontalExp))
	return e.err
}

// Describe exports both axes in dots per metre.
func (b *ResolutionBox) Describe() *Node {
	name := "CaptureResolutionBox"
	if b.Type() == TypeDisplayRes {
		name = "DisplayResolutionBox"
	}
	return newNode(name, b.Type()).
		Attr("horizontal", fmt.Sprintf("%g", b.Horizontal())).
		Attr("vertical", fmt.Sprintf("%g", b.Vertical()))
}

func (b *ResolutionBox) readPayload(p *payload) error {
	if p.remaining() < 10 {
		return fmt.Errorf("%w: resolution box too short", ErrMalformedBox)
	}
	b.VerticalNum = p.u16()
	b.VerticalDen = p.u16()
	b.HorizontalNum = p.u16()
	b.HorizontalDen = p.u16()
	b.VerticalExp = int8(p.u8())
	b.HorizontalExp = int8(p.u8())
	return nil
}
