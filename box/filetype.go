package box

import (
	"fmt"
	"io"
)

// BrandJP2 is the "jp2 " brand and compatibility code.
const BrandJP2 Type = 0x6A703220

// FileTypeBox represents the ftyp box.
type FileTypeBox struct {
	frame
	Brand         Type
	MinorVersion  uint32
	Compatibility []Type
}

// NewFileTypeBox returns the ftyp box written by JP2 encoders: brand "jp2 ",
// minor version 0, compatible with "jp2 ".
func NewFileTypeBox() *FileTypeBox {
	return &FileTypeBox{
		Brand:         BrandJP2,
		MinorVersion:  0,
		Compatibility: []Type{BrandJP2},
	}
}

// Type returns TypeFileType.
func (b *FileTypeBox) Type() Type { return TypeFileType }

// IsCompatible reports whether brand appears in the compatibility list.
func (b *FileTypeBox) IsCompatible(brand Type) bool {
	for _, c := range b.Compatibility {
		if c == brand {
			return true
		}
	}
	return false
}

// PayloadLen returns the contents length.
func (b *FileTypeBox) PayloadLen() int64 {
	return b.length(8 + 4*len(b.Compatibility))
}

// WritePayload writes brand, minor version and compatibility list.
func (b *FileTypeBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u32(uint32(b.Brand))
	e.u32(b.MinorVersion)
	for _, c := range b.Compatibility {
		e.u32(uint32(c))
	}
	return e.err
}

// Describe exports the ftyp fields.
func (b *FileTypeBox) Describe() *Node {
	n := newNode("FileTypeBox", TypeFileType).
		Attr("brand", b.Brand).
		Attr("minorVersion", b.MinorVersion)
	for _, c := range b.Compatibility {
		n.Add((&Node{Name: "compatibility"}).Attr("brand", c))
	}
	return n
}

func (b *FileTypeBox) readPayload(p *payload) error {
	if p.remaining() < 8 {
		return fmt.Errorf("%w: file type box too short", ErrMalformedBox)
	}
	b.Brand = Type(p.u32())
	b.MinorVersion = p.u32()

	// Read compatibility list
	numCompat := p.remaining() / 4
	b.Compatibility = make([]Type, numCompat)
	for i := range b.Compatibility {
		b.Compatibility[i] = Type(p.u32())
	}
	return nil
}
