// Package box implements the JP2 box model: length-framed, fourCC-typed
// records, the container boxes built from them, and the structural rules of
// the JP2 header super-box.
//
// Each box on the wire has:
// - 4-byte length (0 means "to the end of the enclosing scope")
// - 4-byte type code
// - Box contents
//
// Extended (64-bit) lengths are recognized and rejected.
package box

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Box type codes
const (
	// Signature and file type
	TypeJP2Signature Type = 0x6A502020 // "jP  " - JP2 signature box
	TypeFileType     Type = 0x66747970 // "ftyp" - File type box

	// JP2 header
	TypeJP2Header    Type = 0x6A703268 // "jp2h" - JP2 header super-box
	TypeImageHeader  Type = 0x69686472 // "ihdr" - Image header box
	TypeBitsPerComp  Type = 0x62706363 // "bpcc" - Bits per component box
	TypeColorSpec    Type = 0x636F6C72 // "colr" - Color specification box
	TypePalette      Type = 0x70636C72 // "pclr" - Palette box
	TypeComponentMap Type = 0x636D6170 // "cmap" - Component mapping box
	TypeChannelDef   Type = 0x63646566 // "cdef" - Channel definition box
	TypeResolution   Type = 0x72657320 // "res " - Resolution super-box
	TypeCaptureRes   Type = 0x72657363 // "resc" - Capture resolution box
	TypeDisplayRes   Type = 0x72657364 // "resd" - Default display resolution box

	// Codestream
	TypeContCodestream Type = 0x6A703263 // "jp2c" - Contiguous codestream box
	TypeCodestreamH    Type = 0x6A706368 // "jpch" - Codestream header box
	TypeTilePartH      Type = 0x6A707468 // "jpth" - Tile-part header box

	// Metadata
	TypeXML      Type = 0x786D6C20 // "xml " - XML box
	TypeUUID     Type = 0x75756964 // "uuid" - UUID box
	TypeUUIDInfo Type = 0x75696E66 // "uinf" - UUID info super-box
	TypeUUIDList Type = 0x756C7374 // "ulst" - UUID list box
	TypeURL      Type = 0x75726C20 // "url " - URL box

	// IPR
	TypeIPR Type = 0x6A703269 // "jp2i" - IPR box
)

// HeaderSize is the size of a box header: 4-byte length plus 4-byte type.
// It is also the smallest valid box.
const HeaderSize = 8

// ToEOF is the payload length reported by a box whose contents run to the
// end of the enclosing scope. It is encoded on the wire as a zero length.
const ToEOF int64 = -1

// maxPayload bounds the contents read into memory for a single box.
const maxPayload = 1 << 30

// Type represents a 4-byte box type code.
type Type uint32

// String returns the 4-character type code.
func (t Type) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(t))
	return string(b)
}

// Box is one JP2 box. The set of implementations is closed; New maps a type
// code to its variant and unknown codes to *OpaqueBox.
type Box interface {
	// Type returns the box type code.
	Type() Type

	// PayloadLen returns the number of content bytes WritePayload emits,
	// or ToEOF if the box runs to the end of its enclosing scope.
	PayloadLen() int64

	// ToEOF reports whether the box was read with, or will be written
	// with, a zero length field.
	ToEOF() bool

	// SetToEOF marks the box to be written with a zero length field.
	SetToEOF(eof bool)

	// WritePayload writes the box contents, excluding the header.
	WritePayload(w io.Writer) error

	// Describe exports the parsed fields as a debug tree.
	Describe() *Node

	readPayload(p *payload) error
}

// frame holds the framing state shared by every box variant.
type frame struct {
	eof bool
}

// ToEOF reports whether the box uses to-end-of-scope framing.
func (f *frame) ToEOF() bool { return f.eof }

// SetToEOF marks the box to be written with a zero length field.
func (f *frame) SetToEOF(eof bool) { f.eof = eof }

func (f *frame) length(n int) int64 {
	if f.eof {
		return ToEOF
	}
	return int64(n)
}

// Errors returned while reading, building, and writing boxes.
var (
	ErrMalformedBox       = errors.New("jp2: malformed box")
	ErrUnsupportedFeature = errors.New("jp2: unsupported feature")
	ErrStructuralOrder    = errors.New("jp2: box out of order")
	ErrDuplicateBox       = errors.New("jp2: duplicate box")
	ErrMissingRequiredBox = errors.New("jp2: missing required box")
	ErrBadSignature       = errors.New("jp2: bad signature")
)

// FormatError records the box and stream offset at which reading failed.
type FormatError struct {
	Type   Type
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("box %q at offset %d: %v", e.Type, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
