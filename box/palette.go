package box

import (
	"fmt"
	"io"
)

// maxPaletteEntries is the largest NE allowed by ISO/IEC 15444-1 I.5.3.4.
const maxPaletteEntries = 1024

// PaletteBox represents a color palette: NumEntries rows of NumColumns
// values, each column with its own depth and signedness.
type PaletteBox struct {
	frame
	BitsPerEntry []uint8 // per column: depth-1 with sign in bit 7
	Values       []int32 // row-major, NumEntries x NumColumns
}

// NewPaletteBox returns a palette whose row i is entries[i]. Every row must
// have len(depths) values.
func NewPaletteBox(depths []int, signed []bool, entries [][]int32) (*PaletteBox, error) {
	if len(depths) == 0 || len(depths) > 255 {
		return nil, fmt.Errorf("%w: palette needs 1-255 columns, got %d", ErrMalformedBox, len(depths))
	}
	if len(entries) == 0 || len(entries) > maxPaletteEntries {
		return nil, fmt.Errorf("%w: palette needs 1-%d entries, got %d", ErrMalformedBox, maxPaletteEntries, len(entries))
	}
	b := &PaletteBox{
		BitsPerEntry: make([]uint8, len(depths)),
		Values:       make([]int32, 0, len(entries)*len(depths)),
	}
	for c, d := range depths {
		if d < 1 || d > 16 {
			return nil, fmt.Errorf("%w: palette column %d depth %d", ErrUnsupportedFeature, c, d)
		}
		b.BitsPerEntry[c] = encodeDepth(d, c < len(signed) && signed[c])
	}
	for i, row := range entries {
		if len(row) != len(depths) {
			return nil, fmt.Errorf("%w: palette entry %d has %d values, want %d", ErrMalformedBox, i, len(row), len(depths))
		}
		b.Values = append(b.Values, row...)
	}
	return b, nil
}

// Type returns TypePalette.
func (b *PaletteBox) Type() Type { return TypePalette }

// NumColumns returns the number of palette columns (generated components).
func (b *PaletteBox) NumColumns() int { return len(b.BitsPerEntry) }

// NumEntries returns the number of palette rows.
func (b *PaletteBox) NumEntries() int {
	if len(b.BitsPerEntry) == 0 {
		return 0
	}
	return len(b.Values) / len(b.BitsPerEntry)
}

// Depth returns the bit depth of column c.
func (b *PaletteBox) Depth(c int) int { return decodeDepth(b.BitsPerEntry[c]) }

// Signed reports whether column c holds signed values.
func (b *PaletteBox) Signed(c int) bool { return b.BitsPerEntry[c]&0x80 != 0 }

// Value returns the value of column c in entry i.
func (b *PaletteBox) Value(i, c int) int32 {
	return b.Values[i*len(b.BitsPerEntry)+c]
}

func (b *PaletteBox) entryBytes(c int) int {
	if b.Depth(c) <= 8 {
		return 1
	}
	return 2
}

// PayloadLen returns the contents length.
func (b *PaletteBox) PayloadLen() int64 {
	row := 0
	for c := range b.BitsPerEntry {
		row += b.entryBytes(c)
	}
	return b.length(3 + len(b.BitsPerEntry) + row*b.NumEntries())
}

// WritePayload writes NE, NPC, the column depths and the entries.
func (b *PaletteBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u16(uint16(b.NumEntries()))
	e.u8(uint8(b.NumColumns()))
	e.write(b.BitsPerEntry)
	for i := 0; i < b.NumEntries(); i++ {
		for c := range b.BitsPerEntry {
			v := b.Value(i, c)
			if b.entryBytes(c) == 1 {
				e.u8(uint8(v))
			} else {
				e.u16(uint16(v))
			}
		}
	}
	return e.err
}

// Describe exports the palette layout and entries.
func (b *PaletteBox) Describe() *Node {
	n := newNode("PaletteBox", TypePalette).
		Attr("numEntries", b.NumEntries()).
		Attr("numColumns", b.NumColumns())
	for c := range b.BitsPerEntry {
		n.Add((&Node{Name: "column"}).
			Attr("index", c).
			Attr("bitDepth", b.Depth(c)).
			Attr("signed", b.Signed(c)))
	}
	for i := 0; i < b.NumEntries(); i++ {
		n.Add((&Node{Name: "entry"}).
			Attr("index", i).
			Attr("values", fmt.Sprint(b.Values[i*b.NumColumns():(i+1)*b.NumColumns()])))
	}
	return n
}

func (b *PaletteBox) readPayload(p *payload) error {
	ne := int(p.u16())
	npc := int(p.u8())
	if p.err != nil {
		return p.err
	}
	if ne == 0 || ne > maxPaletteEntries || npc == 0 {
		return fmt.Errorf("%w: palette with %d entries and %d columns", ErrMalformedBox, ne, npc)
	}
	b.BitsPerEntry = p.bytes(npc)
	if p.err != nil {
		return p.err
	}

	b.Values = make([]int32, ne*npc)
	for i := 0; i < ne; i++ {
		for c := 0; c < npc; c++ {
			depth := b.Depth(c)
			var v int32
			if depth <= 8 {
				v = int32(p.u8())
			} else {
				v = int32(p.u16())
			}
			if b.Signed(c) && depth < 32 && v >= 1<<(depth-1) {
				v -= 1 << depth
			}
			b.Values[i*npc+c] = v
		}
	}
	return p.err
}
