package box

import (
	"fmt"
	"io"
)

// Component mapping types.
const (
	MapDirect  = 0 // component used directly
	MapPalette = 1 // component indexes a palette column
)

// ComponentMapping maps a channel to a component.
type ComponentMapping struct {
	Component     uint16
	MappingType   uint8
	PaletteColumn uint8
}

// ComponentMapBox represents component mapping.
type ComponentMapBox struct {
	frame
	Mappings []ComponentMapping
}

// NewPaletteMapBox returns a cmap box routing component through every
// column of a palette with numColumns columns.
func NewPaletteMapBox(component uint16, numColumns int) *ComponentMapBox {
	b := &ComponentMapBox{Mappings: make([]ComponentMapping, numColumns)}
	for i := range b.Mappings {
		b.Mappings[i] = ComponentMapping{Component: component, MappingType: MapPalette, PaletteColumn: uint8(i)}
	}
	return b
}

// Type returns TypeComponentMap.
func (b *ComponentMapBox) Type() Type { return TypeComponentMap }

// PayloadLen returns the contents length.
func (b *ComponentMapBox) PayloadLen() int64 { return b.length(4 * len(b.Mappings)) }

// WritePayload writes one CMP/MTYP/PCOL triple per mapping.
func (b *ComponentMapBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	for _, m := range b.Mappings {
		e.u16(m.Component)
		e.u8(m.MappingType)
		e.u8(m.PaletteColumn)
	}
	return e.err
}

// Describe exports the mappings.
func (b *ComponentMapBox) Describe() *Node {
	n := newNode("ComponentMapBox", TypeComponentMap)
	for i, m := range b.Mappings {
		n.Add((&Node{Name: "mapping"}).
			Attr("channel", i).
			Attr("component", m.Component).
			Attr("mappingType", m.MappingType).
			Attr("paletteColumn", m.PaletteColumn))
	}
	return n
}

func (b *ComponentMapBox) readPayload(p *payload) error {
	n := p.remaining() / 4
	b.Mappings = make([]ComponentMapping, n)
	for i := range b.Mappings {
		b.Mappings[i] = ComponentMapping{
			Component:     p.u16(),
			MappingType:   p.u8(),
			PaletteColumn: p.u8(),
		}
	}
	return nil
}

// Channel types.
const (
	ChannelColor                = 0
	ChannelOpacity              = 1
	ChannelPremultipliedOpacity = 2
	ChannelUnspecified          = -1
)

// AssociationAll is the association value meaning the channel applies to
// the whole image.
const AssociationAll = 0

// associationNone is the on-wire association for an unassociated channel.
const associationNone = 0xFFFF

// ChannelDefinition describes a channel.
type ChannelDefinition struct {
	Channel     uint16
	Type        int // 0=color, 1=opacity, 2=premultiplied opacity, -1=unspecified
	Association int // 1-based colour index, 0 = whole image, -1 = none
}

// ChannelDefBox defines channel meanings.
type ChannelDefBox struct {
	frame
	Definitions []ChannelDefinition
}

// Type returns TypeChannelDef.
func (b *ChannelDefBox) Type() Type { return TypeChannelDef }

// PayloadLen returns the contents length.
func (b *ChannelDefBox) PayloadLen() int64 { return b.length(2 + 6*len(b.Definitions)) }

// WritePayload writes N followed by the Cn/Typ/Asoc triples.
func (b *ChannelDefBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u16(uint16(len(b.Definitions)))
	for _, d := range b.Definitions {
		e.u16(d.Channel)
		e.u16(toWire(d.Type))
		e.u16(toWire(d.Association))
	}
	return e.err
}

// Describe exports the channel definitions.
func (b *ChannelDefBox) Describe() *Node {
	n := newNode("ChannelDefBox", TypeChannelDef)
	for _, d := range b.Definitions {
		n.Add((&Node{Name: "channel"}).
			Attr("index", d.Channel).
			Attr("type", d.Type).
			Attr("association", d.Association))
	}
	return n
}

func (b *ChannelDefBox) readPayload(p *payload) error {
	n := int(p.u16())
	if p.err != nil {
		return p.err
	}
	if p.remaining() < 6*n {
		return fmt.Errorf("%w: channel definition box declares %d channels in %d bytes", ErrMalformedBox, n, p.remaining())
	}
	b.Definitions = make([]ChannelDefinition, n)
	for i := range b.Definitions {
		b.Definitions[i] = ChannelDefinition{
			Channel:     p.u16(),
			Type:        fromWire(p.u16()),
			Association: fromWire(p.u16()),
		}
	}
	return nil
}

func fromWire(v uint16) int {
	if v == associationNone {
		return -1
	}
	return int(v)
}

func toWire(v int) uint16 {
	if v < 0 {
		return associationNone
	}
	return uint16(v)
}
