package box

import "io"

// OpaqueBox holds a box whose type has no registered variant. Its contents
// are written back unchanged.
type OpaqueBox struct {
	frame
	typ  Type
	Data []byte
}

// NewOpaqueBox returns a box of type t carrying data verbatim.
func NewOpaqueBox(t Type, data []byte) *OpaqueBox {
	return &OpaqueBox{typ: t, Data: data}
}

// Type returns the box type code.
func (b *OpaqueBox) Type() Type { return b.typ }

// PayloadLen returns the contents length.
func (b *OpaqueBox) PayloadLen() int64 { return b.length(len(b.Data)) }

// WritePayload writes the contents.
func (b *OpaqueBox) WritePayload(w io.Writer) error {
	_, err := w.Write(b.Data)
	return err
}

// Describe exports the type and contents length.
func (b *OpaqueBox) Describe() *Node {
	return newNode("OpaqueBox", b.typ).Attr("length", len(b.Data))
}

func (b *OpaqueBox) readPayload(p *payload) error {
	b.Data = p.rest()
	return nil
}
