package box

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// UUIDBox ("uuid") carries vendor data tagged with a UUID.
type UUIDBox struct {
	frame
	ID   uuid.UUID
	Data []byte
}

// NewUUIDBox returns a uuid box holding data under id.
func NewUUIDBox(id uuid.UUID, data []byte) *UUIDBox {
	return &UUIDBox{ID: id, Data: data}
}

// Type returns TypeUUID.
func (b *UUIDBox) Type() Type { return TypeUUID }

// PayloadLen returns the contents length.
func (b *UUIDBox) PayloadLen() int64 { return b.length(16 + len(b.Data)) }

// WritePayload writes the UUID followed by the vendor data.
func (b *UUIDBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.write(b.ID[:])
	e.write(b.Data)
	return e.err
}

// Describe exports the UUID and data length.
func (b *UUIDBox) Describe() *Node {
	return newNode("UUIDBox", TypeUUID).
		Attr("uuid", b.ID).
		Attr("length", len(b.Data))
}

func (b *UUIDBox) readPayload(p *payload) error {
	id, err := readUUID(p)
	if err != nil {
		return err
	}
	b.ID = id
	b.Data = p.rest()
	return nil
}

func readUUID(p *payload) (uuid.UUID, error) {
	raw := p.take(16)
	if raw == nil {
		return uuid.Nil, fmt.Errorf("%w: truncated uuid", ErrMalformedBox)
	}
	return uuid.FromBytes(raw)
}

// UUIDListBox ("ulst") lists the UUIDs a uinf box describes.
type UUIDListBox struct {
	frame
	IDs []uuid.UUID
}

// NewUUIDListBox returns a ulst box for ids.
func NewUUIDListBox(ids ...uuid.UUID) *UUIDListBox {
	return &UUIDListBox{IDs: ids}
}

// Type returns TypeUUIDList.
func (b *UUIDListBox) Type() Type { return TypeUUIDList }

// PayloadLen returns the contents length.
func (b *UUIDListBox) PayloadLen() int64 { return b.length(2 + 16*len(b.IDs)) }

// WritePayload writes NU followed by the UUIDs.
func (b *UUIDListBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u16(uint16(len(b.IDs)))
	for _, id := range b.IDs {
		e.write(id[:])
	}
	return e.err
}

// Describe exports the UUIDs.
func (b *UUIDListBox) Describe() *Node {
	n := newNode("UUIDListBox", TypeUUIDList)
	for _, id := range b.IDs {
		n.Add((&Node{Name: "uuid"}).Attr("value", id))
	}
	return n
}

func (b *UUIDListBox) readPayload(p *payload) error {
	n := int(p.u16())
	if p.err != nil {
		return p.err
	}
	if p.remaining() < 16*n {
		return fmt.Errorf("%w: uuid list declares %d entries in %d bytes", ErrMalformedBox, n, p.remaining())
	}
	b.IDs = make([]uuid.UUID, n)
	for i := range b.IDs {
		id, err := readUUID(p)
		if err != nil {
			return err
		}
		b.IDs[i] = id
	}
	return nil
}
