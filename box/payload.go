package box

import (
	"encoding/binary"
	"fmt"
)

// payload is a bounded view over the contents of one box. Reads past the end
// record ErrMalformedBox and return zero values; the first error sticks.
type payload struct {
	data []byte
	pos  int
	base int64 // stream offset of data[0]
	err  error
}

func newPayload(data []byte, base int64) *payload {
	return &payload{data: data, base: base}
}

// remaining returns the number of unread bytes.
func (p *payload) remaining() int {
	return len(p.data) - p.pos
}

// offset returns the stream offset of the next unread byte.
func (p *payload) offset() int64 {
	return p.base + int64(p.pos)
}

func (p *payload) take(n int) []byte {
	if p.err != nil {
		return nil
	}
	if n < 0 || n > p.remaining() {
		p.err = fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedBox, n, p.remaining())
		return nil
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b
}

func (p *payload) u8() uint8 {
	b := p.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (p *payload) u16() uint16 {
	b := p.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (p *payload) u24() uint32 {
	b := p.take(3)
	if b == nil {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func (p *payload) u32() uint32 {
	b := p.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// bytes returns a copy of the next n bytes.
func (p *payload) bytes(n int) []byte {
	b := p.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// rest returns a copy of every unread byte.
func (p *payload) rest() []byte {
	return p.bytes(p.remaining())
}

// sub returns a view over the next n bytes and advances past them.
func (p *payload) sub(n int) *payload {
	base := p.offset()
	b := p.take(n)
	if b == nil {
		return nil
	}
	return newPayload(b, base)
}
