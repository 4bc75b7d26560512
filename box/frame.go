package box

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
)

// Reader reads JP2 boxes from a stream.
type Reader struct {
	r      io.Reader
	offset int64
}

// NewReader creates a new box reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// NewReaderAt creates a box reader whose offsets start at offset, for streams
// already advanced past a prefix.
func NewReaderAt(r io.Reader, offset int64) *Reader {
	return &Reader{r: r, offset: offset}
}

// Offset returns the current stream offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ReadBox reads the next box from the stream and decodes it into its
// registered variant. It returns io.EOF when the stream ends cleanly on a box
// boundary. A box with a zero length consumes the rest of the stream.
func (r *Reader) ReadBox() (Box, error) {
	start := r.offset

	var header [HeaderSize]byte
	n, err := io.ReadFull(r.r, header[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return nil, io.EOF
		}
		r.offset += int64(n)
		return nil, &FormatError{Offset: start, Err: fmt.Errorf("%w: truncated box header", ErrMalformedBox)}
	}
	r.offset += HeaderSize

	length := binary.BigEndian.Uint32(header[0:4])
	boxType := Type(binary.BigEndian.Uint32(header[4:8]))

	var contents []byte
	switch {
	case length == 0:
		contents, err = io.ReadAll(io.LimitReader(r.r, maxPayload+1))
		if err != nil {
			return nil, &FormatError{Type: boxType, Offset: start, Err: fmt.Errorf("reading box contents: %w", err)}
		}
		if len(contents) > maxPayload {
			return nil, &FormatError{Type: boxType, Offset: start, Err: fmt.Errorf("%w: box too large", ErrUnsupportedFeature)}
		}
	case length == 1:
		return nil, &FormatError{Type: boxType, Offset: start, Err: fmt.Errorf("%w: long boxes", ErrUnsupportedFeature)}
	case length < HeaderSize:
		return nil, &FormatError{Type: boxType, Offset: start, Err: fmt.Errorf("%w: invalid box length %d", ErrMalformedBox, length)}
	default:
		contentLen := int64(length) - HeaderSize
		if contentLen > maxPayload {
			return nil, &FormatError{Type: boxType, Offset: start, Err: fmt.Errorf("%w: box too large: %d bytes", ErrUnsupportedFeature, contentLen)}
		}
		contents = make([]byte, contentLen)
		if m, err := io.ReadFull(r.r, contents); err != nil {
			r.offset += int64(m)
			return nil, &FormatError{Type: boxType, Offset: start, Err: fmt.Errorf("%w: truncated contents: have %d of %d bytes", ErrMalformedBox, m, contentLen)}
		}
	}
	r.offset += int64(len(contents))

	slog.Debug("jp2: box read",
		slog.String("type", boxType.String()),
		slog.Int64("offset", start),
		slog.Uint64("length", uint64(length)))

	return decode(boxType, newPayload(contents, start+HeaderSize), length == 0, start)
}

// decode builds the variant registered for t from its contents.
func decode(t Type, p *payload, eof bool, start int64) (Box, error) {
	b := New(t)
	err := b.readPayload(p)
	if err == nil {
		err = p.err
	}
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FormatError{Type: t, Offset: start, Err: err}
	}
	b.SetToEOF(eof)
	return b, nil
}

// readChildren decodes the boxes packed in p and hands each one to add.
// Fewer than HeaderSize trailing bytes are ignored.
func readChildren(p *payload, add func(Box) error) error {
	for p.remaining() >= HeaderSize {
		start := p.offset()
		length := p.u32()
		childType := Type(p.u32())

		var sub *payload
		switch {
		case length == 0:
			sub = p.sub(p.remaining())
		case length == 1:
			return &FormatError{Type: childType, Offset: start, Err: fmt.Errorf("%w: long boxes", ErrUnsupportedFeature)}
		case length < HeaderSize:
			return &FormatError{Type: childType, Offset: start, Err: fmt.Errorf("%w: invalid box length %d", ErrMalformedBox, length)}
		default:
			contentLen := int64(length) - HeaderSize
			if contentLen > int64(p.remaining()) {
				return &FormatError{Type: childType, Offset: start, Err: fmt.Errorf("%w: truncated contents: declared %d, have %d bytes", ErrMalformedBox, contentLen, p.remaining())}
			}
			sub = p.sub(int(contentLen))
		}

		child, err := decode(childType, sub, length == 0, start)
		if err != nil {
			return err
		}
		if err := add(child); err != nil {
			return &FormatError{Type: childType, Offset: start, Err: err}
		}
	}
	return nil
}

// Size returns the total encoded size of b including its header, or ToEOF.
func Size(b Box) int64 {
	n := b.PayloadLen()
	if n == ToEOF {
		return ToEOF
	}
	return n + HeaderSize
}

// WriteBox writes b to w: the length field (zero for to-EOF boxes), the type
// code, and the contents.
func WriteBox(w io.Writer, b Box) error {
	n := b.PayloadLen()

	var header [HeaderSize]byte
	switch {
	case n == ToEOF:
		binary.BigEndian.PutUint32(header[0:4], 0)
	case n+HeaderSize > math.MaxUint32:
		return fmt.Errorf("%w: box %q needs a 64-bit length", ErrUnsupportedFeature, b.Type())
	default:
		binary.BigEndian.PutUint32(header[0:4], uint32(n+HeaderSize))
	}
	binary.BigEndian.PutUint32(header[4:8], uint32(b.Type()))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	return b.WritePayload(w)
}

// Bytes returns the complete encoding of b.
func Bytes(b Box) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBox(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes the single box encoded at the start of data.
func Parse(data []byte) (Box, error) {
	return NewReader(bytes.NewReader(data)).ReadBox()
}

// encoder writes big-endian fields; the first error sticks.
type encoder struct {
	w   io.Writer
	buf [4]byte
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: w}
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) u8(v uint8) {
	e.buf[0] = v
	e.write(e.buf[:1])
}

func (e *encoder) u16(v uint16) {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	e.write(e.buf[:2])
}

func (e *encoder) u24(v uint32) {
	e.buf[0] = byte(v >> 16)
	e.buf[1] = byte(v >> 8)
	e.buf[2] = byte(v)
	e.write(e.buf[:3])
}

func (e *encoder) u32(v uint32) {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}
