package box

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// XMLBox ("xml ") carries vendor XML metadata.
type XMLBox struct {
	frame
	Data []byte
}

// NewXMLBox returns an xml box holding doc.
func NewXMLBox(doc string) *XMLBox {
	return &XMLBox{Data: []byte(doc)}
}

// Type returns TypeXML.
func (b *XMLBox) Type() Type { return TypeXML }

// Text returns the document as UTF-8. A byte order mark selects UTF-8 or
// UTF-16; data that is not valid UTF-8 is read as ISO 8859-1.
func (b *XMLBox) Text() (string, error) {
	return decodeText(b.Data)
}

// PayloadLen returns the contents length.
func (b *XMLBox) PayloadLen() int64 { return b.length(len(b.Data)) }

// WritePayload writes the XML bytes.
func (b *XMLBox) WritePayload(w io.Writer) error {
	_, err := w.Write(b.Data)
	return err
}

// Describe exports the document length and its leading text.
func (b *XMLBox) Describe() *Node {
	n := newNode("XMLBox", TypeXML).Attr("length", len(b.Data))
	if s, err := b.Text(); err == nil {
		n.Attr("text", excerpt(s, 64))
	}
	return n
}

func (b *XMLBox) readPayload(p *payload) error {
	b.Data = p.rest()
	return nil
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) || hasUTF16BOM(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("decoding text: %w", err)
		}
		return string(out), nil
	}
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 &&
		(data[0] == 0xFE && data[1] == 0xFF || data[0] == 0xFF && data[1] == 0xFE)
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// URLBox ("url ") names the location of external data.
type URLBox struct {
	frame
	Version uint8
	Flags   uint32 // 24 bits

	// Location holds the stored location bytes without the terminating
	// NUL. Text decodes them.
	Location []byte

	tail []byte // bytes from the terminator on, as read
}

// NewURLBox returns a url box for location.
func NewURLBox(location string) *URLBox {
	return &URLBox{Location: []byte(location)}
}

// Type returns TypeURL.
func (b *URLBox) Type() Type { return TypeURL }

// Text returns the location as UTF-8, decoded as XMLBox.Text does.
func (b *URLBox) Text() (string, error) {
	return decodeText(b.Location)
}

func (b *URLBox) terminator() []byte {
	if b.tail != nil {
		return b.tail
	}
	return []byte{0}
}

// PayloadLen returns the contents length including the terminating NUL.
func (b *URLBox) PayloadLen() int64 {
	return b.length(4 + len(b.Location) + len(b.terminator()))
}

// WritePayload writes version, flags and the NUL-terminated location.
func (b *URLBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u8(b.Version)
	e.u24(b.Flags)
	e.write(b.Location)
	e.write(b.terminator())
	return e.err
}

// Describe exports the URL fields.
func (b *URLBox) Describe() *Node {
	n := newNode("URLBox", TypeURL).
		Attr("version", b.Version).
		Attr("flags", b.Flags)
	if s, err := b.Text(); err == nil {
		n.Attr("location", s)
	}
	return n
}

func (b *URLBox) readPayload(p *payload) error {
	if p.remaining() < 4 {
		return fmt.Errorf("%w: url box too short", ErrMalformedBox)
	}
	b.Version = p.u8()
	b.Flags = p.u24()
	loc := p.rest()
	b.Location, b.tail = loc, []byte{}
	if i := bytes.IndexByte(loc, 0); i >= 0 {
		b.Location, b.tail = loc[:i], loc[i:]
	}
	return nil
}
