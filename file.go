package jp2

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/mrjoshuak/go-jp2/box"
)

// Signature is the complete JP2 signature box that begins every file.
var Signature = [12]byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A}

// File is a JP2 file: a file type box, one header box, one or more
// codestream boxes, and any other boxes, kept in file order.
type File struct {
	boxes       []box.Box
	fileType    *box.FileTypeBox
	header      *box.HeaderBox
	codestreams []*box.CodestreamBox
}

// Add appends b after checking the file-level ordering rules: ftyp comes
// first and once, jp2h appears once, and jp2c follows jp2h.
func (f *File) Add(b box.Box) error {
	if b == nil {
		return fmt.Errorf("%w: nil box", ErrMalformedBox)
	}
	if f.fileType == nil {
		ftyp, ok := b.(*box.FileTypeBox)
		if !ok {
			return fmt.Errorf("%w: ftyp must precede %q", ErrMissingRequiredBox, b.Type())
		}
		f.fileType = ftyp
		f.boxes = append(f.boxes, b)
		return nil
	}

	switch v := b.(type) {
	case *box.FileTypeBox:
		return fmt.Errorf("%w: ftyp", ErrDuplicateBox)
	case *box.HeaderBox:
		if f.header != nil {
			return fmt.Errorf("%w: jp2h", ErrDuplicateBox)
		}
		f.header = v
	case *box.CodestreamBox:
		if f.header == nil {
			return fmt.Errorf("%w: jp2c before jp2h", ErrStructuralOrder)
		}
		f.codestreams = append(f.codestreams, v)
	}
	f.boxes = append(f.boxes, b)
	return nil
}

// FileType returns the ftyp box, or nil.
func (f *File) FileType() *box.FileTypeBox { return f.fileType }

// Header returns the jp2h box, or nil.
func (f *File) Header() *box.HeaderBox { return f.header }

// Codestream returns the first jp2c box, or nil.
func (f *File) Codestream() *box.CodestreamBox {
	if len(f.codestreams) == 0 {
		return nil
	}
	return f.codestreams[0]
}

// Codestreams returns every jp2c box in file order.
func (f *File) Codestreams() []*box.CodestreamBox { return f.codestreams }

// Boxes returns every box after the signature, in file order.
func (f *File) Boxes() []box.Box { return f.boxes }

// Metadata interprets the header box.
func (f *File) Metadata() (*Metadata, error) {
	if f.header == nil {
		return nil, fmt.Errorf("%w: jp2h", ErrMissingRequiredBox)
	}
	return NewMetadata(f.header)
}

// ReadFile parses a complete JP2 file from r.
func ReadFile(r io.Reader) (*File, error) {
	var sig [len(Signature)]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if sig != Signature {
		return nil, ErrBadSignature
	}

	br := bufio.NewReader(r)
	rd := box.NewReaderAt(br, int64(len(Signature)))
	f := &File{}
	for {
		// Fewer bytes than a box header end the file.
		if _, err := br.Peek(box.HeaderSize); err != nil {
			break
		}
		start := rd.Offset()
		b, err := rd.ReadBox()
		if err != nil {
			return nil, err
		}
		if err := f.Add(b); err != nil {
			return nil, &box.FormatError{Type: b.Type(), Offset: start, Err: err}
		}
	}

	slog.Debug("jp2: file read",
		slog.Int("boxes", len(f.boxes)),
		slog.Int("codestreams", len(f.codestreams)))
	return f, nil
}

// Parse parses a complete JP2 file held in data.
func Parse(data []byte) (*File, error) {
	return ReadFile(bytes.NewReader(data))
}

// Validate checks that f can be written: it needs a header and a codestream,
// and only the last box may run to the end of the file.
func (f *File) Validate() error {
	if f.header == nil {
		return fmt.Errorf("%w: jp2h", ErrMissingRequiredBox)
	}
	if len(f.codestreams) == 0 {
		return fmt.Errorf("%w: jp2c", ErrMissingRequiredBox)
	}
	for i, b := range f.boxes[:len(f.boxes)-1] {
		if b.PayloadLen() == box.ToEOF {
			return fmt.Errorf("%w: box %d %q runs to end of file but is not last", ErrStructuralOrder, i, b.Type())
		}
	}
	return nil
}

// WriteTo writes the signature followed by every box.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	if _, err := cw.Write(Signature[:]); err != nil {
		return cw.n, err
	}
	for _, b := range f.boxes {
		if err := box.WriteBox(cw, b); err != nil {
			return cw.n, fmt.Errorf("writing %q box: %w", b.Type(), err)
		}
	}
	return cw.n, nil
}

// Bytes returns the complete encoding of f.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DumpXML writes the debug export of every box as indented XML.
func (f *File) DumpXML(w io.Writer) error {
	return box.DumpXML(w, f.boxes...)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
