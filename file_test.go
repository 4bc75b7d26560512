package jp2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-jp2/box"
)

func boxBytes(t testing.TB, b box.Box) []byte {
	t.Helper()
	data, err := box.Bytes(b)
	require.NoError(t, err)
	return data
}

func minimalBytes(t testing.TB) []byte {
	t.Helper()
	f, err := minimalFile(4, 4, []byte{0xFF, 0x4F, 0xFF, 0xD9})
	require.NoError(t, err)
	data, err := f.Bytes()
	require.NoError(t, err)
	return data
}

func TestParse_Minimal(t *testing.T) {
	data := minimalBytes(t)
	require.True(t, bytes.HasPrefix(data, Signature[:]))

	f, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, f.FileType())
	assert.True(t, f.FileType().IsCompatible(box.BrandJP2))
	require.NotNil(t, f.Header())
	require.NotNil(t, f.Codestream())
	assert.Equal(t, []byte{0xFF, 0x4F, 0xFF, 0xD9}, f.Codestream().Data)
	assert.Len(t, f.Boxes(), 3)

	md, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, 4, md.Width)
	assert.Equal(t, 4, md.Height)
	assert.Equal(t, 1, md.NumComponents)
}

func TestParse_RoundTrip(t *testing.T) {
	data := minimalBytes(t)
	f, err := Parse(data)
	require.NoError(t, err)
	out, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, out)

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
}

func TestParse_ToEOFCodestream(t *testing.T) {
	jp2h, err := box.NewHeaderBox(box.NewImageHeaderBox(2, 2, 1, 8, false))
	require.NoError(t, err)
	payload := []byte{0xFF, 0x4F, 1, 2, 3, 0xFF, 0xD9}

	var data []byte
	data = append(data, Signature[:]...)
	data = append(data, boxBytes(t, box.NewFileTypeBox())...)
	data = append(data, boxBytes(t, jp2h)...)
	data = binary.BigEndian.AppendUint32(data, 0)
	data = binary.BigEndian.AppendUint32(data, uint32(box.TypeContCodestream))
	data = append(data, payload...)

	f, err := Parse(data)
	require.NoError(t, err)
	jp2c := f.Codestream()
	require.NotNil(t, jp2c)
	assert.True(t, jp2c.ToEOF())
	assert.Equal(t, payload, jp2c.Data)

	out, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestParse_BadSignature(t *testing.T) {
	data := minimalBytes(t)
	data[5] ^= 0xFF
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = Parse(Signature[:5])
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = Parse(nil)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestParse_TrailingBytes(t *testing.T) {
	data := append(minimalBytes(t), 0, 0, 0, 0, 0)
	f, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, f.Boxes(), 3)
}

func TestParse_Order(t *testing.T) {
	jp2h, err := box.NewHeaderBox(box.NewImageHeaderBox(2, 2, 1, 8, false))
	require.NoError(t, err)
	ftyp := boxBytes(t, box.NewFileTypeBox())
	hdr := boxBytes(t, jp2h)
	jp2c := boxBytes(t, box.NewCodestreamBox([]byte{1}))

	tests := []struct {
		name   string
		boxes  [][]byte
		err    error
		offset int64
	}{
		{"header first", [][]byte{hdr, ftyp}, ErrMissingRequiredBox, 12},
		{"duplicate ftyp", [][]byte{ftyp, ftyp}, ErrDuplicateBox, 12 + int64(len(ftyp))},
		{"codestream before header", [][]byte{ftyp, jp2c, hdr}, ErrStructuralOrder, 12 + int64(len(ftyp))},
		{"duplicate header", [][]byte{ftyp, hdr, hdr, jp2c}, ErrDuplicateBox, 12 + int64(len(ftyp)+len(hdr))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte{}, Signature[:]...)
			for _, b := range tt.boxes {
				data = append(data, b...)
			}
			_, err := Parse(data)
			require.ErrorIs(t, err, tt.err)
			var fe *box.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.offset, fe.Offset)
		})
	}
}

func TestParse_HeaderBoxErrors(t *testing.T) {
	// colr ahead of ihdr inside jp2h.
	colr := boxBytes(t, box.NewEnumeratedColorSpecBox(box.CSSRGB))
	ihdr := boxBytes(t, box.NewImageHeaderBox(2, 2, 1, 8, false))
	jp2h := make([]byte, 8, 8+len(colr)+len(ihdr))
	binary.BigEndian.PutUint32(jp2h[0:4], uint32(8+len(colr)+len(ihdr)))
	binary.BigEndian.PutUint32(jp2h[4:8], uint32(box.TypeJP2Header))
	jp2h = append(append(jp2h, colr...), ihdr...)

	data := append([]byte{}, Signature[:]...)
	data = append(data, boxBytes(t, box.NewFileTypeBox())...)
	data = append(data, jp2h...)
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrStructuralOrder)
}

func TestFile_Add(t *testing.T) {
	jp2h, err := box.NewHeaderBox(box.NewImageHeaderBox(2, 2, 1, 8, false))
	require.NoError(t, err)
	jp2c := box.NewCodestreamBox([]byte{1})

	f := &File{}
	assert.ErrorIs(t, f.Add(nil), ErrMalformedBox)
	assert.ErrorIs(t, f.Add(jp2h), ErrMissingRequiredBox)
	require.NoError(t, f.Add(box.NewFileTypeBox()))
	assert.ErrorIs(t, f.Add(box.NewFileTypeBox()), ErrDuplicateBox)
	assert.ErrorIs(t, f.Add(jp2c), ErrStructuralOrder)
	require.NoError(t, f.Add(box.NewXMLBox("<a/>")))
	require.NoError(t, f.Add(jp2h))
	assert.ErrorIs(t, f.Add(jp2h), ErrDuplicateBox)
	require.NoError(t, f.Add(jp2c))
	require.NoError(t, f.Add(box.NewCodestreamBox([]byte{2})))

	assert.Len(t, f.Boxes(), 5)
	assert.Len(t, f.Codestreams(), 2)
	assert.Same(t, jp2c, f.Codestream())
	require.NoError(t, f.Validate())
}

func TestFile_Validate(t *testing.T) {
	jp2h, err := box.NewHeaderBox(box.NewImageHeaderBox(2, 2, 1, 8, false))
	require.NoError(t, err)

	f := &File{}
	require.NoError(t, f.Add(box.NewFileTypeBox()))
	assert.ErrorIs(t, f.Validate(), ErrMissingRequiredBox)
	require.NoError(t, f.Add(jp2h))
	_, err = f.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrMissingRequiredBox)

	jp2c := box.NewCodestreamBox([]byte{1})
	jp2c.SetToEOF(true)
	require.NoError(t, f.Add(jp2c))
	require.NoError(t, f.Validate())

	require.NoError(t, f.Add(box.NewXMLBox("<a/>")))
	assert.ErrorIs(t, f.Validate(), ErrStructuralOrder)
	_, err = f.Bytes()
	assert.ErrorIs(t, err, ErrStructuralOrder)
}

func TestFile_DumpXML(t *testing.T) {
	f, err := Parse(minimalBytes(t))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.DumpXML(&buf))
	out := buf.String()
	assert.True(t, strings.Contains(out, "HeaderBox"), out)
	assert.True(t, strings.Contains(out, "ImageHeaderBox"), out)
}

func FuzzReadFile(f *testing.F) {
	jp2h, err := box.NewHeaderBox(box.NewImageHeaderBox(2, 2, 1, 8, false), box.NewEnumeratedColorSpecBox(box.CSGray))
	if err != nil {
		f.Fatal(err)
	}
	file := &File{}
	for _, b := range []box.Box{box.NewFileTypeBox(), jp2h, box.NewCodestreamBox([]byte{0xFF, 0x4F, 0xFF, 0xD9})} {
		if err := file.Add(b); err != nil {
			f.Fatal(err)
		}
	}
	seed, err := file.Bytes()
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add(Signature[:])
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := Parse(data)
		if err != nil {
			return
		}
		if file.Header() != nil {
			_, _ = file.Metadata()
		}
		if file.Validate() == nil {
			_, _ = file.Bytes()
		}
	})
}
