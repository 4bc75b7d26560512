package codestream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrNotCodestream is returned when data does not begin with SOC.
var ErrNotCodestream = errors.New("codestream: missing SOC marker")

// Parser reads the main header of a JPEG 2000 codestream.
type Parser struct {
	r      io.Reader
	buf    []byte
	header *Header
}

// NewParser creates a new codestream parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:      r,
		buf:    make([]byte, 8),
		header: &Header{},
	}
}

// Probe reads the main header held at the start of data.
func Probe(data []byte) (*Header, error) {
	return NewParser(bytes.NewReader(data)).ReadHeader()
}

// ReadHeader reads SOC, SIZ and the main header markers up to the first
// tile-part. Markers other than COD are skipped.
func (p *Parser) ReadHeader() (*Header, error) {
	if err := p.expectMarker(SOC); err != nil {
		return nil, err
	}

	if err := p.readSIZ(); err != nil {
		return nil, fmt.Errorf("failed to read SIZ marker: %w", err)
	}

	for {
		marker, err := p.readMarker()
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// A truncated main header still yields its geometry.
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read marker: %w", err)
		}

		if marker == SOT || marker == EOC {
			break
		}
		switch marker {
		case COD:
			if err := p.readCOD(); err != nil {
				return nil, fmt.Errorf("failed to read COD marker: %w", err)
			}
		default:
			if !marker.HasLength() {
				continue
			}
			if err := p.skipMarkerSegment(); err != nil {
				return nil, fmt.Errorf("failed to skip %s marker: %w", marker, err)
			}
		}
	}

	p.header.calculateDerivedValues()
	if err := p.header.Validate(); err != nil {
		return nil, err
	}
	return p.header, nil
}

func (p *Parser) expectMarker(expected Marker) error {
	marker, err := p.readMarker()
	if err != nil {
		if expected == SOC {
			return fmt.Errorf("%w: %v", ErrNotCodestream, err)
		}
		return err
	}
	if marker != expected {
		if expected == SOC {
			return fmt.Errorf("%w: found 0x%04X", ErrNotCodestream, uint16(marker))
		}
		return fmt.Errorf("expected %s marker, found 0x%04X", expected, uint16(marker))
	}
	return nil
}

func (p *Parser) readMarker() (Marker, error) {
	v, err := p.readUint16()
	return Marker(v), err
}

func (p *Parser) readUint16() (uint16, error) {
	if _, err := io.ReadFull(p.r, p.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p.buf[:2]), nil
}

func (p *Parser) readUint32() (uint32, error) {
	if _, err := io.ReadFull(p.r, p.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p.buf[:4]), nil
}

func (p *Parser) readByte() (byte, error) {
	if _, err := io.ReadFull(p.r, p.buf[:1]); err != nil {
		return 0, err
	}
	return p.buf[0], nil
}

func (p *Parser) skipMarkerSegment() error {
	length, err := p.readUint16()
	if err != nil {
		return err
	}
	if length < 2 {
		return fmt.Errorf("invalid marker segment length %d", length)
	}
	_, err = io.CopyN(io.Discard, p.r, int64(length)-2)
	return err
}

func (p *Parser) readSIZ() error {
	if err := p.expectMarker(SIZ); err != nil {
		return err
	}

	length, err := p.readUint16()
	if err != nil {
		return err
	}

	h := p.header
	if h.Profile, err = p.readUint16(); err != nil {
		return err
	}
	for _, dst := range []*uint32{
		&h.ImageWidth, &h.ImageHeight,
		&h.ImageXOffset, &h.ImageYOffset,
		&h.TileWidth, &h.TileHeight,
		&h.TileXOffset, &h.TileYOffset,
	} {
		if *dst, err = p.readUint32(); err != nil {
			return err
		}
	}
	if h.NumComponents, err = p.readUint16(); err != nil {
		return err
	}

	expectedLen := 38 + 3*int(h.NumComponents)
	if int(length) != expectedLen {
		return fmt.Errorf("SIZ length mismatch: expected %d, got %d", expectedLen, length)
	}

	h.ComponentInfo = make([]ComponentInfo, h.NumComponents)
	for i := range h.ComponentInfo {
		var c [3]byte
		if _, err := io.ReadFull(p.r, c[:]); err != nil {
			return err
		}
		h.ComponentInfo[i] = ComponentInfo{
			BitDepth:     c[0],
			SubsamplingX: c[1],
			SubsamplingY: c[2],
		}
	}
	return nil
}

func (p *Parser) readCOD() error {
	length, err := p.readUint16()
	if err != nil {
		return err
	}
	if length < 12 {
		return fmt.Errorf("COD length %d too short", length)
	}

	// Scod, progression order
	if _, err := p.readUint16(); err != nil {
		return err
	}
	if p.header.NumLayers, err = p.readUint16(); err != nil {
		return err
	}
	// MCT
	if _, err := p.readByte(); err != nil {
		return err
	}
	if p.header.NumDecompositions, err = p.readByte(); err != nil {
		return err
	}
	// Code-block width, height and style
	if _, err := io.CopyN(io.Discard, p.r, 3); err != nil {
		return err
	}
	if p.header.WaveletTransform, err = p.readByte(); err != nil {
		return err
	}
	p.header.HasCOD = true

	// Precinct sizes
	_, err = io.CopyN(io.Discard, p.r, int64(length)-12)
	return err
}
