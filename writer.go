package jp2

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/mrjoshuak/go-jp2/box"
	"github.com/mrjoshuak/go-jp2/icc"
	"github.com/mrjoshuak/go-jp2/internal/codestream"
)

// WriterOptions holds the options for writing a JP2 file.
type WriterOptions struct {
	// ColorSpace is written as an enumerated colour specification.
	// ColorSpaceUnspecified infers grey or sRGB from the component count.
	ColorSpace ColorSpace

	// ICCProfile, if set, is embedded as a restricted ICC colour
	// specification instead of an enumerated one.
	ICCProfile []byte

	// Palette makes the single codestream component an index into the
	// palette. A component mapping box is added automatically.
	Palette *box.PaletteBox

	// ChannelDefinitions, if set, are written in a channel definition box.
	ChannelDefinitions []box.ChannelDefinition

	// CaptureResolution and DisplayResolution are written in a resolution
	// super-box when set.
	CaptureResolution *Resolution
	DisplayResolution *Resolution

	// Boxes are written after the header box and before the codestream,
	// for xml, uuid and uinf metadata.
	Boxes []box.Box

	// Lossless requests reversible coding.
	Lossless bool

	// CompressionRatio is the target ratio for lossy coding, e.g. 20 for
	// 20:1. Only used when Lossless is false.
	CompressionRatio float64

	// Streaming writes the header boxes first and lets the encoder write
	// straight to the destination inside a codestream box that runs to the
	// end of the file. Otherwise the codestream is buffered and its length
	// written.
	Streaming bool
}

// DefaultOptions returns the default writer options.
func DefaultOptions() *WriterOptions {
	return &WriterOptions{
		ColorSpace:       ColorSpaceUnspecified,
		Lossless:         true,
		CompressionRatio: 0,
	}
}

// BuildHeader assembles the jp2h box describing src.
func BuildHeader(src EncodableSource, opts *WriterOptions) (*box.HeaderBox, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	width, height := src.Size()
	nc := src.NumComponents()
	if width <= 0 || height <= 0 || nc <= 0 || nc > 16384 {
		return nil, fmt.Errorf("%w: %dx%d image with %d components", ErrUnsupportedFeature, width, height, nc)
	}

	depths := make([]int, nc)
	signed := make([]bool, nc)
	common := true
	for c := 0; c < nc; c++ {
		depths[c], signed[c] = src.Depth(c), src.Signed(c)
		if depths[c] < 1 || depths[c] > 38 {
			return nil, fmt.Errorf("%w: component %d depth %d", ErrUnsupportedFeature, c, depths[c])
		}
		if depths[c] != depths[0] || signed[c] != signed[0] {
			common = false
		}
	}

	var boxes []box.Box
	ihdr := box.NewImageHeaderBox(uint32(width), uint32(height), uint16(nc), depths[0], signed[0])
	if !common {
		ihdr.BitsPerComponent = box.VariableBitDepth
		boxes = append(boxes, box.NewBitsPerCompBox(depths, signed))
	}

	colr, err := colorSpec(opts, nc)
	if err != nil {
		return nil, err
	}
	if colr != nil {
		boxes = append(boxes, colr)
	} else {
		ihdr.UnknownColorspace = 1
	}

	if opts.Palette != nil {
		if nc != 1 {
			return nil, fmt.Errorf("%w: palette needs a single component, have %d", ErrUnsupportedFeature, nc)
		}
		boxes = append(boxes, opts.Palette, box.NewPaletteMapBox(0, opts.Palette.NumColumns()))
	}
	if len(opts.ChannelDefinitions) > 0 {
		boxes = append(boxes, &box.ChannelDefBox{Definitions: opts.ChannelDefinitions})
	}
	if opts.CaptureResolution != nil || opts.DisplayResolution != nil {
		var capture, display *box.ResolutionBox
		if r := opts.CaptureResolution; r != nil {
			capture = box.NewCaptureResolutionBox(r.X, r.Y)
		}
		if r := opts.DisplayResolution; r != nil {
			display = box.NewDisplayResolutionBox(r.X, r.Y)
		}
		res, err := box.NewResolutionSuperBox(capture, display)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, res)
	}
	return box.NewHeaderBox(ihdr, boxes...)
}

// colorSpec returns the colr box for opts, or nil when the colour space
// cannot be named.
func colorSpec(opts *WriterOptions, nc int) (*box.ColorSpecBox, error) {
	if opts.ICCProfile != nil {
		if _, err := icc.Parse(opts.ICCProfile); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedColorSpace, err)
		}
		return box.NewICCColorSpecBox(opts.ICCProfile), nil
	}

	cs := opts.ColorSpace
	if cs == ColorSpaceICC {
		return nil, fmt.Errorf("%w: ICC colour space without a profile", ErrUnsupportedColorSpace)
	}
	if cs == ColorSpaceUnspecified {
		channels := nc
		if opts.Palette != nil {
			channels = opts.Palette.NumColumns()
		}
		switch channels {
		case 1, 2:
			cs = ColorSpaceGray
		case 3, 4:
			cs = ColorSpaceSRGB
		default:
			return nil, nil
		}
	}
	enum, ok := enumFor(cs)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedColorSpace, cs)
	}
	return box.NewEnumeratedColorSpecBox(enum), nil
}

// Encode writes src to w as a JP2 file, using enc for the codestream.
func Encode(ctx context.Context, w io.Writer, src EncodableSource, enc Encoder, opts *WriterOptions) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	jp2h, err := BuildHeader(src, opts)
	if err != nil {
		return err
	}

	f := &File{}
	for _, b := range append([]box.Box{box.NewFileTypeBox(), jp2h}, opts.Boxes...) {
		if err := f.Add(b); err != nil {
			return err
		}
	}

	params := EncodeParams{Lossless: opts.Lossless, CompressionRatio: opts.CompressionRatio}
	ihdr := jp2h.ImageHeader()
	slog.Debug("jp2: writing file",
		slog.Bool("streaming", opts.Streaming),
		slog.Int("width", int(ihdr.Width)),
		slog.Int("height", int(ihdr.Height)),
		slog.Int("components", int(ihdr.NumComponents)))

	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}

	if opts.Streaming {
		jp2c := box.NewCodestreamBox(nil)
		jp2c.SetToEOF(true)
		if err := f.Add(jp2c); err != nil {
			return err
		}
		if _, err := f.WriteTo(w); err != nil {
			return err
		}
		if err := enc.Encode(ctx, src, params, w); err != nil {
			return fmt.Errorf("encoding codestream: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := enc.Encode(ctx, src, params, &buf); err != nil {
		return fmt.Errorf("encoding codestream: %w", err)
	}
	if err := checkCodestream(buf.Bytes(), ihdr); err != nil {
		return err
	}
	if err := f.Add(box.NewCodestreamBox(buf.Bytes())); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// checkCodestream verifies the encoder output matches the image header.
func checkCodestream(data []byte, ihdr *box.ImageHeaderBox) error {
	h, err := codestream.Probe(data)
	if err != nil {
		return fmt.Errorf("encoder produced an invalid codestream: %w", err)
	}
	if h.Width() != int(ihdr.Width) || h.Height() != int(ihdr.Height) || h.NumComponents != ihdr.NumComponents {
		return fmt.Errorf("encoder produced a %dx%d codestream with %d components for a %dx%d image with %d",
			h.Width(), h.Height(), h.NumComponents, ihdr.Width, ihdr.Height, ihdr.NumComponents)
	}
	return nil
}

// EncodeImage writes img to w as a JP2 file. Paletted images get a palette
// box unless opts already names one, and the colour space defaults to that
// of the image type.
func EncodeImage(ctx context.Context, w io.Writer, img image.Image, enc Encoder, opts *WriterOptions) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	src := NewImageSource(img)
	o := *opts
	if o.ColorSpace == ColorSpaceUnspecified && o.ICCProfile == nil {
		o.ColorSpace = src.ColorSpace()
	}
	if p, ok := img.(*image.Paletted); ok && o.Palette == nil {
		pclr, err := PaletteBox(p.Palette)
		if err != nil {
			return err
		}
		o.Palette = pclr
	}
	return Encode(ctx, w, src, enc, &o)
}
