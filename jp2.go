// Package jp2 reads and writes the JP2 file format (ISO/IEC 15444-1 Annex I)
// and assembles decoded JPEG 2000 tile data into 8-bit rasters.
//
// The package does not contain a wavelet or entropy codec. Decoding is driven
// through a TileSource and encoding through an Encoder, both supplied by the
// caller.
//
// Basic usage for reading:
//
//	f, err := jp2.ReadFile(r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	md, err := f.Metadata()
//
// Basic usage for decoding to a raster:
//
//	rd, err := jp2.NewReader(ctx, src, md, nil)
//	ras, err := rd.ToRaster()
//	img, err := ras.Image()
package jp2

import (
	"github.com/mrjoshuak/go-jp2/box"
)

// ColorSpace represents the color space of an image.
// Values 0-5 match the OpenJPEG OPJ_COLOR_SPACE enum for compatibility.
// Additional colorspaces from ISO/IEC 15444-1 are assigned values 6+.
type ColorSpace int

const (
	// ColorSpaceUnknown indicates the colorspace is not supported.
	// This is returned when the JP2 file specifies an unrecognized enumcs value.
	ColorSpaceUnknown ColorSpace = iota - 1

	// ColorSpaceUnspecified indicates no colour specification box was present.
	ColorSpaceUnspecified

	// ColorSpaceSRGB is standard RGB (enumcs 16).
	ColorSpaceSRGB

	// ColorSpaceGray is grayscale (enumcs 17).
	ColorSpaceGray

	// ColorSpaceSYCC is sRGB-based YCbCr (enumcs 1, 18).
	ColorSpaceSYCC

	// ColorSpaceEYCC is extended sYCC (enumcs 24).
	ColorSpaceEYCC

	// ColorSpaceCMYK is CMYK color space (enumcs 12).
	ColorSpaceCMYK

	// ColorSpaceBilevel is bi-level/binary (enumcs 0, 15).
	ColorSpaceBilevel

	// ColorSpaceYCbCr2 is YCbCr for 625-line systems (enumcs 3).
	ColorSpaceYCbCr2

	// ColorSpaceYCbCr3 is YCbCr for 525-line systems (enumcs 4).
	ColorSpaceYCbCr3

	// ColorSpacePhotoYCC is Kodak PhotoYCC (enumcs 9).
	ColorSpacePhotoYCC

	// ColorSpaceCMY is CMY without black (enumcs 11).
	ColorSpaceCMY

	// ColorSpaceYCCK is YCCK (enumcs 13).
	ColorSpaceYCCK

	// ColorSpaceCIELab is CIE L*a*b* (enumcs 14).
	ColorSpaceCIELab

	// ColorSpaceCIEJab is CIE J*a*b* (enumcs 19).
	ColorSpaceCIEJab

	// ColorSpaceESRGB is extended sRGB (enumcs 20).
	ColorSpaceESRGB

	// ColorSpaceROMMRGB is ROMM-RGB/ProPhoto RGB (enumcs 21).
	ColorSpaceROMMRGB

	// ColorSpaceYPbPr60 is YPbPr for 1125/60 systems (enumcs 22).
	ColorSpaceYPbPr60

	// ColorSpaceYPbPr50 is YPbPr for 1250/50 systems (enumcs 23).
	ColorSpaceYPbPr50

	// ColorSpaceICC is a colour space defined by an embedded ICC profile.
	ColorSpaceICC
)

// String returns the name of the color space.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceUnknown:
		return "Unknown"
	case ColorSpaceUnspecified:
		return "Unspecified"
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceGray:
		return "Gray"
	case ColorSpaceSYCC:
		return "sYCC"
	case ColorSpaceEYCC:
		return "e-sYCC"
	case ColorSpaceCMYK:
		return "CMYK"
	case ColorSpaceBilevel:
		return "Bilevel"
	case ColorSpaceYCbCr2:
		return "YCbCr(2)"
	case ColorSpaceYCbCr3:
		return "YCbCr(3)"
	case ColorSpacePhotoYCC:
		return "PhotoYCC"
	case ColorSpaceCMY:
		return "CMY"
	case ColorSpaceYCCK:
		return "YCCK"
	case ColorSpaceCIELab:
		return "CIELab"
	case ColorSpaceCIEJab:
		return "CIEJab"
	case ColorSpaceESRGB:
		return "e-sRGB"
	case ColorSpaceROMMRGB:
		return "ROMM-RGB"
	case ColorSpaceYPbPr60:
		return "YPbPr(1125/60)"
	case ColorSpaceYPbPr50:
		return "YPbPr(1250/50)"
	case ColorSpaceICC:
		return "ICC"
	default:
		return "Invalid"
	}
}

// colorSpaceFromEnum maps an enumcs value to a ColorSpace.
func colorSpaceFromEnum(cs uint32) ColorSpace {
	switch cs {
	case box.CSBilevel1, box.CSBilevel2:
		return ColorSpaceBilevel
	case box.CSGray:
		return ColorSpaceGray
	case box.CSSRGB:
		return ColorSpaceSRGB
	case box.CSYCbCr1, box.CSsYCC:
		return ColorSpaceSYCC
	case box.CSYCbCr2:
		return ColorSpaceYCbCr2
	case box.CSYCbCr3:
		return ColorSpaceYCbCr3
	case box.CSPhotoYCC:
		return ColorSpacePhotoYCC
	case box.CSCMY:
		return ColorSpaceCMY
	case box.CSCMYK:
		return ColorSpaceCMYK
	case box.CSYCCK:
		return ColorSpaceYCCK
	case box.CSCIELab:
		return ColorSpaceCIELab
	case box.CSCIEJab:
		return ColorSpaceCIEJab
	case box.CSeSRGB:
		return ColorSpaceESRGB
	case box.CSROMMRGB:
		return ColorSpaceROMMRGB
	case box.CSYPbPr1125:
		return ColorSpaceYPbPr60
	case box.CSYPbPr1250:
		return ColorSpaceYPbPr50
	case box.CSeSYCC:
		return ColorSpaceEYCC
	default:
		return ColorSpaceUnknown
	}
}

// enumFor returns the enumcs value written for c. It reports false for
// ColorSpaceICC, ColorSpaceUnknown and ColorSpaceUnspecified.
func enumFor(c ColorSpace) (uint32, bool) {
	switch c {
	case ColorSpaceBilevel:
		return box.CSBilevel1, true
	case ColorSpaceGray:
		return box.CSGray, true
	case ColorSpaceSRGB:
		return box.CSSRGB, true
	case ColorSpaceSYCC:
		return box.CSsYCC, true
	case ColorSpaceYCbCr2:
		return box.CSYCbCr2, true
	case ColorSpaceYCbCr3:
		return box.CSYCbCr3, true
	case ColorSpacePhotoYCC:
		return box.CSPhotoYCC, true
	case ColorSpaceCMY:
		return box.CSCMY, true
	case ColorSpaceCMYK:
		return box.CSCMYK, true
	case ColorSpaceYCCK:
		return box.CSYCCK, true
	case ColorSpaceCIELab:
		return box.CSCIELab, true
	case ColorSpaceCIEJab:
		return box.CSCIEJab, true
	case ColorSpaceESRGB:
		return box.CSeSRGB, true
	case ColorSpaceROMMRGB:
		return box.CSROMMRGB, true
	case ColorSpaceYPbPr60:
		return box.CSYPbPr1125, true
	case ColorSpaceYPbPr50:
		return box.CSYPbPr1250, true
	case ColorSpaceEYCC:
		return box.CSeSYCC, true
	default:
		return 0, false
	}
}

// Resolution is a pair of horizontal and vertical resolutions in dots per
// metre.
type Resolution struct {
	X, Y float64
}

// DPI converts the resolution to dots per inch.
func (r Resolution) DPI() (x, y float64) {
	const metresPerInch = 0.0254
	return r.X * metresPerInch, r.Y * metresPerInch
}
