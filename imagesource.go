package jp2

import (
	"image"
	"image/color"

	"github.com/mrjoshuak/go-jp2/box"
)

// ImageSource adapts an image.Image to an EncodableSource.
type ImageSource struct {
	width, height int
	depth         int
	sub           [][2]int
	samples       [][]int32
	colorSpace    ColorSpace
}

// NewImageSource extracts the component samples of img. RGBA images are
// written without alpha; YCbCr images keep their chroma subsampling.
func NewImageSource(img image.Image) *ImageSource {
	bounds := img.Bounds()
	s := &ImageSource{
		width:      bounds.Dx(),
		height:     bounds.Dy(),
		depth:      8,
		colorSpace: ColorSpaceSRGB,
	}

	switch img := img.(type) {
	case *image.Gray:
		s.colorSpace = ColorSpaceGray
		s.each(bounds, 1, func(x, y int, px []int32) {
			px[0] = int32(img.GrayAt(x, y).Y)
		})

	case *image.Gray16:
		s.depth = 16
		s.colorSpace = ColorSpaceGray
		s.each(bounds, 1, func(x, y int, px []int32) {
			px[0] = int32(img.Gray16At(x, y).Y)
		})

	case *image.Paletted:
		s.colorSpace = ColorSpaceUnspecified
		s.each(bounds, 1, func(x, y int, px []int32) {
			px[0] = int32(img.ColorIndexAt(x, y))
		})

	case *image.RGBA:
		s.each(bounds, 3, func(x, y int, px []int32) {
			c := img.RGBAAt(x, y)
			px[0], px[1], px[2] = int32(c.R), int32(c.G), int32(c.B)
		})

	case *image.RGBA64:
		s.depth = 16
		s.each(bounds, 3, func(x, y int, px []int32) {
			c := img.RGBA64At(x, y)
			px[0], px[1], px[2] = int32(c.R), int32(c.G), int32(c.B)
		})

	case *image.NRGBA:
		s.each(bounds, 4, func(x, y int, px []int32) {
			c := img.NRGBAAt(x, y)
			px[0], px[1], px[2], px[3] = int32(c.R), int32(c.G), int32(c.B), int32(c.A)
		})

	case *image.NRGBA64:
		s.depth = 16
		s.each(bounds, 4, func(x, y int, px []int32) {
			c := img.NRGBA64At(x, y)
			px[0], px[1], px[2], px[3] = int32(c.R), int32(c.G), int32(c.B), int32(c.A)
		})

	case *image.CMYK:
		s.colorSpace = ColorSpaceCMYK
		s.each(bounds, 4, func(x, y int, px []int32) {
			c := img.CMYKAt(x, y)
			px[0], px[1], px[2], px[3] = int32(c.C), int32(c.M), int32(c.Y), int32(c.K)
		})

	case *image.YCbCr:
		s.colorSpace = ColorSpaceSYCC
		s.fromYCbCr(img)

	default:
		// Generic fallback - convert to RGB
		s.each(bounds, 3, func(x, y int, px []int32) {
			r, g, b, _ := img.At(x, y).RGBA()
			px[0], px[1], px[2] = int32(r>>8), int32(g>>8), int32(b>>8)
		})
	}
	return s
}

// each allocates nc full-resolution components and fills them pixel by
// pixel.
func (s *ImageSource) each(bounds image.Rectangle, nc int, fn func(x, y int, px []int32)) {
	s.samples = make([][]int32, nc)
	s.sub = make([][2]int, nc)
	for c := range s.samples {
		s.samples[c] = make([]int32, s.width*s.height)
		s.sub[c] = [2]int{1, 1}
	}
	px := make([]int32, nc)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fn(x, y, px)
			for c := range px {
				s.samples[c][idx] = px[c]
			}
			idx++
		}
	}
}

func chromaFactors(r image.YCbCrSubsampleRatio) (dx, dy int) {
	switch r {
	case image.YCbCrSubsampleRatio422:
		return 2, 1
	case image.YCbCrSubsampleRatio420:
		return 2, 2
	case image.YCbCrSubsampleRatio440:
		return 1, 2
	case image.YCbCrSubsampleRatio411:
		return 4, 1
	case image.YCbCrSubsampleRatio410:
		return 4, 2
	default:
		return 1, 1
	}
}

func (s *ImageSource) fromYCbCr(img *image.YCbCr) {
	b := img.Rect
	dx, dy := chromaFactors(img.SubsampleRatio)
	cw := (s.width + dx - 1) / dx
	ch := (s.height + dy - 1) / dy

	s.sub = [][2]int{{1, 1}, {dx, dy}, {dx, dy}}
	s.samples = [][]int32{
		make([]int32, s.width*s.height),
		make([]int32, cw*ch),
		make([]int32, cw*ch),
	}
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			s.samples[0][y*s.width+x] = int32(img.Y[img.YOffset(b.Min.X+x, b.Min.Y+y)])
		}
	}
	for j := 0; j < ch; j++ {
		for i := 0; i < cw; i++ {
			off := img.COffset(b.Min.X+i*dx, b.Min.Y+j*dy)
			s.samples[1][j*cw+i] = int32(img.Cb[off])
			s.samples[2][j*cw+i] = int32(img.Cr[off])
		}
	}
}

// Size returns the image size.
func (s *ImageSource) Size() (int, int) { return s.width, s.height }

// NumComponents returns the number of components.
func (s *ImageSource) NumComponents() int { return len(s.samples) }

// Depth returns the bit depth of component c.
func (s *ImageSource) Depth(c int) int { return s.depth }

// Signed returns false; image samples are unsigned.
func (s *ImageSource) Signed(c int) bool { return false }

// Subsampling returns the subsampling factors of component c.
func (s *ImageSource) Subsampling(c int) (int, int) { return s.sub[c][0], s.sub[c][1] }

// Samples returns component c.
func (s *ImageSource) Samples(c int) []int32 { return s.samples[c] }

// ColorSpace returns the colour space of the source image.
func (s *ImageSource) ColorSpace() ColorSpace { return s.colorSpace }

// PaletteBox converts p to an 8-bit palette box, with an alpha column when
// any entry is translucent.
func PaletteBox(p color.Palette) (*box.PaletteBox, error) {
	alpha := false
	entries := make([][]int32, len(p))
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		entries[i] = []int32{int32(n.R), int32(n.G), int32(n.B), int32(n.A)}
		if n.A != 0xFF {
			alpha = true
		}
	}
	depths := []int{8, 8, 8, 8}
	if !alpha {
		depths = depths[:3]
		for i := range entries {
			entries[i] = entries[i][:3]
		}
	}
	return box.NewPaletteBox(depths, nil, entries)
}
