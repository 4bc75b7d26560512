package jp2

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-jp2/box"
	"github.com/mrjoshuak/go-jp2/icc"
	"github.com/mrjoshuak/go-jp2/internal/codestream"
)

// fakeSource is an in-memory TileSource. Planes hold natural (unsigned)
// sample values on each component's grid; DecodeBlock serves them
// zero-centred.
type fakeSource struct {
	levels [][2]int
	level  int
	tileW  int
	tileH  int
	comps  []ComponentInfo
	planes [][]int32

	progressive int // refinement passes before a block is final
	failDecode  error
	cancel      context.CancelFunc // called on the first DecodeBlock

	passes  map[[3]int]int
	decodes int
	closed  int
}

func newFakeSource(width, height int, comps []ComponentInfo, planes [][]int32) *fakeSource {
	return &fakeSource{
		levels: [][2]int{{width, height}},
		tileW:  width,
		tileH:  height,
		comps:  comps,
		planes: planes,
		passes: map[[3]int]int{},
	}
}

// grayPlane returns a depth-8 single component source holding pix.
func grayPlane(width, height int, pix []int32) *fakeSource {
	return newFakeSource(width, height, []ComponentInfo{{Depth: 8, SubX: 1, SubY: 1}}, [][]int32{pix})
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func (s *fakeSource) NumLevels() int { return len(s.levels) }
func (s *fakeSource) LevelSize(r int) (int, int) { return s.levels[r][0], s.levels[r][1] }
func (s *fakeSource) ImageSize() (int, int) { return s.LevelSize(s.level) }
func (s *fakeSource) NumComponents() int { return len(s.comps) }
func (s *fakeSource) Component(c int) ComponentInfo { return s.comps[c] }

func (s *fakeSource) SetLevel(r int) error {
	if r < 0 || r >= len(s.levels) {
		return fmt.Errorf("level %d out of range", r)
	}
	s.level = r
	return nil
}

func (s *fakeSource) NumTiles() (int, int) {
	w, h := s.ImageSize()
	return ceilDiv(w, s.tileW), ceilDiv(h, s.tileH)
}

// tileBounds returns the tile's position and size on the image grid.
func (s *fakeSource) tileBounds(tx, ty int) (x0, y0, w, h int) {
	iw, ih := s.ImageSize()
	x0, y0 = tx*s.tileW, ty*s.tileH
	return x0, y0, min(s.tileW, iw-x0), min(s.tileH, ih-y0)
}

func (s *fakeSource) TileSize(tx, ty int) (int, int) {
	_, _, w, h := s.tileBounds(tx, ty)
	return w, h
}

func (s *fakeSource) TileComponentSize(tx, ty, c int) (int, int) {
	x0, y0, w, h := s.tileBounds(tx, ty)
	ci := s.comps[c]
	return ceilDiv(x0+w, ci.SubX) - ceilDiv(x0, ci.SubX), ceilDiv(y0+h, ci.SubY) - ceilDiv(y0, ci.SubY)
}

func (s *fakeSource) DecodeBlock(tx, ty, c int, b *Block) error {
	s.decodes++
	if s.cancel != nil {
		s.cancel()
	}
	if s.failDecode != nil {
		return s.failDecode
	}
	iw, _ := s.ImageSize()
	ci := s.comps[c]
	x0, y0, _, _ := s.tileBounds(tx, ty)
	cw, ch := s.TileComponentSize(tx, ty, c)
	scan := ceilDiv(iw, ci.SubX)
	cx0, cy0 := ceilDiv(x0, ci.SubX), ceilDiv(y0, ci.SubY)

	mid := int32(1) << (ci.Depth - 1)
	b.Data = make([]int32, cw*ch)
	for j := 0; j < ch; j++ {
		for i := 0; i < cw; i++ {
			b.Data[j*cw+i] = (s.planes[c][(cy0+j)*scan+cx0+i] - mid) << ci.FracBits
		}
	}
	b.Offset, b.Scan, b.Width, b.Height = 0, cw, cw, ch

	key := [3]int{tx, ty, c}
	s.passes[key]++
	b.Progressive = s.passes[key] <= s.progressive
	return nil
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

// sourceFrom builds a fakeSource that decodes what src holds.
func sourceFrom(src EncodableSource) *fakeSource {
	w, h := src.Size()
	comps := make([]ComponentInfo, src.NumComponents())
	planes := make([][]int32, len(comps))
	for c := range comps {
		dx, dy := src.Subsampling(c)
		comps[c] = ComponentInfo{Depth: src.Depth(c), SubX: dx, SubY: dy}
		planes[c] = src.Samples(c)
	}
	return newFakeSource(w, h, comps, planes)
}

// fakeEncoder writes a main header describing the source followed by the
// raw samples of component 0 and EOC.
type fakeEncoder struct {
	params EncodeParams
	src    EncodableSource
	width  int // overrides the SIZ width when set
	fail   error
	out    []byte
}

func (e *fakeEncoder) Encode(ctx context.Context, src EncodableSource, p EncodeParams, w io.Writer) error {
	if e.fail != nil {
		return e.fail
	}
	e.params, e.src = p, src
	width, height := src.Size()
	if e.width != 0 {
		width = e.width
	}
	var wavelet uint8
	if p.Lossless {
		wavelet = 1
	}
	data := appendMainHeader(nil, uint32(width), uint32(height), src, wavelet)
	data = binary.BigEndian.AppendUint16(data, uint16(codestream.SOT))
	for _, v := range src.Samples(0) {
		data = append(data, byte(v))
	}
	data = binary.BigEndian.AppendUint16(data, uint16(codestream.EOC))
	e.out = data
	_, err := w.Write(data)
	return err
}

// appendMainHeader appends SOC, a single-tile SIZ for src's components and
// a one-layer, five-level COD using the given wavelet.
func appendMainHeader(buf []byte, width, height uint32, src EncodableSource, wavelet uint8) []byte {
	be := binary.BigEndian
	nc := src.NumComponents()
	buf = be.AppendUint16(buf, uint16(codestream.SOC))
	buf = be.AppendUint16(buf, uint16(codestream.SIZ))
	buf = be.AppendUint16(buf, uint16(38+3*nc))
	buf = be.AppendUint16(buf, 0)
	for _, v := range []uint32{width, height, 0, 0, width, height, 0, 0} {
		buf = be.AppendUint32(buf, v)
	}
	buf = be.AppendUint16(buf, uint16(nc))
	for c := 0; c < nc; c++ {
		ssiz := uint8(src.Depth(c) - 1)
		if src.Signed(c) {
			ssiz |= 0x80
		}
		dx, dy := src.Subsampling(c)
		buf = append(buf, ssiz, uint8(dx), uint8(dy))
	}

	buf = be.AppendUint16(buf, uint16(codestream.COD))
	buf = be.AppendUint16(buf, 12)
	buf = append(buf, 0, 0)
	buf = be.AppendUint16(buf, 1)
	return append(buf, 0, 5, 4, 4, 0, wavelet)
}

// minimalFile returns a file with a depth-8 single component w x h header
// and the given codestream bytes.
func minimalFile(w, h uint32, jp2c []byte) (*File, error) {
	jp2h, err := box.NewHeaderBox(box.NewImageHeaderBox(w, h, 1, 8, false))
	if err != nil {
		return nil, err
	}
	f := &File{}
	for _, b := range []box.Box{box.NewFileTypeBox(), jp2h, box.NewCodestreamBox(jp2c)} {
		if err := f.Add(b); err != nil {
			return nil, err
		}
	}
	return f, nil
}

var errDecode = errors.New("decode failed")

// iccProfile returns a minimal profile header for the given data colour
// space.
func iccProfile(cs icc.Signature) []byte {
	p := make([]byte, icc.HeaderSize)
	binary.BigEndian.PutUint32(p[0:4], icc.HeaderSize)
	binary.BigEndian.PutUint32(p[8:12], 0x02100000)
	binary.BigEndian.PutUint32(p[12:16], uint32(icc.ClassDisplay))
	binary.BigEndian.PutUint32(p[16:20], uint32(cs))
	binary.BigEndian.PutUint32(p[20:24], uint32(icc.ColorSpaceXYZ))
	copy(p[36:40], "acsp")
	return p
}

// planeSource is an EncodableSource of zero samples with per-component
// depth and signedness.
type planeSource struct {
	width, height int
	depths        []int
	signed        []bool
}

func (s *planeSource) Size() (int, int) { return s.width, s.height }
func (s *planeSource) NumComponents() int { return len(s.depths) }
func (s *planeSource) Depth(c int) int { return s.depths[c] }
func (s *planeSource) Signed(c int) bool { return c < len(s.signed) && s.signed[c] }
func (s *planeSource) Subsampling(c int) (int, int) { return 1, 1 }
func (s *planeSource) Samples(c int) []int32 { return make([]int32, s.width*s.height) }
