package box

import (
	"io"

	"github.com/mrjoshuak/go-jp2/internal/codestream"
)

// CodestreamBox ("jp2c") carries a contiguous JPEG 2000 codestream. The
// bytes are held opaquely; decoding them is the job of a TileSource.
type CodestreamBox struct {
	frame
	Data []byte
}

// NewCodestreamBox returns a jp2c box holding data.
func NewCodestreamBox(data []byte) *CodestreamBox {
	return &CodestreamBox{Data: data}
}

// Type returns TypeContCodestream.
func (b *CodestreamBox) Type() Type { return TypeContCodestream }

// Summary parses the main header of the codestream.
func (b *CodestreamBox) Summary() (*codestream.Header, error) {
	return codestream.Probe(b.Data)
}

// PayloadLen returns the codestream length, or ToEOF.
func (b *CodestreamBox) PayloadLen() int64 { return b.length(len(b.Data)) }

// WritePayload writes the codestream bytes.
func (b *CodestreamBox) WritePayload(w io.Writer) error {
	_, err := w.Write(b.Data)
	return err
}

// Describe exports the codestream length and, when the main header parses,
// its geometry.
func (b *CodestreamBox) Describe() *Node {
	n := newNode("CodestreamBox", TypeContCodestream).Attr("length", len(b.Data))
	h, err := b.Summary()
	if err != nil {
		return n
	}
	siz := (&Node{Name: "siz"}).
		Attr("width", h.Width()).
		Attr("height", h.Height()).
		Attr("tileWidth", h.TileWidth).
		Attr("tileHeight", h.TileHeight).
		Attr("numComponents", h.NumComponents)
	if h.HasCOD {
		siz.Attr("resolutions", h.NumResolutions()).
			Attr("layers", h.NumLayers).
			Attr("reversible", h.IsReversible())
	}
	for i, c := range h.ComponentInfo {
		siz.Add((&Node{Name: "component"}).
			Attr("index", i).
			Attr("bitDepth", c.Precision()).
			Attr("signed", c.IsSigned()).
			Attr("dx", c.SubsamplingX).
			Attr("dy", c.SubsamplingY))
	}
	return n.Add(siz)
}

func (b *CodestreamBox) readPayload(p *payload) error {
	b.Data = p.rest()
	return nil
}
