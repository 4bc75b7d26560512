package box

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mrjoshuak/go-jp2/icc"
)

// Colour specification methods.
const (
	MethodEnumerated    = 1 // Enumerated colorspace
	MethodRestrictedICC = 2 // Restricted ICC profile
	MethodAnyICC        = 3 // Any ICC method (full profile)
)

// Enumerated colorspace values per ISO/IEC 15444-1 Annex M
const (
	CSBilevel1  = 0  // Bi-level (black and white)
	CSYCbCr1    = 1  // YCbCr(1) - ITU-R BT.709-5 based (sRGB primaries)
	CSYCbCr2    = 3  // YCbCr(2) - ITU-R BT.601-5 for 625-line systems
	CSYCbCr3    = 4  // YCbCr(3) - ITU-R BT.601-5 for 525-line systems
	CSPhotoYCC  = 9  // PhotoYCC (Kodak Photo CD)
	CSCMY       = 11 // CMY (Cyan, Magenta, Yellow)
	CSCMYK      = 12 // CMYK (Cyan, Magenta, Yellow, Key/Black)
	CSYCCK      = 13 // YCCK (PhotoYCC with Key/Black)
	CSCIELab    = 14 // CIELab (D50 illuminant)
	CSBilevel2  = 15 // Bi-level(2) - alternative bi-level encoding
	CSSRGB      = 16 // sRGB (IEC 61966-2-1)
	CSGray      = 17 // Grayscale
	CSsYCC      = 18 // sYCC (IEC 61966-2-1 Annex G)
	CSCIEJab    = 19 // CIEJab (CIECAM02-based)
	CSeSRGB     = 20 // e-sRGB (extended sRGB, IEC 61966-2-1 Amendment 1)
	CSROMMRGB   = 21 // ROMM-RGB (Reference Output Medium Metric, ISO 22028-2)
	CSYPbPr1125 = 22 // YPbPr for 1125/60 systems (SMPTE 274M)
	CSYPbPr1250 = 23 // YPbPr for 1250/50 systems (ITU-R BT.1361)
	CSeSYCC     = 24 // e-sYCC (extended sYCC gamut)
)

// ColorSpecBox represents color specification.
//
// The embedded ICC profile header is parsed on the first call to Profile and
// cached; concurrent callers share the single parse.
type ColorSpecBox struct {
	frame
	Method               uint8
	Precedence           uint8
	Approximation        uint8
	EnumeratedColorspace uint32
	ICCProfile           []byte

	once       sync.Once
	profile    *icc.Profile
	profileErr error
}

// NewEnumeratedColorSpecBox returns a colr box naming an enumerated space.
func NewEnumeratedColorSpecBox(cs uint32) *ColorSpecBox {
	return &ColorSpecBox{Method: MethodEnumerated, EnumeratedColorspace: cs}
}

// NewICCColorSpecBox returns a colr box embedding a restricted ICC profile.
func NewICCColorSpecBox(profile []byte) *ColorSpecBox {
	return &ColorSpecBox{Method: MethodRestrictedICC, ICCProfile: profile}
}

// Type returns TypeColorSpec.
func (b *ColorSpecBox) Type() Type { return TypeColorSpec }

// HasICC reports whether the box carries an embedded profile.
func (b *ColorSpecBox) HasICC() bool {
	return b.Method == MethodRestrictedICC || b.Method == MethodAnyICC
}

// errNoProfile is returned by Profile for enumerated boxes.
var errNoProfile = errors.New("colour specification has no ICC profile")

// Profile returns the parsed header of the embedded ICC profile.
func (b *ColorSpecBox) Profile() (*icc.Profile, error) {
	b.once.Do(func() {
		if !b.HasICC() {
			b.profileErr = errNoProfile
			return
		}
		b.profile, b.profileErr = icc.Parse(b.ICCProfile)
	})
	return b.profile, b.profileErr
}

// PayloadLen returns the contents length.
func (b *ColorSpecBox) PayloadLen() int64 {
	if b.Method == MethodEnumerated {
		return b.length(7)
	}
	return b.length(3 + len(b.ICCProfile))
}

// WritePayload writes the method header followed by the enumerated code or
// the profile bytes.
func (b *ColorSpecBox) WritePayload(w io.Writer) error {
	e := newEncoder(w)
	e.u8(b.Method)
	e.u8(b.Precedence)
	e.u8(b.Approximation)
	if b.Method == MethodEnumerated {
		e.u32(b.EnumeratedColorspace)
	} else {
		e.write(b.ICCProfile)
	}
	return e.err
}

// Describe exports the colour specification.
func (b *ColorSpecBox) Describe() *Node {
	n := newNode("ColorSpecBox", TypeColorSpec).
		Attr("method", b.Method).
		Attr("precedence", b.Precedence).
		Attr("approximation", b.Approximation)
	if b.Method == MethodEnumerated {
		return n.Attr("enumCS", b.EnumeratedColorspace)
	}
	n.Attr("iccLength", len(b.ICCProfile))
	if p, err := b.Profile(); err == nil {
		n.Add((&Node{Name: "icc"}).
			Attr("class", p.Class).
			Attr("colorSpace", p.ColorSpace).
			Attr("pcs", p.PCS).
			Attr("version", p.VersionString()))
	}
	return n
}

func (b *ColorSpecBox) readPayload(p *payload) error {
	if p.remaining() < 3 {
		return fmt.Errorf("%w: color specification box too short", ErrMalformedBox)
	}
	b.Method = p.u8()
	b.Precedence = p.u8()
	b.Approximation = p.u8()

	switch b.Method {
	case MethodEnumerated:
		if p.remaining() < 4 {
			return fmt.Errorf("%w: color specification box too short for enumerated CS", ErrMalformedBox)
		}
		b.EnumeratedColorspace = p.u32()
	default:
		b.ICCProfile = p.rest()
	}
	return nil
}
