// Package icc reads the fixed 128-byte header of an ICC colour profile, which
// is all a JP2 decoder needs to pick an output colour model.
package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the length of the ICC profile header.
const HeaderSize = 128

// magic is the 'acsp' profile file signature at offset 36.
const magic = 0x61637370

// ErrInvalidProfile is returned for data that is not an ICC profile.
var ErrInvalidProfile = errors.New("icc: invalid profile")

// Signature is a 4-byte ICC signature.
type Signature uint32

// String returns the 4-character signature.
func (s Signature) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(s))
	return string(b)
}

// Data colour space signatures.
const (
	ColorSpaceXYZ   Signature = 0x58595A20 // 'XYZ '
	ColorSpaceLab   Signature = 0x4C616220 // 'Lab '
	ColorSpaceLuv   Signature = 0x4C757620 // 'Luv '
	ColorSpaceYCbCr Signature = 0x59436272 // 'YCbr'
	ColorSpaceYxy   Signature = 0x59787920 // 'Yxy '
	ColorSpaceRGB   Signature = 0x52474220 // 'RGB '
	ColorSpaceGray  Signature = 0x47524159 // 'GRAY'
	ColorSpaceHSV   Signature = 0x48535620 // 'HSV '
	ColorSpaceHLS   Signature = 0x484C5320 // 'HLS '
	ColorSpaceCMYK  Signature = 0x434D594B // 'CMYK'
	ColorSpaceCMY   Signature = 0x434D5920 // 'CMY '
)

// Profile classes.
const (
	ClassInput      Signature = 0x73636E72 // 'scnr'
	ClassDisplay    Signature = 0x6D6E7472 // 'mntr'
	ClassOutput     Signature = 0x70727472 // 'prtr'
	ClassLink       Signature = 0x6C696E6B // 'link'
	ClassAbstract   Signature = 0x61627374 // 'abst'
	ClassColorSpace Signature = 0x73706163 // 'spac'
	ClassNamedColor Signature = 0x6E6D636C // 'nmcl'
)

// Profile holds the parsed header fields of an ICC profile.
type Profile struct {
	Size            uint32    // Profile size in bytes
	CMM             Signature // CMM for this profile
	Version         uint32    // Format version number
	Class           Signature // Type of profile
	ColorSpace      Signature // Color space of data
	PCS             Signature // PCS, XYZ or Lab only
	Platform        Signature // Primary platform
	Flags           uint32
	Manufacturer    Signature
	Model           uint32
	RenderingIntent uint32
	Creator         Signature

	// Data is the complete profile.
	Data []byte
}

// Parse reads the profile header from data.
func Parse(data []byte) (*Profile, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidProfile, len(data), HeaderSize)
	}
	be := binary.BigEndian
	if be.Uint32(data[36:40]) != magic {
		return nil, fmt.Errorf("%w: missing acsp signature", ErrInvalidProfile)
	}
	p := &Profile{
		Size:            be.Uint32(data[0:4]),
		CMM:             Signature(be.Uint32(data[4:8])),
		Version:         be.Uint32(data[8:12]),
		Class:           Signature(be.Uint32(data[12:16])),
		ColorSpace:      Signature(be.Uint32(data[16:20])),
		PCS:             Signature(be.Uint32(data[20:24])),
		Platform:        Signature(be.Uint32(data[40:44])),
		Flags:           be.Uint32(data[44:48]),
		Manufacturer:    Signature(be.Uint32(data[48:52])),
		Model:           be.Uint32(data[52:56]),
		RenderingIntent: be.Uint32(data[64:68]),
		Creator:         Signature(be.Uint32(data[80:84])),
		Data:            data,
	}
	if p.Size != 0 && int64(p.Size) > int64(len(data)) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrInvalidProfile, p.Size, len(data))
	}
	return p, nil
}

// NumComponents returns the number of colour channels of the data colour
// space, or 0 if the space is not recognized.
func (p *Profile) NumComponents() int {
	switch p.ColorSpace {
	case ColorSpaceGray:
		return 1
	case ColorSpaceXYZ, ColorSpaceLab, ColorSpaceLuv, ColorSpaceYCbCr, ColorSpaceYxy,
		ColorSpaceRGB, ColorSpaceHSV, ColorSpaceHLS, ColorSpaceCMY:
		return 3
	case ColorSpaceCMYK:
		return 4
	}
	// 'nCLR' multichannel spaces, n in 2..9 then A..F for 10..15.
	s := uint32(p.ColorSpace)
	if s&0x00FFFFFF == 0x00434C52 {
		switch c := byte(s >> 24); {
		case c >= '2' && c <= '9':
			return int(c - '0')
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10
		}
	}
	return 0
}

// VersionString returns the profile version as "major.minor.bugfix".
func (p *Profile) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", p.Version>>24, (p.Version>>20)&0xF, (p.Version>>16)&0xF)
}
