// Package codestream reads the main header of a JPEG 2000 codestream far
// enough to describe its geometry. It does not decode tile data.
package codestream

// Marker codes for JPEG 2000 codestreams.
// These are defined in ISO/IEC 15444-1 Annex A.
const (
	SOC Marker = 0xFF4F // Start of codestream
	SOT Marker = 0xFF90 // Start of tile-part
	SOD Marker = 0xFF93 // Start of data
	EOC Marker = 0xFFD9 // End of codestream
	SIZ Marker = 0xFF51 // Image and tile size
	COD Marker = 0xFF52 // Coding style default
	COC Marker = 0xFF53 // Coding style component
	QCD Marker = 0xFF5C // Quantization default
	COM Marker = 0xFF64 // Comment
	CAP Marker = 0xFF50 // Extended capabilities
)

// Marker represents a JPEG 2000 marker code.
type Marker uint16

// String returns the string representation of a marker.
func (m Marker) String() string {
	switch m {
	case SOC:
		return "SOC"
	case SOT:
		return "SOT"
	case SOD:
		return "SOD"
	case EOC:
		return "EOC"
	case SIZ:
		return "SIZ"
	case COD:
		return "COD"
	case COC:
		return "COC"
	case QCD:
		return "QCD"
	case COM:
		return "COM"
	case CAP:
		return "CAP"
	default:
		return "UNKNOWN"
	}
}

// HasLength returns true if this marker has a length field following it.
func (m Marker) HasLength() bool {
	switch m {
	case SOC, SOD, EOC:
		return false
	default:
		return true
	}
}
