package jp2

import (
	"errors"

	"github.com/mrjoshuak/go-jp2/box"
)

// Errors shared with the box package. Box read failures arrive wrapped in a
// *box.FormatError and match these with errors.Is.
var (
	ErrMalformedBox       = box.ErrMalformedBox
	ErrUnsupportedFeature = box.ErrUnsupportedFeature
	ErrStructuralOrder    = box.ErrStructuralOrder
	ErrDuplicateBox       = box.ErrDuplicateBox
	ErrMissingRequiredBox = box.ErrMissingRequiredBox
	ErrBadSignature       = box.ErrBadSignature
)

// Errors returned by the raster reader and writer.
var (
	// ErrUnsupportedColorSpace is returned when the colour space can be
	// neither resolved from its enumerated code nor from an ICC profile.
	ErrUnsupportedColorSpace = errors.New("jp2: unsupported color space")

	// ErrInterrupted is returned when the context is cancelled during a
	// decode. The error also wraps the context's error.
	ErrInterrupted = errors.New("jp2: interrupted")

	// ErrClosed is returned by reads after Close.
	ErrClosed = errors.New("jp2: reader closed")
)
