package ir

import (
	"fmt"
	"strings"
)

// Format selects how the server encodes the query result.
// The zero value is FormatUnset.
type Format int

const (
	// FormatUnset means no explicit encode() wrapper was requested.
	// Responses are decoded as whitespace separated numbers.
	FormatUnset Format = iota
	FormatCSV
	FormatPNG
	FormatJPEG
)

// MIME types embedded in encode() and used to pick a decoder.
const (
	MIMECSV  = "text/csv"
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// ValidFormats lists the names accepted by ParseFormat.
var ValidFormats = []string{"CSV", "PNG", "JPEG"}

// MIMEType returns the content type for the format, or "" for FormatUnset.
func (f Format) MIMEType() string {
	switch f {
	case FormatCSV:
		return MIMECSV
	case FormatPNG:
		return MIMEPNG
	case FormatJPEG:
		return MIMEJPEG
	default:
		return ""
	}
}

// IsImage reports whether responses in this format are returned as raw bytes.
func (f Format) IsImage() bool {
	return f == FormatPNG || f == FormatJPEG
}

// String returns the upper-case format name, "" when unset.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	default:
		return ""
	}
}

// ParseFormat maps a format name (case-insensitive) to a Format.
// An empty name yields FormatUnset.
func ParseFormat(name string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return FormatUnset, nil
	case "CSV":
		return FormatCSV, nil
	case "PNG":
		return FormatPNG, nil
	case "JPEG", "JPG":
		return FormatJPEG, nil
	default:
		return FormatUnset, &QueryError{
			Code:    ErrCodeInvalidArgument,
			Message: fmt.Sprintf("unsupported format %q: must be one of %v", name, ValidFormats),
		}
	}
}
