// Package codec converts canvas layouts to and from interchange formats.
package codec

import (
	"fmt"
	"io"
	"strings"

	"stemma/internal/domain"
)

// Importer interface for importing layouts from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Layout, error)
	Format() string
}

// Exporter interface for exporting layouts to various formats
type Exporter interface {
	Export(layout *domain.Layout, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name or file extension
func ForFormat(format string) (Codec, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
