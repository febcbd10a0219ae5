package codec

import (
	"io"

	"neuromesh/internal/domain"
)

// SceneExporter writes a scene description in a viewer-consumable format
type SceneExporter interface {
	Export(scene *domain.Scene, w io.Writer) error
	Format() string
}

// ExporterFor returns the scene exporter for a format name, or nil if
// the format is unknown
func ExporterFor(format string) SceneExporter {
	switch format {
	case "json":
		return NewJSONCodec()
	case "yaml", "yml":
		return NewYAMLCodec()
	}
	return nil
}
