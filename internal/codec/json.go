package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"neuromesh/internal/domain"
)

// JSONCodec exports scene descriptions as indented JSON
type JSONCodec struct{}

// NewJSONCodec creates a new JSON scene codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Export writes the scene as JSON
func (c *JSONCodec) Export(scene *domain.Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scene); err != nil {
		return fmt.Errorf("failed to encode scene JSON: %w", err)
	}
	return nil
}
