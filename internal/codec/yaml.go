package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"neuromesh/internal/domain"
)

// YAMLCodec exports scene descriptions as YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML scene codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Export writes the scene as YAML
func (c *YAMLCodec) Export(scene *domain.Scene, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(scene); err != nil {
		return fmt.Errorf("failed to encode scene YAML: %w", err)
	}
	return nil
}
