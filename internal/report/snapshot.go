package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/race-kelly-sim/internal/config"
)

// WriteConfigSnapshot writes the resolved configuration as YAML. The store
// password is excluded by its yaml tag.
func WriteConfigSnapshot(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config snapshot: %w", err)
	}
	return enc.Close()
}
