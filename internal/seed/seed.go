// Package seed provides the starter listings loaded into the catalog at startup.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meraroom/meraroom-server/internal/domain"
)

//go:embed rooms.yaml
var defaultRooms []byte

type file struct {
	Rooms []domain.Room `yaml:"rooms"`
}

// Default returns the built-in listings in catalog order.
func Default() ([]domain.Room, error) {
	return Parse(defaultRooms)
}

// Load reads listings from a YAML file.
func Load(path string) ([]domain.Room, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- operator-supplied seed file
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a seed document. Ids must be present and unique
// and prices non-negative.
func Parse(data []byte) ([]domain.Room, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Rooms))
	for i, r := range f.Rooms {
		if r.ID == "" {
			return nil, fmt.Errorf("seed room %d: missing id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("seed room %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Price < 0 {
			return nil, fmt.Errorf("seed room %q: negative price", r.ID)
		}
	}
	return f.Rooms, nil
}
