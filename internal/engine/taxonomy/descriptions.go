package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/crimson-sun/tiermap/internal/model"
)

// DomainDescription is the aggregate text a domain embedding is built from.
type DomainDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadDomainDescriptions reads a JSON array of {"name", "description"}.
func LoadDomainDescriptions(path string) ([]DomainDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	var out []DomainDescription
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("taxonomy: parse descriptions: %w", err)
	}
	for i, d := range out {
		if d.Name == "" || d.Description == "" {
			return nil, fmt.Errorf("taxonomy: description %d is missing name or text", i)
		}
	}
	return out, nil
}

// Describe derives descriptions from the store: each domain's name followed
// by the names of its tier-2 categories.
func (s *Store) Describe() []DomainDescription {
	out := make([]DomainDescription, 0, len(s.domains))
	for _, d := range s.domains {
		desc := d
		if subset, err := s.Subset(d, DefaultDepth); err == nil {
			desc += ": " + joinNames(subset)
		}
		out = append(out, DomainDescription{Name: d, Description: desc})
	}
	return out
}

func joinNames(categories []model.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
