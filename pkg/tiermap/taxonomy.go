package tiermap

import (
	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
	"github.com/crimson-sun/tiermap/internal/model"
)

// Category is a taxonomy node.
type Category struct {
	ID       string
	Name     string
	Domain   string
	TierPath []string // domain first
}

// Domains returns the top-level domain names in taxonomy order.
func (t *Tiermap) Domains() []string {
	return t.app.Store.Domains()
}

// Subset returns the categories of domain at the configured tier depth.
// This is the candidate list fine classification chooses from.
func (t *Tiermap) Subset(domain string) ([]Category, error) {
	cats, err := t.app.Store.Subset(domain, t.app.Options.TierDepth)
	if err != nil {
		return nil, err
	}
	return categoriesFromModel(cats), nil
}

// CompactSubset renders Subset as the "id:name" lines sent to a reasoner.
func (t *Tiermap) CompactSubset(domain string) (string, error) {
	cats, err := t.app.Store.Subset(domain, t.app.Options.TierDepth)
	if err != nil {
		return "", err
	}
	return taxonomy.Compact(cats), nil
}

func categoriesFromModel(cats []model.Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{ID: c.ID, Name: c.Name, Domain: c.Domain, TierPath: c.TierPath}
	}
	return out
}
