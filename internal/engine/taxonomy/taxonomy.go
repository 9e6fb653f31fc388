package taxonomy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/crimson-sun/tiermap/internal/model"
)

// DefaultDepth is the tier the fine classifier ranks within a domain.
const DefaultDepth = 2

// Tier 1 is the domain itself, so candidates start one level below it.
const (
	MinDepth = 2
	MaxDepth = 4
)

// Store is the in-memory taxonomy, indexed by id and by top-level domain.
// Read-only after construction and safe for concurrent use.
type Store struct {
	categories []model.Category
	byID       map[string]int
	byDomain   map[string][]int // native order
	domains    []string
}

// New indexes the given categories. Ids must be unique and every category
// must name its domain.
func New(categories []model.Category) (*Store, error) {
	s := &Store{
		categories: categories,
		byID:       make(map[string]int, len(categories)),
		byDomain:   make(map[string][]int),
	}
	for i, c := range categories {
		if c.ID == "" {
			return nil, fmt.Errorf("taxonomy: category %q has no id", c.Name)
		}
		if c.Domain == "" {
			return nil, fmt.Errorf("taxonomy: category %s has no domain", c.ID)
		}
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate category id %s", c.ID)
		}
		s.byID[c.ID] = i
		if _, seen := s.byDomain[c.Domain]; !seen {
			s.domains = append(s.domains, c.Domain)
		}
		s.byDomain[c.Domain] = append(s.byDomain[c.Domain], i)
	}
	return s, nil
}

// Load reads a taxonomy JSON file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	return Parse(data)
}

// Parse decodes taxonomy rows of the form
// {"unique_id", "parent", "name", "tier_1", "tier_2", "tier_3", "tier_4"}.
// A leading spreadsheet header row is skipped.
func Parse(data []byte) (*Store, error) {
	var rows []row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("taxonomy: parse: %w", err)
	}
	if len(rows) > 0 && rows[0].UniqueID == "Unique ID" {
		rows = rows[1:]
	}

	cats := make([]model.Category, 0, len(rows))
	for _, r := range rows {
		cats = append(cats, r.category())
	}
	return New(cats)
}

type row struct {
	UniqueID text `json:"unique_id"`
	Parent   text `json:"parent"`
	Name     text `json:"name"`
	Tier1    text `json:"tier_1"`
	Tier2    text `json:"tier_2"`
	Tier3    text `json:"tier_3"`
	Tier4    text `json:"tier_4"`
}

func (r row) category() model.Category {
	var path []string
	for _, t := range []text{r.Tier1, r.Tier2, r.Tier3, r.Tier4} {
		if t == "" {
			break
		}
		path = append(path, string(t))
	}
	domain := string(r.Tier1)
	if domain == "" {
		domain = string(r.Name)
	}
	if len(path) == 0 {
		path = []string{domain}
	}
	return model.Category{
		ID:       string(r.UniqueID),
		Name:     string(r.Name),
		Domain:   domain,
		TierPath: path,
	}
}

// text accepts a JSON string, number or null.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = text(n.String())
	return nil
}

// Category returns the category with the given id.
func (s *Store) Category(id string) (model.Category, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Category{}, false
	}
	return s.categories[i], true
}

// Domains returns top-level domain names in first-seen order.
func (s *Store) Domains() []string {
	out := make([]string, len(s.domains))
	copy(out, s.domains)
	return out
}

// Len returns the number of categories.
func (s *Store) Len() int {
	return len(s.categories)
}

// Subset returns the categories of domain at the given tier depth, in native
// taxonomy order. A zero depth means DefaultDepth; any other depth outside
// [MinDepth, MaxDepth] is a configuration error. Returns
// model.ErrEmptyCategorySet when nothing matches.
func (s *Store) Subset(domain string, depth int) ([]model.Category, error) {
	if depth == 0 {
		depth = DefaultDepth
	}
	if depth < MinDepth || depth > MaxDepth {
		return nil, model.Configf("taxonomy: tier depth must be within [%d,%d], got %d", MinDepth, MaxDepth, depth)
	}
	var out []model.Category
	for _, i := range s.byDomain[domain] {
		if c := s.categories[i]; c.Depth() == depth {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("taxonomy: domain %q at tier %d: %w", domain, depth, model.ErrEmptyCategorySet)
	}
	return out, nil
}

// Compact encodes candidates as "id:name" lines. Descriptions are never
// included, which keeps reasoning prompts small.
func Compact(categories []model.Category) string {
	var b strings.Builder
	for i, c := range categories {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.ID)
		b.WriteByte(':')
		b.WriteString(c.Name)
	}
	return b.String()
}
