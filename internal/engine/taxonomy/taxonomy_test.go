package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/tiermap/internal/model"
)

const sampleRows = `[
  {"unique_id": "Unique ID", "parent": "Parent", "name": "Name", "tier_1": "Tier 1", "tier_2": "Tier 2", "tier_3": "Tier 3", "tier_4": "Tier 4"},
  {"unique_id": 1, "parent": null, "name": "Automotive", "tier_1": "Automotive", "tier_2": null, "tier_3": null, "tier_4": null},
  {"unique_id": "2", "parent": "1", "name": "Auto Body Styles", "tier_1": "Automotive", "tier_2": "Auto Body Styles", "tier_3": null, "tier_4": null},
  {"unique_id": "3", "parent": "2", "name": "Commercial Trucks", "tier_1": "Automotive", "tier_2": "Auto Body Styles", "tier_3": "Commercial Trucks", "tier_4": null},
  {"unique_id": "38", "parent": "1", "name": "Motorcycles", "tier_1": "Automotive", "tier_2": "Motorcycles", "tier_3": "", "tier_4": ""},
  {"unique_id": "454", "parent": "453", "name": "Astrology", "tier_1": "Religion & Spirituality", "tier_2": "Astrology"}
]`

func TestParseSkipsHeaderAndBuildsPaths(t *testing.T) {
	s, err := Parse([]byte(sampleRows))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	if _, ok := s.Category("Unique ID"); ok {
		t.Error("header row should be skipped")
	}

	c, ok := s.Category("3")
	if !ok {
		t.Fatal("category 3 missing")
	}
	if c.Domain != "Automotive" || c.Depth() != 3 {
		t.Errorf("category 3 = %+v", c)
	}
	if got := c.Path(); got != "Automotive > Auto Body Styles > Commercial Trucks" {
		t.Errorf("Path() = %q", got)
	}

	if root, _ := s.Category("1"); root.Depth() != 1 {
		t.Errorf("numeric id root depth = %d, want 1", root.Depth())
	}

	want := []string{"Automotive", "Religion & Spirituality"}
	got := s.Domains()
	if len(got) != len(want) {
		t.Fatalf("Domains() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Domains()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]model.Category{
		{ID: "1", Name: "A", Domain: "A", TierPath: []string{"A"}},
		{ID: "1", Name: "B", Domain: "B", TierPath: []string{"B"}},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestSubsetNativeOrder(t *testing.T) {
	s, err := Parse([]byte(sampleRows))
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Subset("Automotive", 2)
	if err != nil {
		t.Fatalf("Subset() error: %v", err)
	}
	if len(sub) != 2 || sub[0].ID != "2" || sub[1].ID != "38" {
		t.Fatalf("Subset() = %+v", sub)
	}

	deep, err := s.Subset("Automotive", 3)
	if err != nil || len(deep) != 1 || deep[0].ID != "3" {
		t.Fatalf("Subset(depth 3) = %+v, %v", deep, err)
	}
}

func TestSubsetSingleChild(t *testing.T) {
	sub, err := Default().Subset("Religion & Spirituality", DefaultDepth)
	if err != nil {
		t.Fatal(err)
	}
	if len(sub) != 1 || sub[0].Name != "Astrology" {
		t.Fatalf("Subset() = %+v", sub)
	}
}

func TestSubsetEmpty(t *testing.T) {
	s := Default()
	for _, domain := range []string{"Nonexistent", ""} {
		_, err := s.Subset(domain, DefaultDepth)
		if !errors.Is(err, model.ErrEmptyCategorySet) {
			t.Errorf("Subset(%q) error = %v, want ErrEmptyCategorySet", domain, err)
		}
	}
	if _, err := s.Subset("Automotive", 4); !errors.Is(err, model.ErrEmptyCategorySet) {
		t.Errorf("Subset(depth 4) error = %v", err)
	}
}

func TestSubsetDepthBounds(t *testing.T) {
	s := Default()
	for _, depth := range []int{1, -1, MaxDepth + 1} {
		_, err := s.Subset("Automotive", depth)
		if !errors.Is(err, model.ErrConfiguration) {
			t.Errorf("Subset(depth %d) error = %v, want ErrConfiguration", depth, err)
		}
	}
	zero, err := s.Subset("Automotive", 0)
	if err != nil {
		t.Fatal(err)
	}
	def, _ := s.Subset("Automotive", DefaultDepth)
	if len(zero) != len(def) {
		t.Errorf("depth 0 gave %d categories, default depth %d", len(zero), len(def))
	}
}

func TestCompact(t *testing.T) {
	got := Compact([]model.Category{
		{ID: "597", Name: "Artificial Intelligence"},
		{ID: "599", Name: "Computing"},
	})
	if got != "597:Artificial Intelligence\n599:Computing" {
		t.Errorf("Compact() = %q", got)
	}
	if Compact(nil) != "" {
		t.Error("Compact(nil) should be empty")
	}
}

func TestDefaultTaxonomy(t *testing.T) {
	s := Default()
	descs := DefaultDescriptions()
	if len(descs) != len(s.Domains()) {
		t.Fatalf("%d descriptions for %d domains", len(descs), len(s.Domains()))
	}
	for _, d := range s.Domains() {
		if _, err := s.Subset(d, DefaultDepth); err != nil {
			t.Errorf("domain %q has no tier-2 categories", d)
		}
	}
	tech, err := s.Subset("Technology & Computing", DefaultDepth)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range tech {
		if c.Domain != "Technology & Computing" || !strings.HasPrefix(c.Path(), "Technology & Computing > ") {
			t.Errorf("bad category %+v", c)
		}
	}
}

func TestDescribe(t *testing.T) {
	s, _ := Parse([]byte(sampleRows))
	descs := s.Describe()
	if len(descs) != 2 {
		t.Fatalf("Describe() = %+v", descs)
	}
	if descs[0].Description != "Automotive: Auto Body Styles, Motorcycles" {
		t.Errorf("Description = %q", descs[0].Description)
	}
}

func TestLoadDomainDescriptions(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "tier1.json")
	os.WriteFile(good, []byte(`[{"name":"Travel","description":"Trips and hotels"}]`), 0o644)
	descs, err := LoadDomainDescriptions(good)
	if err != nil || len(descs) != 1 || descs[0].Name != "Travel" {
		t.Fatalf("LoadDomainDescriptions() = %+v, %v", descs, err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`[{"name":"Travel"}]`), 0o644)
	if _, err := LoadDomainDescriptions(bad); err == nil {
		t.Error("expected error for missing description")
	}
	if _, err := LoadDomainDescriptions(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
