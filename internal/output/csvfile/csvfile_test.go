package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/tiermap/internal/model"
	"github.com/crimson-sun/tiermap/internal/output"
)

func TestWriteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	out, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	out.Write(context.Background(), output.Envelope{
		Index: 0,
		Ref:   "https://example.com/suv, review",
		Record: &model.Record{
			Domain:     "Automotive",
			Categories: []model.CategoryRecord{{ID: "2", Name: "Auto Body Styles", Confidence: 0.5}},
			Profile:    model.ProfileRecord{AgeRange: "25-44", SophisticationScore: 4, SophisticationTier: "intermediate"},
			Method:     model.MethodHybrid,
		},
	})
	out.Write(context.Background(), output.Envelope{Index: 1, Ref: "missing.txt", Err: errors.New("not found")})
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "index" || rows[0][2] != "domain" {
		t.Errorf("header = %q", rows[0])
	}
	if rows[1][1] != "https://example.com/suv, review" || rows[1][4] != "Auto Body Styles (0.500)" {
		t.Errorf("row 1 = %q", rows[1])
	}
	if rows[2][12] != "not found" {
		t.Errorf("row 2 = %q", rows[2])
	}
}
