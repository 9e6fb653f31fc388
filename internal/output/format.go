package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crimson-sun/tiermap/internal/model"
)

// Detail controls how much of a result a sink emits.
type Detail int

const (
	// Minimal keeps the fixed result shape only.
	Minimal Detail = iota
	// Full adds rationale, domain ranking and notes.
	Full
)

// ParseDetail maps "minimal" and "full"; anything else is Full.
func ParseDetail(s string) Detail {
	if strings.EqualFold(s, "minimal") {
		return Minimal
	}
	return Full
}

// Entry is the plain-mapping form of an Envelope.
type Entry struct {
	Index   int    `json:"index"`
	Ref     string `json:"ref,omitempty"`
	Preview string `json:"preview,omitempty"`
	*model.Record
	Error string `json:"error,omitempty"`
}

// FormatEnvelope flattens env, stripping fields according to detail.
func FormatEnvelope(env Envelope, detail Detail) Entry {
	e := Entry{Index: env.Index, Ref: env.Ref, Preview: env.Preview}
	if env.Err != nil {
		e.Error = env.Err.Error()
		return e
	}
	if env.Record != nil {
		rec := *env.Record
		if detail == Minimal {
			rec.Rationale = ""
			rec.DomainRanking = nil
			rec.Notes = nil
			cats := make([]model.CategoryRecord, len(rec.Categories))
			for i, c := range rec.Categories {
				c.Rationale = ""
				cats[i] = c
			}
			rec.Categories = cats
		}
		e.Record = &rec
	}
	return e
}

// CSVHeader is the column set written by CSV sinks.
var CSVHeader = []string{
	"index", "ref", "domain", "domain_confidence", "categories", "category_ids",
	"age_range", "sophistication_score", "sophistication_tier", "method",
	"processing_time_seconds", "degraded_reason", "error",
}

// CSVRow renders env as one row matching CSVHeader. Categories are joined
// with "; " as "name (confidence)".
func CSVRow(env Envelope) []string {
	row := make([]string, len(CSVHeader))
	row[0] = strconv.Itoa(env.Index)
	row[1] = env.Ref
	if env.Err != nil {
		row[12] = env.Err.Error()
		return row
	}
	rec := env.Record
	if rec == nil {
		return row
	}
	names := make([]string, len(rec.Categories))
	ids := make([]string, len(rec.Categories))
	for i, c := range rec.Categories {
		names[i] = fmt.Sprintf("%s (%.3f)", c.Name, c.Confidence)
		ids[i] = c.ID
	}
	row[2] = rec.Domain
	row[3] = strconv.FormatFloat(rec.DomainConfidence, 'f', 4, 64)
	row[4] = strings.Join(names, "; ")
	row[5] = strings.Join(ids, ";")
	row[6] = rec.Profile.AgeRange
	row[7] = strconv.Itoa(rec.Profile.SophisticationScore)
	row[8] = rec.Profile.SophisticationTier
	row[9] = string(rec.Method)
	row[10] = strconv.FormatFloat(rec.ProcessingTimeSeconds, 'f', 3, 64)
	row[11] = rec.DegradedReason
	return row
}

// TextReport renders env for people reading a terminal.
func TextReport(env Envelope) string {
	var b strings.Builder
	if env.Ref != "" {
		fmt.Fprintf(&b, "== %s\n", env.Ref)
	}
	if env.Err != nil {
		fmt.Fprintf(&b, "error: %v\n", env.Err)
		return b.String()
	}
	rec := env.Record
	if rec == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "domain:     %s (%.3f)\n", rec.Domain, rec.DomainConfidence)
	if len(rec.Categories) == 0 {
		b.WriteString("categories: none\n")
	}
	for i, c := range rec.Categories {
		label := "categories:"
		if i > 0 {
			label = "           "
		}
		fmt.Fprintf(&b, "%s %s [%s] %.3f\n", label, strings.Join(c.TierPath, " > "), c.ID, c.Confidence)
	}
	fmt.Fprintf(&b, "reader:     age %s, sophistication %d/10 (%s)\n",
		rec.Profile.AgeRange, rec.Profile.SophisticationScore, rec.Profile.SophisticationTier)
	if len(rec.Profile.Interests) > 0 {
		fmt.Fprintf(&b, "interests:  %s\n", strings.Join(rec.Profile.Interests, ", "))
	}
	method := string(rec.Method)
	if rec.DegradedReason != "" {
		method += " (" + rec.DegradedReason + ")"
	}
	fmt.Fprintf(&b, "method:     %s in %.2fs\n", method, rec.ProcessingTimeSeconds)
	if rec.Rationale != "" {
		fmt.Fprintf(&b, "rationale:  %s\n", rec.Rationale)
	}
	for _, n := range rec.Notes {
		fmt.Fprintf(&b, "note:       %s\n", n)
	}
	return b.String()
}
