// Package testdata embeds a small labeled corpus for classification checks.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is one labeled text.
type CorpusEntry struct {
	Text             string `json:"text"`
	Language         string `json:"language"`
	ExpectedDomain   string `json:"expected_domain"`
	ExpectedCategory string `json:"expected_category"`
	Description      string `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
