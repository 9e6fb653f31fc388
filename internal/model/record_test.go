package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func sampleOutcome() Outcome {
	return Outcome{
		Domain:           "Automotive",
		DomainConfidence: 0.82,
		DomainRanking: []DomainScore{
			{Domain: "Automotive", Score: 0.82},
			{Domain: "Travel", Score: 0.41},
		},
		Categories: []Candidate{
			{
				Category:   Category{ID: "4", Name: "Auto Body Styles", Domain: "Automotive", TierPath: []string{"Automotive", "Auto Body Styles"}},
				Confidence: 0.91,
				Rationale:  "SUV review",
			},
			{
				Category:   Category{ID: "30", Name: "Auto Type", Domain: "Automotive", TierPath: []string{"Automotive", "Auto Type"}},
				Confidence: 0.64,
			},
		},
		Profile: ReaderProfile{AgeRange: "30-45", SophisticationScore: 6, Tier: TierIntermediate},
		Rationale: "hybrid suv content",
		Elapsed:   1234567 * time.Microsecond,
	}
}

func TestRecordRoundTripThroughJSON(t *testing.T) {
	results := []Result{
		HybridResult{sampleOutcome()},
		VectorOnlyResult{Outcome{Domain: "Travel", DomainConfidence: 0.5, Elapsed: time.Second}},
		DegradedResult{Outcome: sampleOutcome(), Reason: ErrReasoningUnavailable},
	}

	for _, r := range results {
		t.Run(string(r.Method()), func(t *testing.T) {
			rec := ToRecord(r)
			data, err := json.Marshal(rec)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var decoded Record
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			back, err := FromRecord(decoded)
			if err != nil {
				t.Fatalf("FromRecord: %v", err)
			}
			if back.Method() != r.Method() {
				t.Fatalf("method = %s, want %s", back.Method(), r.Method())
			}
			if !reflect.DeepEqual(ToRecord(back), rec) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", ToRecord(back), rec)
			}
			if back.Common().Elapsed != r.Common().Elapsed {
				t.Errorf("elapsed = %v, want %v", back.Common().Elapsed, r.Common().Elapsed)
			}
		})
	}
}

func TestRecordShape(t *testing.T) {
	data, err := json.Marshal(ToRecord(HybridResult{sampleOutcome()}))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"domain", "domain_confidence", "categories", "profile", "processing_time_seconds", "method"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	profile := m["profile"].(map[string]any)
	for _, key := range []string{"age_range", "sophistication_score", "sophistication_tier"} {
		if _, ok := profile[key]; !ok {
			t.Errorf("missing profile key %q", key)
		}
	}
	cat := m["categories"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "name", "confidence", "tier_path"} {
		if _, ok := cat[key]; !ok {
			t.Errorf("missing category key %q", key)
		}
	}
}

func TestEmptyCategoriesEncodeAsList(t *testing.T) {
	data, _ := json.Marshal(ToRecord(VectorOnlyResult{Outcome{Domain: "Travel"}}))
	var m map[string]any
	json.Unmarshal(data, &m)
	if _, ok := m["categories"].([]any); !ok {
		t.Fatalf("categories = %v, want empty list", m["categories"])
	}
}

func TestDegradedReasonSurvives(t *testing.T) {
	rec := ToRecord(DegradedResult{Outcome: sampleOutcome(), Reason: Fail(StageSubset, ErrEmptyCategorySet, nil)})
	if rec.DegradedReason != "empty_category_set" {
		t.Fatalf("DegradedReason = %q", rec.DegradedReason)
	}
	back, err := FromRecord(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(back.(DegradedResult).Reason, ErrEmptyCategorySet) {
		t.Errorf("reason = %v, want ErrEmptyCategorySet", back.(DegradedResult).Reason)
	}
}

func TestFromRecordRejectsUnknownMethod(t *testing.T) {
	if _, err := FromRecord(Record{Method: "magic"}); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestTierForScore(t *testing.T) {
	cases := map[int]SophisticationTier{
		1: TierBasic, 3: TierBasic, 4: TierIntermediate, 7: TierIntermediate, 8: TierAdvanced, 10: TierAdvanced,
	}
	for score, want := range cases {
		if got := TierForScore(score); got != want {
			t.Errorf("TierForScore(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestClampScore(t *testing.T) {
	p := ReaderProfile{SophisticationScore: 14, Tier: TierBasic}.ClampScore()
	if p.SophisticationScore != 10 || p.Tier != TierAdvanced {
		t.Errorf("got %d/%s, want 10/advanced", p.SophisticationScore, p.Tier)
	}
	p = ReaderProfile{SophisticationScore: -2}.ClampScore()
	if p.SophisticationScore != 1 || p.Tier != TierBasic {
		t.Errorf("got %d/%s, want 1/basic", p.SophisticationScore, p.Tier)
	}
}

func TestStageErrorUnwrap(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := Fail(StageEmbedding, ErrEmbeddingUnavailable, cause)
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Error("expected errors.Is ErrEmbeddingUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is cause")
	}
	if FailedStage(err) != StageEmbedding {
		t.Errorf("FailedStage = %q", FailedStage(err))
	}
	if !errors.Is(Configf("max results %d", 0), ErrConfiguration) {
		t.Error("Configf should wrap ErrConfiguration")
	}
}
