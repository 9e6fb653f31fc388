package reasoner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/crimson-sun/tiermap/internal/model"
)

var techCandidates = []model.Category{
	{ID: "597", Name: "Artificial Intelligence", Domain: "Technology & Computing"},
	{ID: "599", Name: "Computing", Domain: "Technology & Computing"},
	{ID: "632", Name: "Consumer Electronics", Domain: "Technology & Computing"},
}

func TestBuildPromptListsOnlyCompactCandidates(t *testing.T) {
	sys, user := BuildPrompt(Request{
		Text:       "Transformer models changed NLP.",
		Domain:     "Technology & Computing",
		Candidates: techCandidates,
		MaxResults: 3,
	})
	for _, want := range []string{"597:Artificial Intelligence\n599:Computing\n632:Consumer Electronics", "Technology & Computing", "up to 3", "ONLY ids"} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if strings.Contains(sys, "previous reply") {
		t.Error("non-strict prompt should not carry the re-instruction")
	}
	if !strings.HasSuffix(user, "Transformer models changed NLP.") {
		t.Errorf("user message = %q", user)
	}

	strict, _ := BuildPrompt(Request{Domain: "X", Candidates: techCandidates, Strict: true})
	if !strings.Contains(strict, "previous reply could not be used") {
		t.Error("strict prompt missing re-instruction")
	}
}

func TestBuildPromptTruncatesText(t *testing.T) {
	_, user := BuildPrompt(Request{Text: strings.Repeat("語", 5000), Candidates: techCandidates})
	body := strings.TrimPrefix(user, "Classify this content:\n\n")
	if n := utf8.RuneCountInString(body); n != 2000 {
		t.Errorf("prompt text = %d runes, want 2000", n)
	}
}

func TestParseVerdict(t *testing.T) {
	raw := "```json\n" + `{
  "categories": [
    {"id": "597", "name": "Artificial Intelligence", "confidence": 0.92, "reasoning": "about neural nets"},
    {"id": 599, "name": "Computing", "confidence": "0.4"}
  ],
  "profile": {"age_range": "25-34", "sophistication_score": 8, "sophistication_tier": "Advanced", "interests": ["ml"]},
  "rationale": "Deep learning article."
}` + "\n```"

	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("ParseVerdict() error: %v", err)
	}
	if len(v.Picks) != 2 {
		t.Fatalf("picks = %+v", v.Picks)
	}
	if v.Picks[0].ID != "597" || v.Picks[0].Confidence != 0.92 || v.Picks[0].Rationale != "about neural nets" {
		t.Errorf("pick 0 = %+v", v.Picks[0])
	}
	if v.Picks[1].ID != "599" || v.Picks[1].Confidence != 0.4 {
		t.Errorf("numeric id / string confidence = %+v", v.Picks[1])
	}
	if v.Profile == nil || v.Profile.SophisticationScore != 8 || v.Profile.Tier != "advanced" || v.Profile.AgeRange != "25-34" {
		t.Errorf("profile = %+v", v.Profile)
	}
	if v.Rationale != "Deep learning article." {
		t.Errorf("rationale = %q", v.Rationale)
	}
}

func TestParseVerdictLegacyShape(t *testing.T) {
	raw := `Sure! Here you go: {"tier2_categories":[{"id":"38","name":"Motorcycles","confidence":0.7}],
"user_profile":{"age_range":"30-45","geek_level":6}} Hope that helps {not json}`
	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("ParseVerdict() error: %v", err)
	}
	if len(v.Picks) != 1 || v.Picks[0].ID != "38" {
		t.Errorf("picks = %+v", v.Picks)
	}
	if v.Profile == nil || v.Profile.SophisticationScore != 6 {
		t.Errorf("profile = %+v", v.Profile)
	}
}

func TestParseVerdictBracesInStrings(t *testing.T) {
	v, err := ParseVerdict(`{"categories":[{"id":"1","name":"a } b","confidence":1}],"rationale":"uses { and }"}`)
	if err != nil {
		t.Fatalf("ParseVerdict() error: %v", err)
	}
	if v.Picks[0].Name != "a } b" || v.Rationale != "uses { and }" {
		t.Errorf("verdict = %+v", v)
	}
}

func TestParseVerdictInvalid(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":          "",
		"prose":          "I think it is about cars.",
		"unterminated":   `{"categories": [`,
		"wrong type":     `{"categories": "597"}`,
		"no categories":  `{"profile": {"age_range": "18-24"}}`,
		"bad confidence": `{"categories":[{"id":"1","confidence":"high"}]}`,
	} {
		if _, err := ParseVerdict(raw); !errors.Is(err, model.ErrReasoningInvalidResponse) {
			t.Errorf("%s: error = %v, want ErrReasoningInvalidResponse", name, err)
		}
	}
}

func TestFuncAdapter(t *testing.T) {
	var r Reasoner = Func(func(ctx context.Context, req Request) (Verdict, error) {
		return Verdict{Picks: []Pick{{ID: req.Candidates[0].ID}}}, nil
	})
	v, err := r.Reason(context.Background(), Request{Candidates: techCandidates})
	if err != nil || v.Picks[0].ID != "597" {
		t.Errorf("Reason() = %+v, %v", v, err)
	}
}

func TestAnthropicMissingKey(t *testing.T) {
	a := NewAnthropic(AnthropicConfig{})
	_, err := a.Reason(context.Background(), Request{Candidates: techCandidates})
	if !errors.Is(err, model.ErrReasoningUnavailable) {
		t.Errorf("error = %v, want ErrReasoningUnavailable", err)
	}
}

func anthropicServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "claude-test" {
			t.Errorf("model = %v", body["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_01",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-test",
			"content":       []map[string]any{{"type": "text", "text": text}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
}

func TestAnthropicReason(t *testing.T) {
	srv := anthropicServer(t, http.StatusOK, `{"categories":[{"id":"597","name":"Artificial Intelligence","confidence":0.9}]}`)
	defer srv.Close()

	a := NewAnthropic(AnthropicConfig{APIKey: "k", Model: "claude-test", BaseURL: srv.URL})
	v, err := a.Reason(context.Background(), Request{Text: "LLMs", Domain: "Technology & Computing", Candidates: techCandidates})
	if err != nil {
		t.Fatalf("Reason() error: %v", err)
	}
	if len(v.Picks) != 1 || v.Picks[0].ID != "597" {
		t.Errorf("picks = %+v", v.Picks)
	}
}

func TestAnthropicErrors(t *testing.T) {
	srv := anthropicServer(t, http.StatusServiceUnavailable, "")
	defer srv.Close()
	a := NewAnthropic(AnthropicConfig{APIKey: "k", Model: "claude-test", BaseURL: srv.URL})
	if _, err := a.Reason(context.Background(), Request{Candidates: techCandidates}); !errors.Is(err, model.ErrReasoningUnavailable) {
		t.Errorf("5xx error = %v, want ErrReasoningUnavailable", err)
	}

	junk := anthropicServer(t, http.StatusOK, "no json here")
	defer junk.Close()
	a = NewAnthropic(AnthropicConfig{APIKey: "k", Model: "claude-test", BaseURL: junk.URL})
	if _, err := a.Reason(context.Background(), Request{Candidates: techCandidates}); !errors.Is(err, model.ErrReasoningInvalidResponse) {
		t.Errorf("junk reply error = %v, want ErrReasoningInvalidResponse", err)
	}
}
