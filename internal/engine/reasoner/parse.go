package reasoner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/crimson-sun/tiermap/internal/model"
)

type wireVerdict struct {
	Categories []wirePick   `json:"categories"`
	Tier2      []wirePick   `json:"tier2_categories"`
	Profile    *wireProfile `json:"profile"`
	UserProf   *wireProfile `json:"user_profile"`
	Rationale  string       `json:"rationale"`
}

type wirePick struct {
	ID         flexString `json:"id"`
	Name       string     `json:"name"`
	Confidence flexFloat  `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
}

type wireProfile struct {
	AgeRange  string    `json:"age_range"`
	Score     flexFloat `json:"sophistication_score"`
	GeekLevel flexFloat `json:"geek_level"`
	Tier      string    `json:"sophistication_tier"`
	Interests []string  `json:"interests"`
}

// ParseVerdict decodes a provider reply. Markdown code fences and prose
// around the first JSON object are ignored. A reply with no object, an
// undecodable object, or no category list wraps
// model.ErrReasoningInvalidResponse.
func ParseVerdict(raw string) (Verdict, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return Verdict{}, fmt.Errorf("reasoner: %w: %v", model.ErrReasoningInvalidResponse, err)
	}

	var w wireVerdict
	if err := json.Unmarshal(obj, &w); err != nil {
		return Verdict{}, fmt.Errorf("reasoner: %w: %v", model.ErrReasoningInvalidResponse, err)
	}
	picks := w.Categories
	if picks == nil {
		picks = w.Tier2
	}
	if picks == nil {
		return Verdict{}, fmt.Errorf("reasoner: %w: no categories field", model.ErrReasoningInvalidResponse)
	}

	v := Verdict{Rationale: strings.TrimSpace(w.Rationale)}
	for _, p := range picks {
		v.Picks = append(v.Picks, Pick{
			ID:         strings.TrimSpace(string(p.ID)),
			Name:       p.Name,
			Confidence: float64(p.Confidence),
			Rationale:  p.Reasoning,
		})
	}

	prof := w.Profile
	if prof == nil {
		prof = w.UserProf
	}
	if prof != nil {
		score := prof.Score
		if score == 0 {
			score = prof.GeekLevel
		}
		v.Profile = &ProfileHint{
			AgeRange:            strings.TrimSpace(prof.AgeRange),
			SophisticationScore: int(float64(score) + 0.5),
			Tier:                strings.ToLower(strings.TrimSpace(prof.Tier)),
			Interests:           prof.Interests,
		}
	}
	return v, nil
}

// extractObject strips code fences and returns the first balanced JSON
// object in s.
func extractObject(s string) ([]byte, error) {
	s = stripFences(strings.TrimSpace(s))
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return []byte(s[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated JSON object")
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
