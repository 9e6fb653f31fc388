package reasoner

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/tiermap/internal/engine/compactor"
	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
)

const replyShape = `{
  "categories": [
    {"id": "<id from the list>", "name": "<category name>", "confidence": 0.0, "reasoning": "<one sentence>"}
  ],
  "profile": {
    "age_range": "25-34",
    "sophistication_score": 5,
    "sophistication_tier": "basic|intermediate|advanced",
    "interests": ["<topic>"]
  },
  "rationale": "<one or two sentences>"
}`

// BuildPrompt returns the system and user messages for req. Only the compact
// id:name candidate list is sent, never descriptions.
func BuildPrompt(req Request) (system, user string) {
	n := req.MaxResults
	if n <= 0 {
		n = 2
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You classify content into IAB Content Taxonomy categories and estimate the likely reader.\n\n")
	fmt.Fprintf(&b, "Candidate categories in the %s domain (id:name):\n", req.Domain)
	b.WriteString(taxonomy.Compact(req.Candidates))
	b.WriteString("\n\nInstructions:\n")
	fmt.Fprintf(&b, "1. Choose up to %d categories that best fit the content. Use ONLY ids from the list above.\n", n)
	b.WriteString("2. Give each a confidence between 0.0 and 1.0.\n")
	b.WriteString("3. Estimate the reader: age range, sophistication score from 1 (general audience) to 10 (expert), and interests.\n")
	b.WriteString("4. Reply with JSON in exactly this shape:\n")
	b.WriteString(replyShape)
	if req.Strict {
		b.WriteString("\n\nYour previous reply could not be used. Reply with the JSON object only: no prose, no code fences. ")
		b.WriteString("Every \"id\" must be copied exactly from the candidate list; do not invent categories.")
	}

	user = "Classify this content:\n\n" + compactor.Prepare(req.Text, compactor.PromptLimit)
	return b.String(), user
}
