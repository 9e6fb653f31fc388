// Package fine ranks the candidate categories of one domain. It asks the
// reasoning provider first and falls back to local heuristics when the
// provider is missing, down, slow or keeps answering with unusable replies.
package fine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/crimson-sun/tiermap/internal/engine/heuristic"
	"github.com/crimson-sun/tiermap/internal/engine/reasoner"
	"github.com/crimson-sun/tiermap/internal/metrics"
	"github.com/crimson-sun/tiermap/internal/model"
)

const (
	defaultMaxInFlight = 5
	defaultTimeout     = 30 * time.Second
)

// Outcome is the fine-stage result for one text.
type Outcome struct {
	Candidates []model.Candidate
	Profile    model.ReaderProfile
	Rationale  string
	Degraded   bool
	Reason     error // set when Degraded
}

// Classifier is safe for concurrent use.
type Classifier struct {
	reasoner reasoner.Reasoner
	analyzer *heuristic.Analyzer
	gate     *semaphore.Weighted
	limiter  *rate.Limiter
	timeout  time.Duration
	metrics  *metrics.Recorder
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMaxInFlight bounds concurrent reasoning calls. Default: 5.
func WithMaxInFlight(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.gate = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRateLimit caps reasoning calls per second. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Classifier) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-attempt reasoning deadline. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Classifier) { c.metrics = m }
}

// New creates a Classifier. r may be nil, in which case every result is
// produced by the heuristic fallback. analyzer nil means heuristic.New().
func New(r reasoner.Reasoner, analyzer *heuristic.Analyzer, opts ...Option) *Classifier {
	if analyzer == nil {
		analyzer = heuristic.New()
	}
	c := &Classifier{
		reasoner: r,
		analyzer: analyzer,
		gate:     semaphore.NewWeighted(defaultMaxInFlight),
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Profile is the heuristic reader estimate used when no fine stage runs.
func (c *Classifier) Profile(text, domain string) model.ReaderProfile {
	return c.analyzer.EstimateProfile(c.analyzer.AnalyzeStyle(text), domain)
}

// Classify ranks candidates for text and estimates its reader. It never
// returns an error: failures of the reasoning provider become a degraded
// Outcome whose Reason says why. A cancelled ctx yields Reason == ctx.Err().
func (c *Classifier) Classify(ctx context.Context, text, domain string, candidates []model.Category, limit int) Outcome {
	profile := c.Profile(text, domain)

	if len(candidates) == 0 {
		return c.degrade(text, domain, candidates, limit, profile,
			fmt.Errorf("fine: domain %q: %w", domain, model.ErrEmptyCategorySet))
	}
	if c.reasoner == nil {
		return c.degrade(text, domain, candidates, limit, profile,
			fmt.Errorf("fine: no reasoning provider configured: %w", model.ErrReasoningUnavailable))
	}

	req := reasoner.Request{Text: text, Domain: domain, Candidates: candidates, MaxResults: limit}
	picked, verdict, err := c.attempt(ctx, req)
	if errors.Is(err, model.ErrReasoningInvalidResponse) && ctx.Err() == nil {
		slog.Debug("reasoning reply unusable, retrying strictly", "domain", domain, "error", err)
		c.metrics.ReasoningRetried()
		req.Strict = true
		picked, verdict, err = c.attempt(ctx, req)
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return c.degrade(text, domain, candidates, limit, profile, err)
	}

	return Outcome{
		Candidates: picked,
		Profile:    mergeProfile(profile, verdict.Profile),
		Rationale:  rationale(verdict, picked),
	}
}

// attempt makes one gated reasoning call and validates the reply.
func (c *Classifier) attempt(ctx context.Context, req reasoner.Request) ([]model.Candidate, reasoner.Verdict, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, reasoner.Verdict{}, err
	}
	defer c.gate.Release(1)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, reasoner.Verdict{}, ctx.Err()
			}
			// Wait fails early when the deadline is shorter than the delay.
			return nil, reasoner.Verdict{}, fmt.Errorf("fine: rate limit: %v: %w", err, model.ErrReasoningUnavailable)
		}
	}

	c.metrics.ReasoningStarted()
	defer c.metrics.ReasoningDone()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	v, err := c.reasoner.Reason(callCtx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, v, fmt.Errorf("fine: reasoning timed out after %s: %w", c.timeout, model.ErrReasoningUnavailable)
		}
		return nil, v, err
	}

	picked, dropped := validate(v.Picks, req.Candidates)
	if len(dropped) > 0 {
		slog.Warn("discarding categories outside the candidate set",
			"domain", req.Domain, "ids", strings.Join(dropped, ","))
	}
	if len(picked) == 0 {
		return nil, v, fmt.Errorf("fine: reply named no candidate category: %w", model.ErrReasoningInvalidResponse)
	}
	return picked, v, nil
}

func (c *Classifier) degrade(text, domain string, candidates []model.Category, limit int, profile model.ReaderProfile, reason error) Outcome {
	slog.Info("fine classification degraded", "domain", domain, "reason", model.ReasonCode(reason), "error", reason)
	return Outcome{
		Candidates: c.analyzer.RankCandidates(text, candidates, limit),
		Profile:    profile,
		Rationale:  "heuristic fallback: " + model.ReasonCode(reason),
		Degraded:   true,
		Reason:     reason,
	}
}

// validate keeps picks whose id is in candidates, first occurrence wins, and
// returns the ids it discarded as unknown. Ordering and the result cap are
// left to the assembler.
func validate(picks []reasoner.Pick, candidates []model.Category) ([]model.Candidate, []string) {
	byID := make(map[string]model.Category, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	seen := make(map[string]bool, len(picks))
	var out []model.Candidate
	var dropped []string
	for _, p := range picks {
		id := strings.TrimSpace(p.ID)
		cat, ok := byID[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, model.Candidate{
			Category:   cat,
			Confidence: clamp01(p.Confidence),
			Rationale:  p.Rationale,
		})
	}
	return out, dropped
}

// mergeProfile overlays the provider's opinion on the heuristic estimate.
// The tier always follows the final score.
func mergeProfile(base model.ReaderProfile, hint *reasoner.ProfileHint) model.ReaderProfile {
	if hint == nil {
		return base
	}
	if s := strings.TrimSpace(hint.AgeRange); s != "" {
		base.AgeRange = s
	}
	if hint.SophisticationScore != 0 {
		base.SophisticationScore = hint.SophisticationScore
	}
	if len(hint.Interests) > 0 {
		base.Interests = hint.Interests
	}
	return base.ClampScore()
}

func rationale(v reasoner.Verdict, picked []model.Candidate) string {
	if s := strings.TrimSpace(v.Rationale); s != "" {
		return s
	}
	var parts []string
	for _, c := range picked {
		if c.Rationale != "" {
			parts = append(parts, c.Category.Name+": "+c.Rationale)
		}
	}
	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
