// Package scoring provides the pluggable numeric evaluation used by the
// search strategies. Evaluators estimate the quality of a single thought as a
// bounded value in [0,1]; they perform no natural-language understanding, so
// anything smarter (a learned scorer, an LLM judge) is injected by the caller
// through the same interface.
package scoring

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Evaluator scores one thought at a given depth in the reasoning chain.
// Implementations must be deterministic for the same (thought, depth) pair
// unless they are explicitly seeded, and must return values in [0,1].
type Evaluator interface {
	Evaluate(thought string, depth int) float64
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(thought string, depth int) float64

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(thought string, depth int) float64 {
	return f(thought, depth)
}

// connectives that indicate an explicit reasoning step rather than a bare
// assertion. Checked case-insensitively against the whole thought.
var connectives = []string{
	"because", "therefore", "thus", "hence", "so that", "which means",
	"implies", "follows", "given that", "assuming", "if ", "then ",
}

// Heuristic is the default Evaluator: a deterministic, content-and-position
// based pseudo-evaluation. It rewards thoughts of a useful length, explicit
// logical connectives, concrete detail (digits, math symbols) and structure
// (enumerations), with a small depth bonus for sustained chains and a tiny
// content-hash jitter to break ties between otherwise equivalent thoughts.
//
// The exact weights are a documented implementation choice; callers needing
// different semantics supply their own Evaluator.
type Heuristic struct{}

// NewHeuristic returns the default heuristic evaluator.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Evaluate implements Evaluator. The result is clamped to [0,1].
func (h *Heuristic) Evaluate(thought string, depth int) float64 {
	trimmed := strings.TrimSpace(thought)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)

	// Length component: logistic curve centered on ~80 characters, so very
	// short fragments and unbounded rambling both score below focused steps.
	length := float64(len(trimmed))
	score := 0.35 / (1 + math.Exp((80-length)/40))
	score += 0.15 // base credit for a non-empty step

	for _, marker := range connectives {
		if strings.Contains(lower, marker) {
			score += 0.20
			break
		}
	}

	if strings.ContainsAny(trimmed, "0123456789") {
		score += 0.10
	}
	if strings.ContainsAny(trimmed, "=+-*/<>%") {
		score += 0.05
	}
	if hasEnumeration(trimmed) {
		score += 0.05
	}

	// Deeper chains that are still producing content get a mild bonus,
	// capped so depth alone can never dominate content.
	score += math.Min(float64(depth)*0.01, 0.05)

	// Stable jitter from the thought text keeps equal-weight candidates
	// distinguishable without introducing hidden randomness.
	score += jitter(trimmed) * 0.02

	return clamp01(score)
}

// hasEnumeration reports whether the thought starts a numbered or bulleted
// item, or contains an inline "1." style enumeration.
func hasEnumeration(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 {
			continue
		}
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			return true
		}
		if unicode.IsDigit(rune(line[0])) && (line[1] == '.' || line[1] == ')') {
			return true
		}
	}
	return false
}

// jitter maps the thought content to a stable value in [0,1).
func jitter(s string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum32()%1000) / 1000
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
