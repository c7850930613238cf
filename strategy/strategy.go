package strategy

import (
	"context"
	"fmt"
)

// Type identifies a reasoning strategy. Nodes created by a strategy carry its
// Type as their tree strategy tag.
type Type string

const (
	// TypeBeamSearch maintains the top-K highest-scoring frontier paths.
	TypeBeamSearch Type = "beam_search"
	// TypeMCTS runs a fixed simulation budget of selection, expansion,
	// rollout and backpropagation per step.
	TypeMCTS Type = "mcts"
	// TypeExternal delegates the step to an external model client. It
	// satisfies the same contract but performs no tree search.
	TypeExternal Type = "external"
)

// Valid reports whether t names a known strategy.
func (t Type) Valid() bool {
	switch t {
	case TypeBeamSearch, TypeMCTS, TypeExternal:
		return true
	}
	return false
}

// ParseType converts a wire-level strategy name into a Type. The empty string
// is not accepted here; defaulting is the caller's decision.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown strategy type %q", s)
	}
	return t, nil
}

// Parameter bounds for the search strategies. Out-of-range values are clamped
// at the boundary, not rejected.
const (
	MinBeamWidth     = 1
	MaxBeamWidth     = 10
	DefaultBeamWidth = 3

	MinSimulations     = 1
	MaxSimulations     = 150
	DefaultSimulations = 50
)

// ClampBeamWidth bounds w to [MinBeamWidth, MaxBeamWidth], substituting the
// default for the zero value.
func ClampBeamWidth(w int) int {
	if w == 0 {
		return DefaultBeamWidth
	}
	return clamp(w, MinBeamWidth, MaxBeamWidth)
}

// ClampSimulations bounds n to [MinSimulations, MaxSimulations], substituting
// the default for the zero value.
func ClampSimulations(n int) int {
	if n == 0 {
		return DefaultSimulations
	}
	return clamp(n, MinSimulations, MaxSimulations)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Request is one step of a chain of thought handed to a strategy. BeamWidth
// and NumSimulations may carry raw caller values; strategies clamp them with
// ClampBeamWidth and ClampSimulations before use.
type Request struct {
	Thought           string `json:"thought"`
	ThoughtNumber     int    `json:"thoughtNumber"`
	TotalThoughts     int    `json:"totalThoughts"`
	NextThoughtNeeded bool   `json:"nextThoughtNeeded"`
	BeamWidth         int    `json:"beamWidth,omitempty"`
	NumSimulations    int    `json:"numSimulations,omitempty"`
}

// Context is the continuation context assembled from the tree for the caller:
// the chosen path, alternative branches considered, low-scoring abandoned
// branches, heuristic improvement hints, and a confidence scalar in [0,1].
type Context struct {
	CurrentPath      []string   `json:"currentPath"`
	AlternativePaths [][]string `json:"alternativePaths"`
	Mistakes         []string   `json:"mistakes"`
	Improvements     []string   `json:"improvements"`
	Confidence       float64    `json:"confidence"`
}

// Decision is a strategy's answer for one step. Completion is only populated
// by the external model strategy; tree search strategies leave it empty.
type Decision struct {
	NodeID       string  `json:"nodeId"`
	Score        float64 `json:"score"`
	StrategyUsed Type    `json:"strategyUsed"`
	Context      Context `json:"reasoningContext"`
	Completion   string  `json:"completion,omitempty"`
}

// Strategy is the uniform interface all reasoning strategies implement.
//
// Implementations are bound to one reasoning tree for their lifetime and must
// be idempotent with respect to mutation order: the same sequence of calls
// reaches the same tree shape. Randomness, if any, must be explicitly seeded.
type Strategy interface {
	// Type returns the identifying tag of the strategy.
	Type() Type

	// Step processes one thought, mutating the bound tree, and returns the
	// resulting decision. Step honors ctx cancellation on any blocking work.
	Step(ctx context.Context, req Request) (Decision, error)
}
