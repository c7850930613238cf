package strategy

import (
	"fmt"
	"unicode/utf8"

	"github.com/hupe1980/reasonmesh/tree"
)

// mistakeThreshold marks an abandoned branch as a mistake when the branch's
// terminal score falls below it.
const mistakeThreshold = 0.30

// scoreDropHint is the per-step score drop along the current path that
// triggers an improvement suggestion.
const scoreDropHint = 0.10

// BuildContext assembles the continuation context for the node at nodeID from
// the tree: the current path, sibling branches not taken, low-scoring
// abandoned branches as mistakes, and improvement hints derived from score
// deltas along the current path. confidence is passed through clamped to [0,1].
func BuildContext(store *tree.Store, nodeID string, confidence float64) (Context, error) {
	path, err := store.PathToRoot(nodeID)
	if err != nil {
		return Context{}, fmt.Errorf("build context: %w", err)
	}

	rc := Context{
		CurrentPath: make([]string, 0, len(path)),
		Confidence:  clamp01(confidence),
	}
	for _, node := range path {
		rc.CurrentPath = append(rc.CurrentPath, node.Thought)
	}

	branches, err := store.SiblingPaths(nodeID)
	if err != nil {
		return Context{}, fmt.Errorf("build context: %w", err)
	}
	for _, branch := range branches {
		thoughts := make([]string, 0, len(branch))
		for _, node := range branch {
			thoughts = append(thoughts, node.Thought)
		}
		rc.AlternativePaths = append(rc.AlternativePaths, thoughts)

		tail := branch[len(branch)-1]
		if tail.Score < mistakeThreshold {
			rc.Mistakes = append(rc.Mistakes, tail.Thought)
		}
	}

	rc.Improvements = improvementHints(path)
	return rc, nil
}

// improvementHints inspects score deltas along the current path and suggests
// revisiting steps that lowered the path quality.
func improvementHints(path []tree.Node) []string {
	var hints []string
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		if prev.Score-cur.Score > scoreDropHint {
			hints = append(hints, fmt.Sprintf(
				"step %d dropped the score from %.2f to %.2f; consider rephrasing %q with an explicit justification",
				i+1, prev.Score, cur.Score, truncate(cur.Thought, 60)))
		}
	}
	if len(path) > 0 && path[len(path)-1].Score < mistakeThreshold {
		hints = append(hints, "current branch scores low; branching from an earlier step may work better")
	}
	return hints
}

// truncate shortens s to at most n bytes, cutting on a rune boundary so
// multi-byte thoughts never yield invalid UTF-8 hints.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
