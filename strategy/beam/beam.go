// Package beam implements the Beam Search reasoning strategy: a bounded
// frontier of the highest-scoring chains is kept active, every step extends
// each frontier entry with the submitted thought, and frontier entries
// compete with their own extensions before the frontier is pruned back to
// the beam width. Pruned branches stay in the tree for auditing and for the
// alternative-path context handed back to the caller; they are only excluded
// from future expansion.
package beam

import (
	"context"
	"sort"

	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/scoring"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/tree"
)

// Options configure a beam search strategy instance.
type Options struct {
	// Evaluator scores individual thoughts. Defaults to scoring.NewHeuristic().
	Evaluator scoring.Evaluator
	// Logger receives structured step diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Strategy is the Beam Search implementation of strategy.Strategy. It is
// bound to one tree for its lifetime and keeps the active frontier (node ids
// of the current beam, best first) as its only private state.
//
// Steps within a session are serialized by the reasoner, so the strategy
// needs no locking beyond the tree store's.
type Strategy struct {
	store  *tree.Store
	eval   scoring.Evaluator
	logger logging.Logger

	beam []string
}

// New creates a Beam Search strategy bound to the given tree.
func New(store *tree.Store, optFns ...func(o *Options)) *Strategy {
	opts := Options{
		Evaluator: scoring.NewHeuristic(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Strategy{store: store, eval: opts.Evaluator, logger: opts.Logger}
}

// Type implements strategy.Strategy.
func (s *Strategy) Type() strategy.Type { return strategy.TypeBeamSearch }

// candidate pairs a node id with its cumulative path score during re-ranking.
type candidate struct {
	id    string
	score float64
}

// Step implements strategy.Strategy.
//
// The first call for a chain creates the root and seeds the beam with it.
// Every later call creates one child with the submitted thought under each
// beam entry and scores it with the cumulative path score (running average
// of the heuristic scores from the root down). The previous beam entries
// stay in the candidate set, so a strong path the new thought failed to
// improve can survive and branch again on a later step. Candidates are
// re-ranked stably (score descending; on ties the earlier-created candidate,
// i.e. the one listed first, wins) and the top beamWidth become the new
// beam. The top-ranked candidate is this step's result.
func (s *Strategy) Step(_ context.Context, req strategy.Request) (strategy.Decision, error) {
	width := strategy.ClampBeamWidth(req.BeamWidth)

	candidates, err := s.expand(req)
	if err != nil {
		return strategy.Decision{}, err
	}

	// Survivors precede this step's children in the slice, so the stable
	// sort implements the earlier-creation tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > width {
		candidates = candidates[:width]
	}
	s.beam = s.beam[:0]
	for _, c := range candidates {
		s.beam = append(s.beam, c.id)
	}

	best := candidates[0]
	if !req.NextThoughtNeeded {
		if err := s.store.MarkTerminal(best.id); err != nil {
			return strategy.Decision{}, err
		}
		s.retire(best.id)
	}

	rc, err := strategy.BuildContext(s.store, best.id, best.score)
	if err != nil {
		return strategy.Decision{}, err
	}

	s.logger.Debug("beam.step",
		"thought_number", req.ThoughtNumber,
		"beam_width", width,
		"beam_size", len(s.beam),
		"best_score", best.score,
	)

	return strategy.Decision{
		NodeID:       best.id,
		Score:        best.score,
		StrategyUsed: s.Type(),
		Context:      rc,
	}, nil
}

// expand produces this step's candidate set. On the first call that is the
// freshly created root; afterwards the surviving beam entries followed by
// one new child per entry.
func (s *Strategy) expand(req strategy.Request) ([]candidate, error) {
	if len(s.beam) == 0 {
		if _, ok := s.store.Root(); !ok {
			id, err := s.store.CreateNode("", req.Thought, string(s.Type()))
			if err != nil {
				return nil, err
			}
			score := s.eval.Evaluate(req.Thought, 0)
			if err := s.store.UpdateScore(id, score); err != nil {
				return nil, err
			}
			return []candidate{{id: id, score: score}}, nil
		}
		// The chain was completed and retired; restart the frontier at the
		// root so the next thought branches fresh instead of growing the
		// finished chain.
		root, _ := s.store.Root()
		s.beam = append(s.beam, root.ID)
	}

	candidates := make([]candidate, 0, 2*len(s.beam))
	for _, id := range s.beam {
		node, err := s.store.GetNode(id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{id: node.ID, score: node.Score})
	}
	for _, parentID := range s.beam {
		parent, err := s.store.GetNode(parentID)
		if err != nil {
			return nil, err
		}
		id, err := s.store.CreateNode(parentID, req.Thought, string(s.Type()))
		if err != nil {
			return nil, err
		}
		own := s.eval.Evaluate(req.Thought, parent.Depth+1)
		// Cumulative path score: running average over the parent's path
		// score and the child's own heuristic score.
		score := (parent.Score*float64(parent.Depth+1) + own) / float64(parent.Depth+2)
		if err := s.store.UpdateScore(id, score); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{id: id, score: score})
	}
	return candidates, nil
}

// retire removes a completed chain's leaf from the frontier so it is never
// expanded again.
func (s *Strategy) retire(id string) {
	kept := s.beam[:0]
	for _, b := range s.beam {
		if b != id {
			kept = append(kept, b)
		}
	}
	s.beam = kept
}

// Beam returns a copy of the active frontier, best first. Exposed for
// statistics and tests.
func (s *Strategy) Beam() []string {
	return append([]string(nil), s.beam...)
}
