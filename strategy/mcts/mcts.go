// Package mcts implements the Monte Carlo Tree Search reasoning strategy.
// Each step spends a fixed simulation budget: selection descends from the
// current frontier node along the upper-confidence bound, expansion
// materializes one child for the submitted thought at a selected leaf,
// rollout assigns the child a bounded simulated reward, and backpropagation
// folds the reward into every node between the expanded node and the root.
// The step's result is the robust child of the frontier node: the child with
// the most visits, ties broken by higher mean score.
package mcts

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/scoring"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/tree"
)

// DefaultExplorationConstant is the UCB exploration weight C. sqrt(2) is the
// standard UCT value.
var DefaultExplorationConstant = math.Sqrt2

// Options configure an MCTS strategy instance.
type Options struct {
	// Evaluator provides the rollout reward. Defaults to scoring.NewHeuristic().
	Evaluator scoring.Evaluator
	// Logger receives structured step diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// ExplorationConstant is C in the UCB formula.
	ExplorationConstant float64
	// MaxParallel bounds concurrent simulations within one macro-step.
	// 1 (the default) runs simulations sequentially and fully deterministic.
	MaxParallel int
	// Seed enables rollout reward noise from an explicitly seeded source.
	// 0 keeps rollouts purely deterministic.
	Seed int64
}

// Strategy is the MCTS implementation of strategy.Strategy. Its private state
// is the current frontier node id; everything else lives in the shared tree.
type Strategy struct {
	store  *tree.Store
	eval   scoring.Evaluator
	logger logging.Logger
	c      float64
	limit  int

	rngMu sync.Mutex
	rng   *rand.Rand

	expandMu  sync.Mutex
	currentID string
}

// New creates an MCTS strategy bound to the given tree.
func New(store *tree.Store, optFns ...func(o *Options)) *Strategy {
	opts := Options{
		Evaluator:           scoring.NewHeuristic(),
		Logger:              logging.NoOpLogger{},
		ExplorationConstant: DefaultExplorationConstant,
		MaxParallel:         1,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Strategy{
		store:  store,
		eval:   opts.Evaluator,
		logger: opts.Logger,
		c:      opts.ExplorationConstant,
		limit:  opts.MaxParallel,
	}
	if s.limit < 1 {
		s.limit = 1
	}
	if opts.Seed != 0 {
		s.rng = rand.New(rand.NewSource(opts.Seed))
	}
	return s
}

// Type implements strategy.Strategy.
func (s *Strategy) Type() strategy.Type { return strategy.TypeMCTS }

// Step implements strategy.Strategy.
//
// The first call creates the root, rolls it out once and makes it the
// frontier. Every later call runs the clamped simulation budget from the
// frontier node and advances the frontier to the robust child.
func (s *Strategy) Step(ctx context.Context, req strategy.Request) (strategy.Decision, error) {
	if s.currentID == "" {
		return s.seed(req)
	}

	budget := strategy.ClampSimulations(req.NumSimulations)
	if err := s.simulate(ctx, req, budget); err != nil {
		return strategy.Decision{}, err
	}

	chosen, err := s.robustChild(s.currentID)
	if err != nil {
		return strategy.Decision{}, err
	}
	s.currentID = chosen.ID

	if !req.NextThoughtNeeded {
		if err := s.store.MarkTerminal(chosen.ID); err != nil {
			return strategy.Decision{}, err
		}
	}

	confidence, err := s.visitShare(chosen)
	if err != nil {
		return strategy.Decision{}, err
	}
	rc, err := strategy.BuildContext(s.store, chosen.ID, confidence)
	if err != nil {
		return strategy.Decision{}, err
	}

	s.logger.Debug("mcts.step",
		"thought_number", req.ThoughtNumber,
		"budget", budget,
		"chosen_visits", chosen.Visits,
		"chosen_score", chosen.Score,
	)

	return strategy.Decision{
		NodeID:       chosen.ID,
		Score:        chosen.Score,
		StrategyUsed: s.Type(),
		Context:      rc,
	}, nil
}

// seed creates the root for the first thought of a chain.
func (s *Strategy) seed(req strategy.Request) (strategy.Decision, error) {
	id, err := s.store.CreateNode("", req.Thought, string(s.Type()))
	if err != nil {
		return strategy.Decision{}, err
	}
	if err := s.store.RecordReward(id, s.rollout(req.Thought, 0)); err != nil {
		return strategy.Decision{}, err
	}
	s.currentID = id

	if !req.NextThoughtNeeded {
		if err := s.store.MarkTerminal(id); err != nil {
			return strategy.Decision{}, err
		}
	}

	node, err := s.store.GetNode(id)
	if err != nil {
		return strategy.Decision{}, err
	}
	rc, err := strategy.BuildContext(s.store, id, node.Score)
	if err != nil {
		return strategy.Decision{}, err
	}
	return strategy.Decision{
		NodeID:       id,
		Score:        node.Score,
		StrategyUsed: s.Type(),
		Context:      rc,
	}, nil
}

// simulate runs the macro-step budget. Simulations are independent up to the
// store-serialized backpropagation writes; MaxParallel > 1 runs them on an
// errgroup with that limit.
func (s *Strategy) simulate(ctx context.Context, req strategy.Request, budget int) error {
	if s.limit == 1 {
		for i := 0; i < budget; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.runSimulation(req); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i := 0; i < budget; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.runSimulation(req)
		})
	}
	return g.Wait()
}

// runSimulation performs one selection, expansion, rollout and
// backpropagation pass from the frontier node.
func (s *Strategy) runSimulation(req strategy.Request) error {
	path := []string{s.currentID}
	node, err := s.store.GetNode(s.currentID)
	if err != nil {
		return err
	}

	// Selection: descend along the maximum upper-confidence bound;
	// unvisited children have infinite priority and are taken first.
	for {
		if node.Thought == req.Thought && node.ID != s.currentID {
			// Landed on a node this step already expanded: the subtree is
			// exhausted for this thought, re-roll its reward instead of
			// growing an identical chain.
			return s.backpropagate(path, s.rollout(node.Thought, node.Depth))
		}
		children, err := s.store.Children(node.ID)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			break
		}
		next := s.selectChild(node, children)
		path = append(path, next.ID)
		node = next
	}

	// Expansion: materialize one child for the submitted thought at this
	// leaf, guarding against a concurrent simulation doing the same.
	child, created, err := s.expandOnce(node, req.Thought)
	if err != nil {
		return err
	}
	if !created && child.ID == "" {
		// Terminal leaf and nothing to expand: the simulation is a no-op.
		return nil
	}
	path = append(path, child.ID)
	return s.backpropagate(path, s.rollout(req.Thought, child.Depth))
}

// expandOnce creates the thought child under the leaf, or returns the
// existing one when another simulation raced this one to it.
func (s *Strategy) expandOnce(leaf tree.Node, thought string) (tree.Node, bool, error) {
	s.expandMu.Lock()
	defer s.expandMu.Unlock()

	if leaf.Terminal {
		return tree.Node{}, false, nil
	}
	children, err := s.store.Children(leaf.ID)
	if err != nil {
		return tree.Node{}, false, err
	}
	for _, child := range children {
		if child.Thought == thought {
			return child, false, nil
		}
	}
	id, err := s.store.CreateNode(leaf.ID, thought, string(s.Type()))
	if err != nil {
		return tree.Node{}, false, err
	}
	child, err := s.store.GetNode(id)
	if err != nil {
		return tree.Node{}, false, err
	}
	return child, true, nil
}

// selectChild applies the UCB rule among the children of parent.
func (s *Strategy) selectChild(parent tree.Node, children []tree.Node) tree.Node {
	parentVisits := parent.Visits
	if parentVisits < 1 {
		parentVisits = 1
	}
	best := children[0]
	bestBound := math.Inf(-1)
	for _, child := range children {
		if child.Visits == 0 {
			return child
		}
		bound := child.Score + s.c*math.Sqrt(math.Log(float64(parentVisits))/float64(child.Visits))
		if bound > bestBound {
			best = child
			bestBound = bound
		}
	}
	return best
}

// backpropagate records the reward on every node from the expanded node back
// to the root. Each update is one atomic store operation, so concurrent
// simulations never observe a partially-updated node.
func (s *Strategy) backpropagate(path []string, reward float64) error {
	full, err := s.store.PathToRoot(path[0])
	if err != nil {
		return err
	}
	// path holds frontier..expanded; prepend root..frontier ancestors.
	ids := make([]string, 0, len(full)+len(path)-1)
	for _, n := range full[:len(full)-1] {
		ids = append(ids, n.ID)
	}
	ids = append(ids, path...)

	for i := len(ids) - 1; i >= 0; i-- {
		if err := s.store.RecordReward(ids[i], reward); err != nil {
			return err
		}
	}
	return nil
}

// rollout produces the bounded simulated reward for a thought.
func (s *Strategy) rollout(thought string, depth int) float64 {
	reward := s.eval.Evaluate(thought, depth)
	if s.rng != nil {
		s.rngMu.Lock()
		noise := (s.rng.Float64() - 0.5) * 0.1
		s.rngMu.Unlock()
		reward += noise
	}
	return math.Max(0, math.Min(1, reward))
}

// robustChild returns the child of the given node with the highest visit
// count; ties break on higher mean score, then on earlier creation order.
func (s *Strategy) robustChild(id string) (tree.Node, error) {
	children, err := s.store.Children(id)
	if err != nil {
		return tree.Node{}, err
	}
	if len(children) == 0 {
		// Nothing was expandable under the frontier (terminal chain); the
		// frontier node itself remains the result.
		return s.store.GetNode(id)
	}
	best := children[0]
	for _, child := range children[1:] {
		if child.Visits > best.Visits ||
			(child.Visits == best.Visits && child.Score > best.Score) {
			best = child
		}
	}
	return best, nil
}

// visitShare is the fraction of sibling visits owned by the chosen child,
// used as the decision confidence.
func (s *Strategy) visitShare(chosen tree.Node) (float64, error) {
	if chosen.ParentID == "" {
		return chosen.Score, nil
	}
	siblings, err := s.store.Children(chosen.ParentID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, sib := range siblings {
		total += sib.Visits
	}
	if total == 0 {
		return 0, nil
	}
	return float64(chosen.Visits) / float64(total), nil
}

// Current returns the frontier node id. Exposed for tests.
func (s *Strategy) Current() string { return s.currentID }
