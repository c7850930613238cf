package beam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reasonmesh/scoring"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/tree"
)

func step(thought string, number int, more bool, width int) strategy.Request {
	return strategy.Request{
		Thought:           thought,
		ThoughtNumber:     number,
		TotalThoughts:     3,
		NextThoughtNeeded: more,
		BeamWidth:         width,
	}
}

// deepening scores later depths higher, so fresh children always outrank
// their surviving parents.
var deepening = scoring.EvaluatorFunc(func(_ string, depth int) float64 {
	return 0.4 + 0.05*float64(depth%12)
})

func TestStep_FirstCallCreatesRoot(t *testing.T) {
	store := tree.NewStore()
	s := New(store)

	dec, err := s.Step(context.Background(), step("step1", 1, true, 2))
	require.NoError(t, err)

	root, ok := store.Root()
	require.True(t, ok)
	assert.Equal(t, root.ID, dec.NodeID)
	assert.Equal(t, []string{"step1"}, dec.Context.CurrentPath)
	assert.Equal(t, strategy.TypeBeamSearch, dec.StrategyUsed)
	assert.Equal(t, []string{root.ID}, s.Beam())
}

func TestStep_BeamNeverExceedsWidth(t *testing.T) {
	store := tree.NewStore()
	s := New(store, func(o *Options) { o.Evaluator = deepening })

	width := 2
	_, err := s.Step(context.Background(), step("step1", 1, true, width))
	require.NoError(t, err)

	for i := 2; i <= 6; i++ {
		dec, err := s.Step(context.Background(), step("next step", i, true, width))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s.Beam()), width)

		// The returned node carries the maximum score of the new beam.
		for _, id := range s.Beam() {
			node, err := store.GetNode(id)
			require.NoError(t, err)
			assert.LessOrEqual(t, node.Score, dec.Score+1e-9)
		}
	}
}

func TestStep_WidthOneIsGreedy(t *testing.T) {
	store := tree.NewStore()
	s := New(store, func(o *Options) { o.Evaluator = deepening })

	_, err := s.Step(context.Background(), step("step1", 1, true, 1))
	require.NoError(t, err)
	dec, err := s.Step(context.Background(), step("step2", 2, true, 1))
	require.NoError(t, err)

	assert.Len(t, s.Beam(), 1)
	// Greedy best-first: the single frontier entry is the new child.
	node, err := store.GetNode(dec.NodeID)
	require.NoError(t, err)
	assert.Equal(t, 1, node.Depth)
	assert.Equal(t, 2, store.Stats().TotalNodes)
}

func TestStep_SurvivorsBranchAgain(t *testing.T) {
	store := tree.NewStore()
	// Constant evaluator keeps the root competitive so it stays in the beam
	// and accrues a second child on the next step.
	s := New(store, func(o *Options) {
		o.Evaluator = scoring.EvaluatorFunc(func(string, int) float64 { return 0.5 })
	})

	_, err := s.Step(context.Background(), step("step1", 1, true, 2))
	require.NoError(t, err)
	_, err = s.Step(context.Background(), step("step2", 2, true, 2))
	require.NoError(t, err)
	_, err = s.Step(context.Background(), step("step3", 3, true, 2))
	require.NoError(t, err)

	root, ok := store.Root()
	require.True(t, ok)
	assert.Len(t, root.Children, 2)
}

func TestStep_PrunedBranchesStayInTree(t *testing.T) {
	store := tree.NewStore()
	s := New(store, func(o *Options) { o.Evaluator = deepening })

	total := 0
	for i := 1; i <= 5; i++ {
		_, err := s.Step(context.Background(), step("next", i, true, 2))
		require.NoError(t, err)
		newTotal := store.Stats().TotalNodes
		assert.Greater(t, newTotal, total)
		total = newTotal
	}
	// More nodes exist than fit into the beam; the rest were pruned but kept.
	assert.Greater(t, total, 2)
}

func TestStep_TerminalRetiresChain(t *testing.T) {
	store := tree.NewStore()
	s := New(store, func(o *Options) { o.Evaluator = deepening })

	_, err := s.Step(context.Background(), step("step1", 1, true, 2))
	require.NoError(t, err)
	dec, err := s.Step(context.Background(), step("final answer", 2, false, 2))
	require.NoError(t, err)

	node, err := store.GetNode(dec.NodeID)
	require.NoError(t, err)
	assert.True(t, node.Terminal)
	assert.NotContains(t, s.Beam(), dec.NodeID)

	// A step after retirement branches fresh from the root, never under
	// the finished chain's terminal leaf.
	next, err := s.Step(context.Background(), step("new question", 1, true, 2))
	require.NoError(t, err)
	fresh, err := store.GetNode(next.NodeID)
	require.NoError(t, err)
	root, _ := store.Root()
	if fresh.ID != root.ID {
		assert.Equal(t, root.ID, fresh.ParentID)
	}
	assert.NotEqual(t, dec.NodeID, fresh.ParentID)
}

func TestStep_StableTieBreak(t *testing.T) {
	store := tree.NewStore()
	s := New(store, func(o *Options) {
		o.Evaluator = scoring.EvaluatorFunc(func(string, int) float64 { return 0.5 })
	})

	dec1, err := s.Step(context.Background(), step("step1", 1, true, 2))
	require.NoError(t, err)
	dec2, err := s.Step(context.Background(), step("step2", 2, true, 2))
	require.NoError(t, err)

	// All candidates tie at 0.5, so the earlier-created root stays on top.
	assert.Equal(t, dec1.NodeID, dec2.NodeID)
}

func TestStep_AlternativesReported(t *testing.T) {
	store := tree.NewStore()
	s := New(store, func(o *Options) { o.Evaluator = deepening })

	var dec strategy.Decision
	var err error
	for i := 1; i <= 4; i++ {
		dec, err = s.Step(context.Background(), step("next", i, true, 3))
		require.NoError(t, err)
	}

	// Surviving entries branched while in the beam, so siblings of the
	// returned path must surface as alternatives.
	root, ok := store.Root()
	require.True(t, ok)
	assert.Greater(t, len(root.Children), 1)
	assert.NotEmpty(t, dec.Context.AlternativePaths)
}
