package tree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNode_RootAndChildren(t *testing.T) {
	store := NewStore()

	rootID, err := store.CreateNode("", "step1", "beam_search")
	require.NoError(t, err)

	root, err := store.GetNode(rootID)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Depth)
	assert.True(t, root.IsRoot())
	assert.Equal(t, "step1", root.Thought)

	childID, err := store.CreateNode(rootID, "step2", "beam_search")
	require.NoError(t, err)

	child, err := store.GetNode(childID)
	require.NoError(t, err)
	assert.Equal(t, 1, child.Depth)
	assert.Equal(t, rootID, child.ParentID)

	root, err = store.GetNode(rootID)
	require.NoError(t, err)
	assert.Equal(t, []string{childID}, root.Children)
}

func TestCreateNode_Errors(t *testing.T) {
	store := NewStore()

	_, err := store.CreateNode("missing", "x", "beam_search")
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = store.CreateNode("", "root", "beam_search")
	require.NoError(t, err)

	_, err = store.CreateNode("", "second root", "beam_search")
	assert.ErrorIs(t, err, ErrDuplicateRoot)
}

func TestGetNode_NotFound(t *testing.T) {
	store := NewStore()
	_, err := store.GetNode("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDepthEqualsAncestorCount(t *testing.T) {
	store := NewStore()
	id, err := store.CreateNode("", "root", "mcts")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		id, err = store.CreateNode(id, "step", "mcts")
		require.NoError(t, err)
	}

	path, err := store.PathToRoot(id)
	require.NoError(t, err)
	for i, node := range path {
		assert.Equal(t, i, node.Depth)
	}
	leaf := path[len(path)-1]
	assert.Equal(t, len(path)-1, leaf.Depth)
}

func TestPathToRoot_Order(t *testing.T) {
	store := NewStore()
	rootID, _ := store.CreateNode("", "a", "beam_search")
	midID, _ := store.CreateNode(rootID, "b", "beam_search")
	leafID, _ := store.CreateNode(midID, "c", "beam_search")

	path, err := store.PathToRoot(leafID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "a", path[0].Thought)
	assert.Equal(t, "b", path[1].Thought)
	assert.Equal(t, "c", path[2].Thought)
}

func TestSiblingPaths(t *testing.T) {
	store := NewStore()
	rootID, _ := store.CreateNode("", "root", "beam_search")
	keptID, _ := store.CreateNode(rootID, "kept", "beam_search")
	altID, _ := store.CreateNode(rootID, "alt", "beam_search")
	leafID, _ := store.CreateNode(keptID, "leaf", "beam_search")

	// Extend the alternative branch so the descent has something to walk.
	altChildID, _ := store.CreateNode(altID, "alt deeper", "beam_search")
	require.NoError(t, store.UpdateScore(altChildID, 0.9))

	branches, err := store.SiblingPaths(leafID)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	require.Len(t, branches[0], 2)
	assert.Equal(t, "alt", branches[0][0].Thought)
	assert.Equal(t, "alt deeper", branches[0][1].Thought)
}

func TestIncrementVisits(t *testing.T) {
	store := NewStore()
	id, _ := store.CreateNode("", "root", "mcts")

	require.NoError(t, store.IncrementVisits(id))
	require.NoError(t, store.IncrementVisits(id))

	node, err := store.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, 2, node.Visits)
	assert.Zero(t, node.Score)

	assert.ErrorIs(t, store.IncrementVisits("missing"), ErrNotFound)
}

func TestRecordReward_RunningMean(t *testing.T) {
	store := NewStore()
	id, _ := store.CreateNode("", "root", "mcts")

	require.NoError(t, store.RecordReward(id, 1.0))
	require.NoError(t, store.RecordReward(id, 0.0))
	require.NoError(t, store.RecordReward(id, 0.5))

	node, err := store.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, 3, node.Visits)
	assert.InDelta(t, 0.5, node.Score, 1e-9)
}

func TestStats_RunningAggregates(t *testing.T) {
	store := NewStore()
	assert.Equal(t, 0, store.Stats().TotalNodes)

	rootID, _ := store.CreateNode("", "root", "beam_search")
	aID, _ := store.CreateNode(rootID, "a", "beam_search")
	bID, _ := store.CreateNode(rootID, "b", "mcts")
	_, _ = store.CreateNode(aID, "c", "beam_search")

	require.NoError(t, store.UpdateScore(rootID, 0.8))
	require.NoError(t, store.UpdateScore(aID, 0.4))
	require.NoError(t, store.UpdateScore(bID, 0.6))

	stats := store.Stats()
	assert.Equal(t, 4, stats.TotalNodes)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.InDelta(t, (0.8+0.4+0.6)/4, stats.AverageScore, 1e-9)
	// root has 2 children, a has 1 -> 3 edges over 2 non-leaf nodes.
	assert.InDelta(t, 1.5, stats.BranchingFactor, 1e-9)

	assert.Equal(t, 3, stats.StrategyMetrics["beam_search"].Nodes)
	assert.Equal(t, 1, stats.StrategyMetrics["mcts"].Nodes)
	assert.InDelta(t, 0.6, stats.StrategyMetrics["mcts"].AverageScore, 1e-9)
}

func TestStats_MonotonicAndIdempotent(t *testing.T) {
	store := NewStore()
	prev := 0
	id := ""
	for i := 0; i < 10; i++ {
		var err error
		id, err = store.CreateNode(id, "step", "beam_search")
		require.NoError(t, err)
		total := store.Stats().TotalNodes
		assert.Greater(t, total, prev)
		prev = total
	}

	first := store.Stats()
	second := store.Stats()
	assert.Equal(t, first, second)
}

func TestMarkTerminal(t *testing.T) {
	store := NewStore()
	id, _ := store.CreateNode("", "done", "beam_search")

	require.NoError(t, store.MarkTerminal(id))
	require.NoError(t, store.MarkTerminal(id)) // idempotent

	node, _ := store.GetNode(id)
	assert.True(t, node.Terminal)
	assert.Equal(t, 1, store.Stats().StrategyMetrics["beam_search"].TerminalNodes)
}

func TestRecordReward_Concurrent(t *testing.T) {
	store := NewStore()
	rootID, _ := store.CreateNode("", "root", "mcts")
	childID, _ := store.CreateNode(rootID, "child", "mcts")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = store.RecordReward(childID, 0.5)
			_ = store.RecordReward(rootID, 0.5)
		}()
	}
	wg.Wait()

	child, _ := store.GetNode(childID)
	root, _ := store.GetNode(rootID)
	assert.Equal(t, n, child.Visits)
	assert.Equal(t, n, root.Visits)
	assert.InDelta(t, 0.5, child.Score, 1e-9)
}
