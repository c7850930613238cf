package reasoner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reasonmesh/internal/util"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/strategy/external"
)

func request(thought string, number int, more bool) Request {
	return Request{
		Thought:           thought,
		ThoughtNumber:     number,
		TotalThoughts:     3,
		NextThoughtNeeded: more,
	}
}

func TestProcessThought_DefaultsToBeamSearch(t *testing.T) {
	r := New()

	resp, err := r.ProcessThought(context.Background(), "", request("break the problem into cases", 1, true))
	require.NoError(t, err)

	assert.Equal(t, strategy.TypeBeamSearch, resp.StrategyUsed)
	assert.NotEmpty(t, resp.NodeID)
	assert.Equal(t, 1, resp.Stats.TotalNodes)
	assert.GreaterOrEqual(t, resp.Score, 0.0)
	assert.LessOrEqual(t, resp.Score, 1.0)
}

func TestProcessThought_SelectsMCTS(t *testing.T) {
	r := New()

	req := request("first estimate the bounds", 1, true)
	req.StrategyType = "mcts"
	req.NumSimulations = 5

	resp, err := r.ProcessThought(context.Background(), "s1", req)
	require.NoError(t, err)
	assert.Equal(t, strategy.TypeMCTS, resp.StrategyUsed)
}

func TestProcessThought_ValidationBeforeMutation(t *testing.T) {
	r := New()

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"zero thought number", request("valid", 0, true), "thoughtNumber"},
		{"empty thought", request("", 1, true), "thought"},
		{"zero total thoughts", Request{Thought: "x", ThoughtNumber: 1, TotalThoughts: 0}, "totalThoughts"},
		{"unknown strategy", Request{Thought: "x", ThoughtNumber: 1, TotalThoughts: 1, StrategyType: "dfs"}, "strategyType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ProcessThought(context.Background(), "s1", tt.req)
			require.Error(t, err)

			var verr *util.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	// None of the rejected requests may have touched the tree.
	assert.Equal(t, 0, r.GetStats("s1").TotalNodes)
}

func TestProcessThought_SessionsAreIsolated(t *testing.T) {
	r := New()

	_, err := r.ProcessThought(context.Background(), "a", request("thought in a", 1, true))
	require.NoError(t, err)

	assert.Equal(t, 1, r.GetStats("a").TotalNodes)
	assert.Equal(t, 0, r.GetStats("b").TotalNodes)
}

func TestProcessThought_StrategyStatePersistsAcrossSteps(t *testing.T) {
	r := New()

	first, err := r.ProcessThought(context.Background(), "s1", request("step one", 1, true))
	require.NoError(t, err)
	second, err := r.ProcessThought(context.Background(), "s1", request("step two", 2, true))
	require.NoError(t, err)

	assert.NotEqual(t, first.NodeID, second.NodeID)
	assert.Greater(t, second.Stats.TotalNodes, first.Stats.TotalNodes)
	assert.Len(t, second.Context.CurrentPath, 2)
}

func TestProcessThought_ExternalRequiresCompleter(t *testing.T) {
	r := New()

	req := request("ask the model", 1, false)
	req.StrategyType = "external"

	_, err := r.ProcessThought(context.Background(), "s1", req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completer")
}

func TestProcessThought_ExternalStrategy(t *testing.T) {
	r := New(func(o *Options) {
		o.Completer = external.CompleterFunc(func(context.Context, string) (string, error) {
			return "the chain holds", nil
		})
	})

	req := request("final check", 1, false)
	req.StrategyType = "external"

	resp, err := r.ProcessThought(context.Background(), "s1", req)
	require.NoError(t, err)
	assert.Equal(t, strategy.TypeExternal, resp.StrategyUsed)
	assert.Equal(t, 1.0, resp.Score)
	assert.Equal(t, "the chain holds", resp.Completion)
}

func TestGetStats_IndependentOfProcessing(t *testing.T) {
	r := New()

	stats := r.GetStats("untouched")
	assert.Equal(t, 0, stats.TotalNodes)
	assert.Equal(t, 0.0, stats.AverageScore)
}
