package reasonmesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reasonmesh/reasoner"
	"github.com/hupe1980/reasonmesh/strategy"
)

func TestProcessThought_Defaults(t *testing.T) {
	m := New()

	resp, err := m.ProcessThought(context.Background(), reasoner.Request{
		Thought:           "split the problem into independent parts",
		ThoughtNumber:     1,
		TotalThoughts:     2,
		NextThoughtNeeded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, strategy.TypeBeamSearch, resp.StrategyUsed)
	assert.Equal(t, 1, m.Stats().TotalNodes)
}

func TestSessionsIsolated(t *testing.T) {
	m := New()

	_, err := m.ProcessThoughtInSession(context.Background(), "research", reasoner.Request{
		Thought:           "gather prior results",
		ThoughtNumber:     1,
		TotalThoughts:     1,
		NextThoughtNeeded: false,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, m.StatsForSession("research").TotalNodes)
	assert.Equal(t, 0, m.Stats().TotalNodes)
}

func TestDefaultStrategyOverride(t *testing.T) {
	m := New(func(o *Options) {
		o.DefaultStrategy = strategy.TypeMCTS
	})

	resp, err := m.ProcessThought(context.Background(), reasoner.Request{
		Thought:           "simulate likely outcomes",
		ThoughtNumber:     1,
		TotalThoughts:     1,
		NextThoughtNeeded: false,
		NumSimulations:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, strategy.TypeMCTS, resp.StrategyUsed)
}
