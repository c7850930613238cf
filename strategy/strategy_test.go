package strategy

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reasonmesh/tree"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{input: "beam_search", want: TypeBeamSearch},
		{input: "mcts", want: TypeMCTS},
		{input: "external", want: TypeExternal},
		{input: "", wantErr: true},
		{input: "alphabeta", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestClamps(t *testing.T) {
	assert.Equal(t, DefaultBeamWidth, ClampBeamWidth(0))
	assert.Equal(t, MinBeamWidth, ClampBeamWidth(-5))
	assert.Equal(t, MaxBeamWidth, ClampBeamWidth(99))
	assert.Equal(t, 4, ClampBeamWidth(4))

	assert.Equal(t, DefaultSimulations, ClampSimulations(0))
	assert.Equal(t, MinSimulations, ClampSimulations(-1))
	assert.Equal(t, MaxSimulations, ClampSimulations(1000))
	assert.Equal(t, 10, ClampSimulations(10))
}

func TestBuildContext(t *testing.T) {
	store := tree.NewStore()
	rootID, err := store.CreateNode("", "root", string(TypeBeamSearch))
	require.NoError(t, err)
	require.NoError(t, store.UpdateScore(rootID, 0.8))

	keptID, err := store.CreateNode(rootID, "kept branch", string(TypeBeamSearch))
	require.NoError(t, err)
	require.NoError(t, store.UpdateScore(keptID, 0.6))

	badID, err := store.CreateNode(rootID, "abandoned branch", string(TypeBeamSearch))
	require.NoError(t, err)
	require.NoError(t, store.UpdateScore(badID, 0.1))

	rc, err := BuildContext(store, keptID, 0.6)
	require.NoError(t, err)

	assert.Equal(t, []string{"root", "kept branch"}, rc.CurrentPath)
	require.Len(t, rc.AlternativePaths, 1)
	assert.Equal(t, []string{"abandoned branch"}, rc.AlternativePaths[0])
	assert.Equal(t, []string{"abandoned branch"}, rc.Mistakes)
	assert.InDelta(t, 0.6, rc.Confidence, 1e-9)
}

func TestBuildContext_ImprovementOnScoreDrop(t *testing.T) {
	store := tree.NewStore()
	rootID, _ := store.CreateNode("", "strong opening", string(TypeBeamSearch))
	_ = store.UpdateScore(rootID, 0.9)
	weakID, _ := store.CreateNode(rootID, "weak follow-up", string(TypeBeamSearch))
	_ = store.UpdateScore(weakID, 0.4)

	rc, err := BuildContext(store, weakID, 0.4)
	require.NoError(t, err)
	require.NotEmpty(t, rc.Improvements)
	assert.Contains(t, rc.Improvements[0], "step 2")
}

func TestBuildContext_ClampsConfidence(t *testing.T) {
	store := tree.NewStore()
	rootID, _ := store.CreateNode("", "root", string(TypeMCTS))

	rc, err := BuildContext(store, rootID, 1.7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rc.Confidence)
}

func TestTruncate_RuneBoundary(t *testing.T) {
	long := strings.Repeat("ü", 40)

	got := truncate(long, 20)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 20)
	assert.True(t, strings.HasSuffix(got, "..."))

	// ASCII input and input already within the limit stay untouched.
	assert.Equal(t, "short", truncate("short", 20))
	assert.Equal(t, strings.Repeat("a", 17)+"...", truncate(strings.Repeat("a", 30), 20))
}
