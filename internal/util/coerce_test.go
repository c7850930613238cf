package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
		ok    bool
	}{
		{"int", 3, 3, true},
		{"integer valued float64", float64(5), 5, true},
		{"fractional float64", 2.5, 0, false},
		{"numeric string", "7", 7, true},
		{"word", "three", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBool(t *testing.T) {
	got, ok := ToBool(true)
	assert.True(t, ok)
	assert.True(t, got)

	got, ok = ToBool("false")
	assert.True(t, ok)
	assert.False(t, got)

	_, ok = ToBool(1)
	assert.False(t, ok)
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, ClampInt(0, 1, 10))
	assert.Equal(t, 10, ClampInt(42, 1, 10))
	assert.Equal(t, 5, ClampInt(5, 1, 10))
}
