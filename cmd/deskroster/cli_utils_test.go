package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCol(t *testing.T) {
	assert.Equal(t, "short", truncateCol("short", 10))
	assert.Equal(t, "this is...", truncateCol("this is too long", 10))
	assert.Equal(t, "ab", truncateCol("abcdef", 2))
}

func TestTableRowWidths(t *testing.T) {
	row := tableRow("Alice", "alice@test.com", "Engineer", "Platform")
	assert.True(t, strings.HasPrefix(row, "Alice"))
	assert.Contains(t, row, "alice@test.com")
}

func TestParseFlagValueForms(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		rest int
	}{
		{"long with space", []string{"--name", "Alice", "x"}, "Alice", 1},
		{"long with equals", []string{"--name=Alice"}, "Alice", 0},
		{"short with space", []string{"-n", "Alice"}, "Alice", 0},
		{"short with equals", []string{"-n=Alice", "y"}, "Alice", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, remaining, found := parseFlagValue(tt.args, "-n", "--name")
			assert.True(t, found)
			assert.Equal(t, tt.want, value)
			assert.Len(t, remaining, tt.rest)
		})
	}
}

func TestParseFlagValueAbsent(t *testing.T) {
	value, remaining, found := parseFlagValue([]string{"a", "b"}, "-n", "--name")
	assert.False(t, found)
	assert.Empty(t, value)
	assert.Equal(t, []string{"a", "b"}, remaining)
}

func TestHasFlag(t *testing.T) {
	found, remaining := hasFlag([]string{"--json", "other"}, "--json", "-j")
	assert.True(t, found)
	assert.Equal(t, []string{"other"}, remaining)

	found, remaining = hasFlag([]string{"other"}, "--json")
	assert.False(t, found)
	assert.Equal(t, []string{"other"}, remaining)
}
