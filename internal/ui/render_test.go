package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hell…", truncate("hello world", 5))
	assert.Equal(t, "", truncate("hello", 0))
}

func TestTruncateWideRunes(t *testing.T) {
	// CJK runes occupy two cells each.
	got := truncate("日本語テキスト", 6)
	assert.LessOrEqual(t, len([]rune(got)), 4)
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "abcd…", pad("abcdefgh", 5))
}

func TestCenterInScreenNeverNegative(t *testing.T) {
	// Content larger than the screen must not panic or pad negatively.
	out := centerInScreen("abc\ndef", 1, 1)
	assert.Contains(t, out, "abc")
}
