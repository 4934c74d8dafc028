package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Clone", "Clnoe", 2},
		{"Debug", "Debg", 1},
		{"PartialEq", "PartialOrd", 3},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.s1, tt.s2))
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.s2, tt.s1))
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"Clone", "Copy", "Debug", "Default", "Eq", "Hash", "Ord", "PartialEq", "PartialOrd"}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{"exact match", "Debug", nil, []string{"Debug"}},
		{"typo", "Clnoe", nil, []string{"Clone"}},
		{"case insensitive", "hash", nil, []string{"Hash"}},
		{"case sensitive", "hash", &FuzzyMatchOptions{CaseSensitive: true}, []string{"Hash"}},
		{"ordered by distance", "Eqq", nil, []string{"Eq", "Ord"}},
		{"no match too far", "Serialize", nil, []string{}},
		{"max suggestions limit", "PartialOr", &FuzzyMatchOptions{MaxSuggestions: 1}, []string{"PartialOrd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindSimilar(tt.target, candidates, tt.opts))
		})
	}
}

func TestFindBestMatch(t *testing.T) {
	candidates := []string{"Clone", "Debug", "Zeroize", "ZeroizeOnDrop"}

	assert.Equal(t, "Zeroize", FindBestMatch("Zeroise", candidates, nil))
	assert.Equal(t, "Debug", FindBestMatch("debug", candidates, nil))
	assert.Equal(t, "", FindBestMatch("Serialize", candidates, nil))
	assert.True(t, HasCloseMatch("Clon", candidates, nil))
	assert.False(t, HasCloseMatch("Serialize", candidates, nil))
}

func TestFindSimilarEmptyCandidates(t *testing.T) {
	assert.Empty(t, FindSimilar("Clone", nil, nil))
}
