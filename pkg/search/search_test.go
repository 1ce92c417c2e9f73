package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAll(t *testing.T) {
	assert.True(t, ContainsAll("Aspirin 500mg tablet", Tokens("aspirin 500")))
	assert.True(t, ContainsAll("ASPIRIN 500MG", Tokens("  500   Aspirin ")))
	assert.False(t, ContainsAll("Aspirin 300mg", Tokens("aspirin 500")))
	assert.True(t, ContainsAll("anything", Tokens("   ")))
	assert.True(t, ContainsAll("", nil))
}
