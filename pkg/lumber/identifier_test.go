package lumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierWildcardDetection(t *testing.T) {
	wild := NewIdentifier("_")
	named := NewIdentifier("X")
	assert.True(t, wild.IsWildcard())
	assert.False(t, named.IsWildcard())
	assert.Equal(t, "X", named.Name())
}
