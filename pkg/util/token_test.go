package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(16)
	require.NoError(t, err)
	b, err := GenerateToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestNewID(t *testing.T) {
	id, err := NewID(16)
	require.NoError(t, err)

	assert.Len(t, id, 16)
	assert.Regexp(t, "^[a-zA-Z0-9]+$", id)
}
