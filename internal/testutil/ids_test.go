package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	g := NewSequentialIDs("sig")
	assert.Equal(t, "sig-000001", g.Generate())
	assert.Equal(t, "sig-000002", g.Generate())

	assert.Equal(t, "entry-000001", NewSequentialIDs("").Generate())
}

func TestFixedIDs(t *testing.T) {
	g := NewFixedIDs("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
