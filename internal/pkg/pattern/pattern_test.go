package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteral_CaseInsensitiveExact(t *testing.T) {
	m := Literal("Plumber")
	assert.True(t, m.MatchString("plumber"))
	assert.True(t, m.MatchString("PLUMBER"))
	assert.False(t, m.MatchString("plumbers"))
	assert.False(t, m.MatchString("master plumber"))
}

func TestLiteral_MetacharactersAreQuoted(t *testing.T) {
	assert.False(t, Literal(".*").MatchString("Electrician"))
	assert.True(t, Literal(".*").MatchString(".*"))
	assert.True(t, Literal("AC (split) repair+").MatchString("ac (split) REPAIR+"))
}
