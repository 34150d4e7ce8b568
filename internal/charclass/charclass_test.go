package charclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeASCII(t *testing.T) {
	r, w := Decode("abc")
	assert.Equal(t, 'a', r)
	assert.Equal(t, 1, w)
}

func TestDecodeIllFormed(t *testing.T) {
	_, w := Decode("\xff")
	assert.Equal(t, 0, w)
}

func TestDecodeEmpty(t *testing.T) {
	_, w := Decode("")
	assert.Equal(t, 0, w)
}

func TestIsLetterUnderscore(t *testing.T) {
	assert.True(t, IsLetter('_'))
	assert.True(t, IsLetter('a'))
	assert.False(t, IsLetter('1'))
}

func TestIsForbiddenFSChar(t *testing.T) {
	for _, ch := range ForbiddenPathChars {
		assert.True(t, IsForbiddenFSChar(ch), "expected %q forbidden", ch)
	}
	assert.False(t, IsForbiddenFSChar('a'))
	assert.False(t, IsForbiddenFSChar('/'))
}
