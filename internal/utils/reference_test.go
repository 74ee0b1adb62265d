package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingRefShape(t *testing.T) {
	ref, err := NewBookingRef()
	require.NoError(t, err)
	assert.Len(t, ref, 3+refLength)
	assert.True(t, strings.HasPrefix(ref, "PG-"))
	for _, ch := range ref[3:] {
		assert.True(t, strings.ContainsRune(refAlphabet, ch),
			"unexpected character %q in reference %q", ch, ref)
	}
}

func TestNewBookingRefVariety(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref, err := NewBookingRef()
		require.NoError(t, err)
		assert.False(t, seen[ref], "reference %q generated twice", ref)
		seen[ref] = true
	}
}
