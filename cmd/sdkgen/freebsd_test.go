package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelease(t *testing.T) {
	major, minor, err := parseRelease("14.3")
	require.NoError(t, err)
	assert.Equal(t, 14, major)
	assert.Equal(t, 3, minor)

	major, minor, err = parseRelease("15")
	require.NoError(t, err)
	assert.Equal(t, 15, major)
	assert.Equal(t, 0, minor)

	_, _, err = parseRelease("not-a-version")
	assert.Error(t, err)
}
