package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCompat(t *testing.T) {
	// non-breaking space between number and unit
	require.Equal(t, "15,600 kg", NormalizeCompat(" 15,600 kg "))
	require.Equal(t, "", NormalizeCompat("  \n\t"))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", CollapseWhitespace("  a \n b\t\tc "))
}

func TestIsDigits(t *testing.T) {
	require.True(t, IsDigits("42"))
	require.False(t, IsDigits(""))
	require.False(t, IsDigits("42a"))
	require.False(t, IsDigits("4 2"))
}
