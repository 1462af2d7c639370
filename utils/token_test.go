package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomTokenLengthAndAlphabet(t *testing.T) {
	token, err := RandomToken(GiftCodeLength)
	require.NoError(t, err)
	require.Len(t, token, GiftCodeLength)

	for _, r := range token {
		require.True(t, strings.ContainsRune(tokenAlphabet, r), "unexpected character %q", r)
	}
}

func TestRandomTokenIsNotRepeating(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := RandomToken(GiftCodeLength)
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token %q", token)
		seen[token] = true
	}
}

func TestNewAPIKey(t *testing.T) {
	key, err := NewAPIKey()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "pmk_"))
	require.Len(t, key, len("pmk_")+32)
}
