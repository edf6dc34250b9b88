package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cedict-mcp/pkg/types"
)

func TestEncode(t *testing.T) {
	encoded, err := Encode([]string{"love", " to love someone "})
	require.NoError(t, err)
	assert.Equal(t, "/ love / to love someone /", encoded)

	single, err := Encode([]string{"love"})
	require.NoError(t, err)
	assert.Equal(t, "/ love /", single)
}

func TestEncode_Invalid(t *testing.T) {
	for name, defs := range map[string][]string{
		"empty list":  nil,
		"blank":       {"love", "  "},
		"slash":       {"and/or"},
		"empty first": {""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(defs)
			assert.ErrorIs(t, err, types.ErrInvalidEntry)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, defs := range [][]string{
		{"love"},
		{"to love", "affection", "CL:個|个[ge4]"},
		{"(bound form) heart", "x"},
	} {
		encoded, err := Encode(defs)
		require.NoError(t, err)
		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, defs, decoded)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, text := range []string{"", "/ /", "love", "/ love", "love /", "/love/"} {
		_, err := Decode(text)
		assert.ErrorIs(t, err, types.ErrMalformedEncoding, "input %q", text)
	}
}
