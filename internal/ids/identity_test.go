package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityEncoderIdempotent(t *testing.T) {
	enc := NewIdentityEncoder("fs")
	a := enc.Encode("/data/share/reports/q3.pdf")
	b := enc.Encode("/data/share/reports/q3.pdf")
	assert.Equal(t, a, b)
}

func TestIdentityEncoderNormalizesEquivalentPaths(t *testing.T) {
	enc := NewIdentityEncoder("fs")
	a := enc.Encode("./data/share//reports/q3.pdf")
	b := enc.Encode("data/share/reports/q3.pdf")
	assert.Equal(t, a, b)
}

func TestIdentityEncoderDistinctPrefixesDoNotCollide(t *testing.T) {
	a := NewIdentityEncoder("fs").Encode("reports/q3.pdf")
	b := NewIdentityEncoder("web").Encode("reports/q3.pdf")
	assert.NotEqual(t, a, b)
}

func TestIdentityEncoderHashesLongLocators(t *testing.T) {
	enc := NewIdentityEncoder("fs")
	longPath := "data/" + strings.Repeat("a", 300) + "/file.txt"
	id := enc.Encode(longPath)
	require.True(t, strings.HasPrefix(id, "fs:"))
	assert.Less(t, len(id), 80)
}

func TestIdentityEncoderHashesUnsafeCharacters(t *testing.T) {
	enc := NewIdentityEncoder("fs")
	id := enc.Encode("reports/q3?final*.pdf")
	assert.NotContains(t, id, "?")
	assert.NotContains(t, id, "*")
}

func TestIdentityEncoderKeepsReadableURLs(t *testing.T) {
	enc := NewIdentityEncoder("web")
	id := enc.Encode("https://example.com/docs/page")
	assert.Equal(t, "web:https://example.com/docs/page", id)
}

func TestIdentityEncoderWithoutPrefix(t *testing.T) {
	enc := NewIdentityEncoder("")
	id := enc.Encode("reports/q3.pdf")
	assert.Equal(t, "reports/q3.pdf", id)
}

func TestEncodeRelationshipStableAndDistinct(t *testing.T) {
	enc := NewIdentityEncoder("fs")
	a := enc.EncodeRelationship("reports/q3.pdf", "row", "5")
	b := enc.EncodeRelationship("reports/q3.pdf", "row", "5")
	c := enc.EncodeRelationship("reports/q3.pdf", "row", "6")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
