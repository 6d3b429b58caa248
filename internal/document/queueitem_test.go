package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueItemDocumentRoundTrip(t *testing.T) {
	item := NewDocumentItem("abc123")
	item = item.WithTiming(PhaseExtract, 12)
	item = item.WithTiming(PhaseTransform, 34)

	assert.True(t, item.IsDocument())
	assert.False(t, item.IsMarker())
	assert.Equal(t, "abc123", item.ID())
	require.Len(t, item.Timings(), 2)
	assert.Equal(t, PhaseExtract, item.Timings()[0].Phase)
	assert.Equal(t, int64(12), item.Timings()[0].ElapsedMS)

	token := item.String()
	parsed, err := ParseQueueItem(token)
	require.NoError(t, err)
	assert.Equal(t, item.ID(), parsed.ID())
	assert.Equal(t, item.Timings(), parsed.Timings())
}

func TestQueueItemMarkerRoundTrip(t *testing.T) {
	item := NewMarkerItem(PhaseExtract)
	assert.True(t, item.IsMarker())
	assert.False(t, item.IsDocument())
	assert.Equal(t, PhaseExtract, item.MarkerPhase())

	token := item.String()
	parsed, err := ParseQueueItem(token)
	require.NoError(t, err)
	assert.True(t, parsed.IsMarker())
	assert.Equal(t, PhaseExtract, parsed.MarkerPhase())
}

func TestIsPhaseComplete(t *testing.T) {
	marker := NewMarkerItem(PhaseTransform)
	assert.True(t, IsPhaseComplete(marker, PhaseTransform))
	assert.False(t, IsPhaseComplete(marker, PhaseExtract))
	assert.False(t, IsPhaseComplete(NewDocumentItem("x"), PhaseTransform))
}

func TestParseQueueItemWithoutTimings(t *testing.T) {
	parsed, err := ParseQueueItem("doc-42")
	require.NoError(t, err)
	assert.True(t, parsed.IsDocument())
	assert.Equal(t, "doc-42", parsed.ID())
	assert.Empty(t, parsed.Timings())
}

func TestParseQueueItemMalformed(t *testing.T) {
	_, err := ParseQueueItem("doc-1|extract")
	assert.Error(t, err)

	_, err = ParseQueueItem("doc-1|extract:notanumber")
	assert.Error(t, err)
}
