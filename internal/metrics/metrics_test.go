package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordExtractedIncrementsCounter(t *testing.T) {
	m.init()
	start := testutil.ToFloat64(m.extracted)
	RecordExtracted()
	after := testutil.ToFloat64(m.extracted)
	assert.Equal(t, start+1, after)
}

func TestRecordDroppedLabelsByPhase(t *testing.T) {
	m.init()
	RecordDropped("transform")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dropped.WithLabelValues("transform")))
}
