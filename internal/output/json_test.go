package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONToPrettyPrints(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONTo(&buf, sample{Name: "crawl-1", Count: 3}))
	assert.Contains(t, buf.String(), "\n  \"name\": \"crawl-1\"")
}

func TestJSONCompactToSingleLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONCompactTo(&buf, sample{Name: "crawl-1", Count: 3}))
	assert.Equal(t, `{"name":"crawl-1","count":3}`+"\n", buf.String())
}

func TestJSONErrorToWrapsMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONErrorTo(&buf, errors.New("publisher unresolved")))
	assert.Contains(t, buf.String(), `"error": "publisher unresolved"`)
}
