package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIgnoreEmptyFollowMatchesEverything(t *testing.T) {
	fi, err := NewFollowIgnore(nil, nil)
	require.NoError(t, err)
	assert.True(t, fi.Allowed("/data/site/index.html"))
}

func TestFollowIgnoreRequiresFollowMatch(t *testing.T) {
	fi, err := NewFollowIgnore([]string{"/data/site/**"}, nil)
	require.NoError(t, err)
	assert.True(t, fi.Allowed("/data/site/index.html"))
	assert.False(t, fi.Allowed("/data/other/index.html"))
}

func TestFollowIgnoreRejectsIgnoreMatch(t *testing.T) {
	fi, err := NewFollowIgnore([]string{"/data/site/**"}, []string{"**/*.tmp"})
	require.NoError(t, err)
	assert.True(t, fi.Allowed("/data/site/index.html"))
	assert.False(t, fi.Allowed("/data/site/scratch.tmp"))
}

func TestNewFollowIgnoreRejectsInvalidPattern(t *testing.T) {
	_, err := NewFollowIgnore([]string{"["}, nil)
	assert.Error(t, err)
}
