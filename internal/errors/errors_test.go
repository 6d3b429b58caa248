package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserErrorMessage(t *testing.T) {
	e := NewConfigError("bad config", "missing key", "add the key", nil)
	assert.Equal(t, "bad config", e.Error())
	assert.Equal(t, ExitConfig, e.ExitCode)
}

func TestUserErrorWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("disk full")
	e := NewIOError("cannot write document", "staging write failed", "check disk space", underlying)
	assert.Contains(t, e.Error(), "disk full")
	assert.ErrorIs(t, e, underlying)
}

func TestUserErrorFormatIncludesAllSections(t *testing.T) {
	e := NewNotFoundError("crawl not found", "no crawl with that id", "run conveyor status")
	out := e.Format(true)
	assert.Contains(t, out, "Error: crawl not found")
	assert.Contains(t, out, "Cause: no crawl with that id")
	assert.Contains(t, out, "Fix:   run conveyor status")
}

func TestUserErrorToJSON(t *testing.T) {
	e := NewInputError("bad flag", "unknown phase", "use one of all/extract/transform/publish")
	j := e.ToJSON()
	require.Equal(t, "bad flag", j.Error)
	assert.Equal(t, ExitInput, j.ExitCode)
}

func TestExitCodesAreDistinct(t *testing.T) {
	codes := []int{ExitSuccess, ExitConfig, ExitIO, ExitNetwork, ExitInput, ExitPermission, ExitNotFound, ExitInternal}
	seen := make(map[int]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate exit code %d", c)
		seen[c] = true
	}
}
