package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatchesInOrder(t *testing.T) {
	idxA, idxB := &fakeIndex{}, &fakeIndex{}
	factories := map[string]func() *BatchPublisher{
		"a": func() *BatchPublisher { return New("a", idxA, Config{BatchSize: 1, CommitEvery: 1, UploadEnabled: true}, nil) },
		"b": func() *BatchPublisher { return New("b", idxB, Config{BatchSize: 1, CommitEvery: 1, UploadEnabled: true}, nil) },
	}

	reg, err := NewRegistry([]string{"a", "b"}, factories)
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	require.NoError(t, reg.Send(context.Background(), doc("doc-1")))
	assert.Len(t, idxA.addCalls, 1)
	assert.Len(t, idxB.addCalls, 1)
}

func TestRegistryUnresolvableNameFails(t *testing.T) {
	_, err := NewRegistry([]string{"missing"}, map[string]func() *BatchPublisher{})
	assert.Error(t, err)
}

func TestRegistryValidatePropagatesPublisherError(t *testing.T) {
	factories := map[string]func() *BatchPublisher{
		"a": func() *BatchPublisher { return New("a", nil, Config{BatchSize: 1, CommitEvery: 1, UploadEnabled: true}, nil) },
	}
	reg, err := NewRegistry([]string{"a"}, factories)
	require.NoError(t, err)
	assert.Error(t, reg.Validate())
}

func TestRegistryShutdownShutsDownEveryPublisher(t *testing.T) {
	idxA, idxB := &fakeIndex{}, &fakeIndex{}
	factories := map[string]func() *BatchPublisher{
		"a": func() *BatchPublisher { return New("a", idxA, Config{BatchSize: 1, CommitEvery: 1, UploadEnabled: true}, nil) },
		"b": func() *BatchPublisher { return New("b", idxB, Config{BatchSize: 1, CommitEvery: 1, UploadEnabled: true}, nil) },
	}
	reg, err := NewRegistry([]string{"a", "b"}, factories)
	require.NoError(t, err)

	require.NoError(t, reg.Send(context.Background(), doc("doc-1")))
	require.NoError(t, reg.Shutdown(context.Background()))
	// One commit from Add crossing commitEvery=1, one final commit at shutdown.
	assert.Equal(t, 2, idxA.commits)
	assert.Equal(t, 2, idxB.commits)
}
