package publish

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
)

func newTestCrawlQueue(t *testing.T) *crawlqueue.CrawlQueue {
	t.Helper()
	cq := crawlqueue.New(t.TempDir(), nil)
	_, err := cq.Start(crawlqueue.Full, time.Time{})
	require.NoError(t, err)
	return cq
}

func TestArchiverWriteBatchCreatesSequencedFile(t *testing.T) {
	cq := newTestCrawlQueue(t)
	arch := NewArchiver(cq, nil)

	docs := []*document.Document{doc("doc-1"), doc("doc-2")}
	require.NoError(t, arch.WriteBatch(docs))

	data, err := os.ReadFile(cq.ArchivePath(1))
	require.NoError(t, err)
	assert.Contains(t, string(data), "doc-1")
	assert.Contains(t, string(data), "doc-2")
}

func TestArchiverSequenceIncrementsAcrossBatches(t *testing.T) {
	cq := newTestCrawlQueue(t)
	arch := NewArchiver(cq, nil)

	require.NoError(t, arch.WriteBatch([]*document.Document{doc("doc-1")}))
	require.NoError(t, arch.WriteBatch([]*document.Document{doc("doc-2")}))

	_, err := os.Stat(cq.ArchivePath(1))
	assert.NoError(t, err)
	_, err = os.Stat(cq.ArchivePath(2))
	assert.NoError(t, err)
}

func TestArchiverWriteCommitMarkerAdvancesSequence(t *testing.T) {
	cq := newTestCrawlQueue(t)
	arch := NewArchiver(cq, nil)

	require.NoError(t, arch.WriteBatch([]*document.Document{doc("doc-1")}))
	require.NoError(t, arch.WriteCommitMarker())

	_, err := os.Stat(cq.ArchivePath(2))
	assert.NoError(t, err)
}
