package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/conveyor/internal/crawlqueue"
	"github.com/kraklabs/conveyor/internal/document"
	"github.com/kraklabs/conveyor/internal/notify"
	"github.com/kraklabs/conveyor/internal/pipeline"
	"github.com/kraklabs/conveyor/internal/queue"
)

var errTransformFailed = errors.New("transform: simulated failure")

func newTestCrawlQueue(t *testing.T) *crawlqueue.CrawlQueue {
	t.Helper()
	cq := crawlqueue.New(t.TempDir(), nil)
	_, err := cq.Start(crawlqueue.Full, time.Time{})
	require.NoError(t, err)
	return cq
}

func stageDoc(id string) *document.Document {
	return document.New(id, "test", nil)
}

func TestTransformStageMovesDocsAndForwardsMarker(t *testing.T) {
	cq := newTestCrawlQueue(t)
	require.NoError(t, cq.WriteDoc(document.PhaseExtract, "doc-1", stageDoc("doc-1")))
	require.NoError(t, cq.WriteDoc(document.PhaseExtract, "doc-2", stageDoc("doc-2")))

	in := queue.NewBoundedQueue[document.QueueItem](8)
	out := queue.NewBoundedQueue[document.QueueItem](8)
	require.NoError(t, in.Put(context.Background(), document.NewDocumentItem("doc-1")))
	require.NoError(t, in.Put(context.Background(), document.NewDocumentItem("doc-2")))
	require.NoError(t, in.Put(context.Background(), document.NewMarkerItem(document.PhaseExtract)))

	stage := &TransformStage{
		CrawlQueue:  cq,
		In:          in,
		Out:         out,
		Pipeline:    pipeline.New(),
		Workers:     2,
		PollTimeout: 50 * time.Millisecond,
		Notifier:    notify.NewLogNotifier(nil),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stage.Run(ctx))

	var docsSeen, markersSeen int
	for {
		item, ok, err := out.Poll(context.Background(), 10*time.Millisecond)
		require.NoError(t, err)
		if !ok {
			break
		}
		if item.IsMarker() {
			markersSeen++
			assert.True(t, crawlqueue.IsPhaseComplete(document.PhaseTransform, item))
			continue
		}
		docsSeen++
	}
	assert.Equal(t, 2, docsSeen)
	assert.Equal(t, 1, markersSeen)

	_, err := cq.ReadDoc(document.PhaseTransform, "doc-1")
	assert.NoError(t, err)
}

func TestTransformStageDropsOnPipelineError(t *testing.T) {
	cq := newTestCrawlQueue(t)
	require.NoError(t, cq.WriteDoc(document.PhaseExtract, "bad-doc", stageDoc("bad-doc")))

	in := queue.NewBoundedQueue[document.QueueItem](4)
	out := queue.NewBoundedQueue[document.QueueItem](4)
	require.NoError(t, in.Put(context.Background(), document.NewDocumentItem("bad-doc")))
	require.NoError(t, in.Put(context.Background(), document.NewMarkerItem(document.PhaseExtract)))

	failingUnit := pipeline.UnitFunc{UnitName: "fail", Func: func(_ context.Context, _ *document.Document) (*document.Document, error) {
		return nil, errTransformFailed
	}}

	stage := &TransformStage{
		CrawlQueue:  cq,
		In:          in,
		Out:         out,
		Pipeline:    pipeline.New(failingUnit),
		Workers:     1,
		PollTimeout: 50 * time.Millisecond,
		Notifier:    notify.NewLogNotifier(nil),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stage.Run(ctx))

	item, ok, err := out.Poll(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, item.IsMarker(), "failed document should not be forwarded, only the marker")
}
