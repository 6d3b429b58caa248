package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/conveyor/internal/document"
)

func testDoc(id string) *document.Document {
	return document.New(id, "page", &document.Schema{})
}

func upperTitleUnit() Unit {
	return UnitFunc{
		UnitName: "upper-title",
		Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
			doc.Features["title"] = "UPPERCASED"
			return doc, nil
		},
	}
}

func TestEmptyPipelinePassesThrough(t *testing.T) {
	p := New()
	require.NoError(t, p.Validate())

	doc := testDoc("doc-1")
	out, err := p.Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Same(t, doc, out)
}

func TestPipelineRunsUnitsInOrder(t *testing.T) {
	var order []string
	first := UnitFunc{UnitName: "first", Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
		order = append(order, "first")
		return doc, nil
	}}
	second := UnitFunc{UnitName: "second", Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
		order = append(order, "second")
		return doc, nil
	}}

	p := New(first, second)
	require.NoError(t, p.Validate())

	_, err := p.Run(context.Background(), testDoc("doc-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPipelineAppliesTransformation(t *testing.T) {
	p := New(upperTitleUnit())
	require.NoError(t, p.Validate())

	out, err := p.Run(context.Background(), testDoc("doc-1"))
	require.NoError(t, err)
	assert.Equal(t, "UPPERCASED", out.Features["title"])
}

func TestPipelineValidateRejectsUnnamedUnit(t *testing.T) {
	p := New(UnitFunc{UnitName: "", Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
		return doc, nil
	}})
	assert.Error(t, p.Validate())
}

func TestPipelineRunFailsFastOnUnitError(t *testing.T) {
	boom := errors.New("boom")
	ok := UnitFunc{UnitName: "ok", Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
		return doc, nil
	}}
	fails := UnitFunc{UnitName: "fails", Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
		return nil, boom
	}}
	neverRuns := UnitFunc{UnitName: "never", Func: func(_ context.Context, doc *document.Document) (*document.Document, error) {
		t.Fatal("unit after a failure must not run")
		return doc, nil
	}}

	p := New(ok, fails, neverRuns)
	require.NoError(t, p.Validate())

	_, err := p.Run(context.Background(), testDoc("doc-1"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "fails")
}

func TestPipelineRunBeforeValidateFails(t *testing.T) {
	p := New(upperTitleUnit())
	_, err := p.Run(context.Background(), testDoc("doc-1"))
	assert.Error(t, err)
}

func TestUnitsReturnsConfiguredList(t *testing.T) {
	u1 := upperTitleUnit()
	p := New(u1)
	assert.Equal(t, []Unit{u1}, p.Units())
}
