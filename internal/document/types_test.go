package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleSchema() *Schema {
	return &Schema{Fields: []FieldDef{
		{Name: "id", Type: FieldText, PrimaryKey: true, Required: true},
		{Name: "title", Type: FieldText},
	}}
}

func TestDocumentValidate(t *testing.T) {
	t.Run("valid document passes", func(t *testing.T) {
		d := New("doc-1", "page", simpleSchema())
		d.Rows = []Row{{"id": "doc-1", "title": "hello"}}
		require.NoError(t, d.Validate())
	})

	t.Run("empty id rejected", func(t *testing.T) {
		d := New("", "page", simpleSchema())
		assert.Error(t, d.Validate())
	})

	t.Run("missing schema rejected", func(t *testing.T) {
		d := New("doc-1", "page", nil)
		assert.Error(t, d.Validate())
	})

	t.Run("duplicate primary key rejected", func(t *testing.T) {
		d := New("doc-1", "page", simpleSchema())
		d.Rows = []Row{
			{"id": "x", "title": "a"},
			{"id": "x", "title": "b"},
		}
		assert.Error(t, d.Validate())
	})

	t.Run("unassigned primary key rejected", func(t *testing.T) {
		d := New("doc-1", "page", simpleSchema())
		d.Rows = []Row{{"id": "", "title": "a"}}
		assert.Error(t, d.Validate())
	})

	t.Run("acyclic relationship tree passes", func(t *testing.T) {
		child := New("child-1", "page", simpleSchema())
		child.Rows = []Row{{"id": "child-1", "title": "c"}}
		d := New("doc-1", "page", simpleSchema())
		d.Rows = []Row{{"id": "doc-1", "title": "parent"}}
		d.Relationships = []Relationship{{Type: "contains", Children: []*Document{child}}}
		require.NoError(t, d.Validate())
	})

	t.Run("cyclic relationship graph rejected", func(t *testing.T) {
		a := New("a", "page", simpleSchema())
		a.Rows = []Row{{"id": "a", "title": "a"}}
		b := New("b", "page", simpleSchema())
		b.Rows = []Row{{"id": "b", "title": "b"}}
		a.Relationships = []Relationship{{Type: "next", Children: []*Document{b}}}
		b.Relationships = []Relationship{{Type: "next", Children: []*Document{a}}}
		assert.Error(t, a.Validate())
	})
}

func TestDocumentClone(t *testing.T) {
	child := New("child-1", "page", simpleSchema())
	child.Rows = []Row{{"id": "child-1", "title": "c"}}
	d := New("doc-1", "page", simpleSchema())
	d.Rows = []Row{{"id": "doc-1", "title": "parent"}}
	d.Features["is-content"] = "true"
	d.ACL["alice"] = "read"
	d.Relationships = []Relationship{{Type: "contains", Properties: map[string]string{"order": "1"}, Children: []*Document{child}}}

	clone := d.Clone()
	require.NotSame(t, d, clone)
	assert.Equal(t, d.ID, clone.ID)
	assert.Equal(t, d.Rows, clone.Rows)
	assert.Equal(t, d.Features, clone.Features)
	assert.Equal(t, d.ACL, clone.ACL)
	require.Len(t, clone.Relationships, 1)
	require.Len(t, clone.Relationships[0].Children, 1)
	assert.NotSame(t, d.Relationships[0].Children[0], clone.Relationships[0].Children[0])
	assert.Equal(t, "child-1", clone.Relationships[0].Children[0].ID)

	clone.Features["is-content"] = "false"
	assert.Equal(t, "true", d.Features["is-content"])
}

func TestDocumentOptions(t *testing.T) {
	d := New("doc-1", "page", simpleSchema())
	d.Features[FeatureIsContent] = "true"
	d.Features[FeatureMVDelimiter] = ";"
	d.Features["custom-flag"] = "yes"

	opts := d.Options()
	assert.True(t, opts.IsContent)
	assert.Equal(t, ";", opts.MVDelimiter)
	assert.Equal(t, "yes", opts.Extra["custom-flag"])
	_, hasKnown := opts.Extra[FeatureIsContent]
	assert.False(t, hasKnown)
}
