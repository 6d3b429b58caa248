package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLCodecRoundTrip(t *testing.T) {
	schema := &Schema{Fields: []FieldDef{
		{Name: "id", Type: FieldText, PrimaryKey: true},
		{Name: "tags", Type: FieldText, MultiValue: true, Delimiter: ";"},
		{Name: "views", Type: FieldInteger},
	}}

	child := New("child-1", "section", schema)
	child.Rows = []Row{{"id": "child-1", "tags": "a;b", "views": "3"}}

	d := New("doc-1", "page", schema)
	d.Rows = []Row{{"id": "doc-1", "tags": "x;y;z", "views": "10"}}
	d.Features[FeatureIsContent] = "true"
	d.ACL["alice"] = "read-write"
	d.Relationships = []Relationship{
		{Type: "contains", Properties: map[string]string{"order": "1"}, Children: []*Document{child}},
	}

	codec := XMLCodec{}
	encoded, err := codec.Encode(d)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, d.ID, decoded.ID)
	assert.Equal(t, d.Type, decoded.Type)
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, d.Rows[0], decoded.Rows[0])
	assert.Equal(t, d.Features, decoded.Features)
	assert.Equal(t, d.ACL, decoded.ACL)
	require.Len(t, decoded.Relationships, 1)
	assert.Equal(t, "contains", decoded.Relationships[0].Type)
	assert.Equal(t, "1", decoded.Relationships[0].Properties["order"])
	require.Len(t, decoded.Relationships[0].Children, 1)
	assert.Equal(t, "child-1", decoded.Relationships[0].Children[0].ID)
	assert.Equal(t, child.Rows[0], decoded.Relationships[0].Children[0].Rows[0])

	require.NoError(t, decoded.Validate())
}

func TestXMLCodecDecodeEmptyDocument(t *testing.T) {
	d := New("doc-1", "page", &Schema{})
	codec := XMLCodec{}
	encoded, err := codec.Encode(d)
	require.NoError(t, err)

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", decoded.ID)
	assert.Empty(t, decoded.Rows)
	assert.Empty(t, decoded.Relationships)
}
