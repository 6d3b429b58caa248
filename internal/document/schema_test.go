package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidate(t *testing.T) {
	t.Run("accepts a well-formed schema", func(t *testing.T) {
		s := &Schema{Fields: []FieldDef{
			{Name: "id", Type: FieldText, PrimaryKey: true},
			{Name: "tags", Type: FieldText, MultiValue: true, Delimiter: ";"},
		}}
		require.NoError(t, s.Validate())
	})

	t.Run("rejects duplicate field names", func(t *testing.T) {
		s := &Schema{Fields: []FieldDef{
			{Name: "id", Type: FieldText},
			{Name: "id", Type: FieldInteger},
		}}
		assert.Error(t, s.Validate())
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		s := &Schema{Fields: []FieldDef{{Name: "x", Type: "unknown"}}}
		assert.Error(t, s.Validate())
	})

	t.Run("rejects multi-value field without a delimiter", func(t *testing.T) {
		s := &Schema{Fields: []FieldDef{{Name: "tags", Type: FieldText, MultiValue: true}}}
		assert.Error(t, s.Validate())
	})

	t.Run("rejects more than one primary key", func(t *testing.T) {
		s := &Schema{Fields: []FieldDef{
			{Name: "a", Type: FieldText, PrimaryKey: true},
			{Name: "b", Type: FieldText, PrimaryKey: true},
		}}
		assert.Error(t, s.Validate())
	})
}

func TestFieldDefValidateValue(t *testing.T) {
	cases := []struct {
		name    string
		field   FieldDef
		raw     string
		wantErr bool
	}{
		{"integer ok", FieldDef{Name: "n", Type: FieldInteger}, "42", false},
		{"integer bad", FieldDef{Name: "n", Type: FieldInteger}, "abc", true},
		{"long ok", FieldDef{Name: "n", Type: FieldLong}, "9223372036854775807", false},
		{"float ok", FieldDef{Name: "n", Type: FieldFloat}, "3.14", false},
		{"double bad", FieldDef{Name: "n", Type: FieldDouble}, "x.y", true},
		{"boolean ok", FieldDef{Name: "b", Type: FieldBoolean}, "true", false},
		{"date ok", FieldDef{Name: "d", Type: FieldDate}, "2026-08-01", false},
		{"date bad", FieldDef{Name: "d", Type: FieldDate}, "08/01/2026", true},
		{"time ok", FieldDef{Name: "t", Type: FieldTime}, "13:45:00", false},
		{"datetime ok", FieldDef{Name: "dt", Type: FieldDateTime}, "2026-08-01T13:45:00Z", false},
		{"required missing", FieldDef{Name: "r", Type: FieldText, Required: true}, "", true},
		{"optional missing", FieldDef{Name: "o", Type: FieldText}, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.field.ValidateValue(c.raw)
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldDefValidateValueMultiValue(t *testing.T) {
	f := FieldDef{Name: "scores", Type: FieldInteger, MultiValue: true, Delimiter: ","}
	assert.NoError(t, f.ValidateValue("1,2,3"))
	assert.Error(t, f.ValidateValue("1,x,3"))
}

func TestSchemaFieldByName(t *testing.T) {
	s := &Schema{Fields: []FieldDef{{Name: "id", Type: FieldText, PrimaryKey: true}}}
	f, ok := s.FieldByName("id")
	require.True(t, ok)
	assert.Equal(t, FieldText, f.Type)

	_, ok = s.FieldByName("missing")
	assert.False(t, ok)

	pk, ok := s.PrimaryKeyField()
	require.True(t, ok)
	assert.Equal(t, "id", pk.Name)
}
