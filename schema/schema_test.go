package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageParsesRepeatedPrefix(t *testing.T) {
	m, err := NewMessage("Thing", map[string]FieldSpec{
		"tags": {Type: "repeated string", ID: 1},
		"id":   {Type: "int32", ID: 2},
	})
	require.NoError(t, err)

	tags := m.FieldByName["tags"]
	require.NotNil(t, tags)
	assert.True(t, tags.Repeated)
	assert.Equal(t, "string", tags.Type)

	id := m.FieldByName["id"]
	require.NotNil(t, id)
	assert.False(t, id.Repeated)
}

func TestNewMessageRejectsDuplicateID(t *testing.T) {
	_, err := NewMessage("Thing", map[string]FieldSpec{
		"a": {Type: "int32", ID: 1},
		"b": {Type: "string", ID: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Double definition of id 1")
}

func TestNewMessageRejectsReservedFieldID(t *testing.T) {
	_, err := NewMessage("Thing", map[string]FieldSpec{
		"a": {Type: "int32", ID: 19500},
	})
	require.Error(t, err)
}

func TestNewMessageRejectsOutOfRangeFieldID(t *testing.T) {
	_, err := NewMessage("Thing", map[string]FieldSpec{
		"a": {Type: "int32", ID: 0},
	})
	require.Error(t, err)

	_, err = NewMessage("Thing", map[string]FieldSpec{
		"b": {Type: "int32", ID: 1 << 29},
	})
	require.Error(t, err)
}

func TestNewEnumRequiresZeroMember(t *testing.T) {
	_, err := NewEnum("Color", map[string]int32{"RED": 1, "BLUE": 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain a field with id = 0")
}

func TestNewEnumRejectsDuplicateID(t *testing.T) {
	_, err := NewEnum("Color", map[string]int32{"NONE": 0, "RED": 1, "ALSO_RED": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Double definition of id 1")
}

func TestNewEnumValid(t *testing.T) {
	e, err := NewEnum("Color", map[string]int32{"NONE": 0, "RED": 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), e.IDByValue["RED"])
	assert.Equal(t, "RED", e.ValueByID[1])
}

func TestNewSchemaResolvesForwardReferences(t *testing.T) {
	author, err := NewMessage("Author", map[string]FieldSpec{
		"name": {Type: "string", ID: 1},
	})
	require.NoError(t, err)

	book, err := NewMessage("Book", map[string]FieldSpec{
		"title":  {Type: "string", ID: 1},
		"author": {Type: "Author", ID: 2},
	})
	require.NoError(t, err)

	// Author is declared after Book in the input list — forward
	// reference resolution must not depend on list order.
	s, err := NewSchema([]Def{book, author})
	require.NoError(t, err)

	got, ok := s.Message("Book")
	require.True(t, ok)
	assert.Equal(t, "Author", got.FieldByName["author"].Type)
}

func TestNewSchemaRejectsUndeclaredType(t *testing.T) {
	book, err := NewMessage("Book", map[string]FieldSpec{
		"author": {Type: "Author", ID: 1},
	})
	require.NoError(t, err)

	_, err = NewSchema([]Def{book})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not declared")
}

func TestNewSchemaRejectsDirectSelfRecursion(t *testing.T) {
	node, err := NewMessage("Node", map[string]FieldSpec{
		"next": {Type: "Node", ID: 1},
	})
	require.NoError(t, err)

	_, err = NewSchema([]Def{node})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot have field")
}

func TestNewSchemaRejectsDuplicateName(t *testing.T) {
	a, err := NewMessage("Thing", map[string]FieldSpec{"x": {Type: "int32", ID: 1}})
	require.NoError(t, err)
	b, err := NewEnum("Thing", map[string]int32{"NONE": 0})
	require.NoError(t, err)

	_, err = NewSchema([]Def{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Double definition of name")
}

// TestSchemaDeterministicAcrossDefinitionOrder checks that two
// definition lists that are permutations of one another produce
// equivalent schemas.
func TestSchemaDeterministicAcrossDefinitionOrder(t *testing.T) {
	author, err := NewMessage("Author", map[string]FieldSpec{"name": {Type: "string", ID: 1}})
	require.NoError(t, err)
	book, err := NewMessage("Book", map[string]FieldSpec{
		"title":  {Type: "string", ID: 1},
		"author": {Type: "Author", ID: 2},
	})
	require.NoError(t, err)
	color, err := NewEnum("Color", map[string]int32{"NONE": 0, "RED": 1})
	require.NoError(t, err)

	forward, err := NewSchema([]Def{author, book, color})
	require.NoError(t, err)
	backward, err := NewSchema([]Def{color, book, author})
	require.NoError(t, err)

	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(forward.MessageNames(), backward.MessageNames(), sortStrings); diff != "" {
		t.Errorf("MessageNames differ by definition order (-forward +backward):\n%s", diff)
	}
	if diff := cmp.Diff(forward.EnumNames(), backward.EnumNames(), sortStrings); diff != "" {
		t.Errorf("EnumNames differ by definition order (-forward +backward):\n%s", diff)
	}

	fwdBook, _ := forward.Message("Book")
	backBook, _ := backward.Message("Book")
	if diff := cmp.Diff(fwdBook.FieldByName, backBook.FieldByName); diff != "" {
		t.Errorf("Book fields differ by definition order:\n%s", diff)
	}
}

func TestSchemaNameAccessors(t *testing.T) {
	m, err := NewMessage("Thing", map[string]FieldSpec{"x": {Type: "int32", ID: 1}})
	require.NoError(t, err)
	e, err := NewEnum("Color", map[string]int32{"NONE": 0})
	require.NoError(t, err)

	s, err := NewSchema([]Def{m, e})
	require.NoError(t, err)

	assert.Equal(t, []string{"Thing"}, s.MessageNames())
	assert.Equal(t, []string{"Color"}, s.EnumNames())
}
