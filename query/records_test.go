package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/querykit/query"
)

func TestInsertColumnsAreSorted(t *testing.T) {
	records := []map[string]any{
		{"name": "Jon", "email": "jon@example.com", "age": 40},
	}
	assert.Equal(t, []string{"age", "email", "name"}, query.InsertColumns(records))
	assert.Nil(t, query.InsertColumns(nil))
}

func TestInsertColumnsComeFromFirstRecord(t *testing.T) {
	records := []map[string]any{
		{"email": "a@example.com"},
		{"email": "b@example.com", "name": "B"},
	}
	assert.Equal(t, []string{"email"}, query.InsertColumns(records))
}

func TestInsertBindingsFollowColumnOrder(t *testing.T) {
	records := []map[string]any{
		{"name": "A", "email": "a@example.com"},
		{"name": "B", "email": "b@example.com"},
	}
	assert.Equal(t,
		[]any{"a@example.com", "A", "b@example.com", "B"},
		query.InsertBindings(records))
}

func TestInsertBindingsMissingKeyBindsNil(t *testing.T) {
	records := []map[string]any{
		{"email": "a@example.com", "name": "A"},
		{"email": "b@example.com"},
	}
	assert.Equal(t,
		[]any{"a@example.com", "A", "b@example.com", nil},
		query.InsertBindings(records))
}

func TestInsertBindingsSkipExpressions(t *testing.T) {
	records := []map[string]any{
		{"created_at": query.Raw("now()"), "email": "a@example.com"},
	}
	assert.Equal(t, []any{"a@example.com"}, query.InsertBindings(records))
}

func TestUpdateColumnsAndValuesStayAligned(t *testing.T) {
	values := map[string]any{"name": "Jon", "active": true, "email": "jon@example.com"}
	assert.Equal(t, []string{"active", "email", "name"}, query.UpdateColumns(values))
	assert.Equal(t, []any{true, "jon@example.com", "Jon"}, query.UpdateValues(values))
}

func TestUpdateValuesKeepExpressions(t *testing.T) {
	// Expressions stay in the ordered value list; BindingsForUpdate drops
	// them so placeholders and values line up.
	values := map[string]any{"votes": query.Raw("votes + 1"), "name": "Jon"}
	ordered := query.UpdateValues(values)
	assert.Len(t, ordered, 2)
	assert.True(t, query.IsExpression(ordered[1]))
}
