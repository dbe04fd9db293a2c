package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func TestListQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListQuery
		want ListQuery
	}{
		{
			name: "defaults for zero values",
			in:   ListQuery{},
			want: ListQuery{Page: 1, PerPage: 1, SortBy: "created_at", Order: "desc"},
		},
		{
			name: "negative page and huge per_page",
			in:   ListQuery{Page: -3, PerPage: 1000},
			want: ListQuery{Page: 1, PerPage: 100, SortBy: "created_at", Order: "desc"},
		},
		{
			name: "page beyond the addressable range",
			in:   ListQuery{Page: math.MaxInt, PerPage: 100},
			want: ListQuery{Page: MaxPage, PerPage: 100, SortBy: "created_at", Order: "desc"},
		},
		{
			name: "known sort and mixed case order",
			in:   ListQuery{Page: 2, PerPage: 5, SortBy: "priority", Order: "ASC"},
			want: ListQuery{Page: 2, PerPage: 5, SortBy: "priority", Order: "asc"},
		},
		{
			name: "unknown sort and order fall back",
			in:   ListQuery{Page: 1, PerPage: 10, SortBy: "password_hash", Order: "sideways"},
			want: ListQuery{Page: 1, PerPage: 10, SortBy: "created_at", Order: "desc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestListQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, ListQuery{Page: 1, PerPage: 5}.Offset())
	assert.Equal(t, 10, ListQuery{Page: 3, PerPage: 5}.Offset())

	for _, page := range []int{math.MaxInt / 50, math.MaxInt} {
		q := ListQuery{Page: page, PerPage: 1000}.Normalize()
		assert.Positive(t, q.Offset(), "page %d", page)
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 3, PageCount(15, 5))
}

func TestPriority_Valid(t *testing.T) {
	assert.True(t, PriorityLow.Valid())
	assert.True(t, PriorityMedium.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.False(t, Priority("").Valid())
}

func TestOptional_UnmarshalPresence(t *testing.T) {
	var body struct {
		Title       Optional[string]     `json:"title"`
		Description Optional[*string]    `json:"description"`
		Completed   Optional[bool]       `json:"completed"`
		DueDate     Optional[*time.Time] `json:"due_date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","description":null,"completed":false}`), &body))

	assert.True(t, body.Title.Set)
	assert.Equal(t, "x", body.Title.Value)

	assert.True(t, body.Description.Set)
	assert.True(t, body.Description.Null)
	assert.Nil(t, body.Description.Value)

	assert.True(t, body.Completed.Set, "false must still count as present")
	assert.False(t, body.Completed.Value)

	assert.False(t, body.DueDate.Set)
}

func TestTodoPatch_Apply(t *testing.T) {
	desc := "old"
	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	todo := &Todo{Title: "keep", Description: &desc, Priority: PriorityLow, DueDate: &due}

	TodoPatch{
		Description: some[*string](nil),
		Completed:   some(true),
		Priority:    some(PriorityHigh),
	}.Apply(todo)

	assert.Equal(t, "keep", todo.Title)
	assert.Nil(t, todo.Description)
	assert.True(t, todo.Completed)
	assert.Equal(t, PriorityHigh, todo.Priority)
	assert.Equal(t, &due, todo.DueDate)
}
