package models

import (
	"time"
)

// Priority is stored and sorted by its text label.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known labels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is a task owned by exactly one user.
type Todo struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Completed   bool       `db:"completed"`
	Priority    Priority   `db:"priority"`
	DueDate     *time.Time `db:"due_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// TodoCreate carries the caller supplied fields of a new todo.
// An empty Priority means PriorityMedium.
type TodoCreate struct {
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
}

// TodoPatch lists the fields an update should touch. Fields that are not Set
// are left as they are; Description and DueDate can be cleared by setting
// them to nil.
type TodoPatch struct {
	Title       Optional[string]
	Description Optional[*string]
	Completed   Optional[bool]
	Priority    Optional[Priority]
	DueDate     Optional[*time.Time]
}

// Apply copies every set field of p onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Completed.Set {
		t.Completed = p.Completed.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
}

// TodoPage is one page of a listing.
type TodoPage struct {
	Items   []*Todo
	Total   int64
	Page    int
	PerPage int
	Pages   int
}
