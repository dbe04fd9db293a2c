// Package models holds the JSON shapes the CLI exchanges with the todo API.
package models

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      int64      `json:"user_id"`
}

// TodoInput is the body of a create request. Empty optional fields are
// left out so the server applies its defaults.
type TodoInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type TodoPage struct {
	Items   []Todo `json:"items"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Pages   int    `json:"pages"`
}

// String renders a one-line summary used by list output.
func (t Todo) String() string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	s := fmt.Sprintf("[%s] #%d %s (%s)", mark, t.ID, t.Title, t.Priority)
	if t.DueDate != nil {
		s += " due " + t.DueDate.Format("2006-01-02")
	}
	return s
}

// Details renders every field, one per line.
func (t Todo) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:          %d\n", t.ID)
	fmt.Fprintf(&b, "Title:       %s\n", t.Title)
	if t.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", *t.Description)
	}
	fmt.Fprintf(&b, "Completed:   %t\n", t.Completed)
	fmt.Fprintf(&b, "Priority:    %s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&b, "Due:         %s\n", t.DueDate.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Created:     %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated:     %s\n", t.UpdatedAt.Format(time.RFC3339))
	return b.String()
}
