package client

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/client/models"
)

// Client is the API surface the CLI uses.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) error
	Logout()
	IsLoggedIn() bool
	Me(ctx context.Context) (*models.User, error)
	ListTodos(ctx context.Context, page, perPage int) (*models.TodoPage, error)
	CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error)
	GetTodo(ctx context.Context, id int64) (*models.Todo, error)
	ToggleTodo(ctx context.Context, id int64) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}
