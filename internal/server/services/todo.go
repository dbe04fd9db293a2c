package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
	"github.com/jmoiron/sqlx"
)

// TodoService manages todos on behalf of their owner. Every method takes the
// caller's user id; todos owned by someone else behave as if absent.
type TodoService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTodoService(db *sqlx.DB, m repomanager.RepositoryManager, log logging.Logger) *TodoService {
	return &TodoService{
		db:          db,
		repomanager: m,
		log:         log.With("service", "todos"),
	}
}

// Create stores a new, not yet completed todo for ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID int64, in models.TodoCreate) (*models.Todo, error) {
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := validateTodo(in.Title, in.Description, in.Priority); err != nil {
		return nil, err
	}

	now := timex.Now()
	todo := &models.Todo{
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     utc(in.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Todos(tx).Create(ctx, todo)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "create todo failed", "user_id", ownerID, "error", err)
		return nil, err
	}

	return todo, nil
}

// Get returns the todo or common.ErrorNotFound.
func (s *TodoService) Get(ctx context.Context, id, ownerID int64) (*models.Todo, error) {
	return s.repomanager.Todos(s.db).Find(ctx, id, ownerID)
}

// Update applies the fields set in patch. updated_at moves forward even when
// nothing else changes.
func (s *TodoService) Update(ctx context.Context, id, ownerID int64, patch models.TodoPatch) (*models.Todo, error) {
	return s.mutate(ctx, id, ownerID, func(t *models.Todo) error {
		patch.Apply(t)
		t.DueDate = utc(t.DueDate)
		return validateTodo(t.Title, t.Description, t.Priority)
	})
}

// Toggle flips the completion flag.
func (s *TodoService) Toggle(ctx context.Context, id, ownerID int64) (*models.Todo, error) {
	return s.mutate(ctx, id, ownerID, func(t *models.Todo) error {
		t.Completed = !t.Completed
		return nil
	})
}

// Delete removes the todo, reporting false if there was nothing to remove.
func (s *TodoService) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	var deleted bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		deleted, err = s.repomanager.Todos(tx).Delete(ctx, id, ownerID)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "delete todo failed", "todo_id", id, "error", err)
		return false, err
	}
	return deleted, nil
}

// List returns one page of ownerID's todos. Out-of-range paging and unknown
// sort options are coerced, never rejected. The completed filter applies to
// the total as well as to the items.
func (s *TodoService) List(ctx context.Context, ownerID int64, q models.ListQuery) (*models.TodoPage, error) {
	q = q.Normalize()

	page := &models.TodoPage{Page: q.Page, PerPage: q.PerPage}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		total, err := repo.Count(ctx, ownerID, q.Completed)
		if err != nil {
			return err
		}
		items, err := repo.List(ctx, ownerID, q)
		if err != nil {
			return err
		}

		page.Total = total
		page.Items = items
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "list todos failed", "user_id", ownerID, "error", err)
		return nil, err
	}

	page.Pages = models.PageCount(page.Total, page.PerPage)
	return page, nil
}

func (s *TodoService) mutate(ctx context.Context, id, ownerID int64, fn func(*models.Todo) error) (*models.Todo, error) {
	var todo *models.Todo

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		t, err := repo.Find(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		t.UpdatedAt = timex.Touch(timex.Now(), t.UpdatedAt)

		if err := repo.Update(ctx, t); err != nil {
			return err
		}
		todo = t
		return nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrorValidation) {
			s.log.Error(ctx, "update todo failed", "todo_id", id, "error", err)
		}
		return nil, err
	}

	return todo, nil
}

func validateTodo(title string, description *string, priority models.Priority) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > 200 {
		return fmt.Errorf("%w: title must be 1-200 characters", common.ErrorValidation)
	}
	if description != nil && utf8.RuneCountInString(*description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", common.ErrorValidation)
	}
	if !priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", common.ErrorValidation, priority)
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(timex.Precision)
	return &v
}
