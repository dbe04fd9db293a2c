package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

var columns = []string{
	"id", "user_id", "title", "description", "completed",
	"priority", "due_date", "created_at", "updated_at",
}

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {

	query :=
		`INSERT INTO todos (user_id, title, description, completed, priority, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		todo.UserID, todo.Title, todo.Description, todo.Completed,
		todo.Priority, todo.DueDate, todo.CreatedAt, todo.UpdatedAt).Scan(&todo.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

func (r *SQLRepository) Find(ctx context.Context, id, ownerID int64) (*models.Todo, error) {

	query, args, err := sq.Select(columns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	todo := &models.Todo{}
	if err := r.db.GetContext(ctx, todo, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

func (r *SQLRepository) Update(ctx context.Context, todo *models.Todo) error {

	query :=
		`UPDATE todos
		 SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		todo.Title, todo.Description, todo.Completed, todo.Priority, todo.DueDate, todo.UpdatedAt,
		todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {

	query := `DELETE FROM todos WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), id, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *SQLRepository) Count(ctx context.Context, ownerID int64, completed *bool) (int64, error) {

	query, args, err := filtered(sq.Select("COUNT(*)"), ownerID, completed).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

func (r *SQLRepository) List(ctx context.Context, ownerID int64, q models.ListQuery) ([]*models.Todo, error) {
	q = q.Normalize()

	query, args, err := filtered(sq.Select(columns...), ownerID, q.Completed).
		OrderBy(orderBy(q.SortBy, q.Order)...).
		Limit(uint64(q.PerPage)).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []*models.Todo{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func filtered(b sq.SelectBuilder, ownerID int64, completed *bool) sq.SelectBuilder {
	b = b.From("todos").Where(sq.Eq{"user_id": ownerID})
	if completed != nil {
		b = b.Where(sq.Eq{"completed": *completed})
	}
	return b
}

// orderBy expects a normalized sort column and direction. Todos without a due
// date go last in both directions; id breaks every remaining tie.
func orderBy(column, order string) []string {
	dir := "DESC"
	if order == models.OrderAsc {
		dir = "ASC"
	}

	clauses := make([]string, 0, 3)
	if column == "due_date" {
		clauses = append(clauses, "due_date IS NULL")
	}
	clauses = append(clauses, column+" "+dir, "id ASC")
	return clauses
}
