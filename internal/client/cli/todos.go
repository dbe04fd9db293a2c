package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/todokeeper/internal/client/models"
)

func (a *App) List(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid page %q", args[0])
		}
		page = p
	}

	p, err := a.api.ListTodos(ctx, page, perPage)
	if err != nil {
		return err
	}

	if len(p.Items) == 0 {
		fmt.Fprintln(a.out, "No todos")
	}
	for _, t := range p.Items {
		fmt.Fprintln(a.out, t)
	}
	fmt.Fprintf(a.out, "page %d of %d, %d total\n", p.Page, p.Pages, p.Total)
	return nil
}

func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	desc, err := GetSimpleText(a.reader, "Enter description (optional)", a.out)
	if err != nil {
		return err
	}
	priority, err := GetSimpleText(a.reader, "Enter priority: low, medium or high (optional)", a.out)
	if err != nil {
		return err
	}
	due, err := GetSimpleText(a.reader, "Enter due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}

	in := models.TodoInput{Title: title, Priority: priority}
	if desc != "" {
		in.Description = &desc
	}
	if in.DueDate, err = ParseDueDate(due); err != nil {
		return err
	}

	t, err := a.api.CreateTodo(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created todo #%d\n", t.ID)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := GetID(a.reader, args, a.out)
	if err != nil {
		return err
	}
	t, err := a.api.GetTodo(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, t.Details())
	return nil
}

func (a *App) Done(ctx context.Context, args []string) error {
	id, err := GetID(a.reader, args, a.out)
	if err != nil {
		return err
	}
	t, err := a.api.ToggleTodo(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, t)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := GetID(a.reader, args, a.out)
	if err != nil {
		return err
	}
	if err := a.api.DeleteTodo(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted todo #%d\n", id)
	return nil
}
