package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.UserName, IsActive: u.IsActive}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type todoCreateRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Priority    models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time      `json:"due_date"`
}

func (req todoCreateRequest) toModel() models.TodoCreate {
	return models.TodoCreate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
}

// todoUpdateRequest distinguishes absent fields from explicit nulls.
type todoUpdateRequest struct {
	Title       models.Optional[string]          `json:"title"`
	Description models.Optional[*string]         `json:"description"`
	Completed   models.Optional[bool]            `json:"completed"`
	Priority    models.Optional[models.Priority] `json:"priority"`
	DueDate     models.Optional[*time.Time]      `json:"due_date"`
}

func (req todoUpdateRequest) toModel() models.TodoPatch {
	return models.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
}

// validate checks the fields that are present. Title, completed and priority
// can't be cleared, so null is rejected for them.
func (req todoUpdateRequest) validate(v *validator.Validate) map[string]string {
	details := map[string]string{}

	if req.Title.Set {
		if req.Title.Null {
			details["title"] = "may not be null"
		} else if err := v.Var(req.Title.Value, "min=1,max=200"); err != nil {
			details["title"] = describe(err.(validator.ValidationErrors)[0])
		}
	}
	if req.Description.Set && req.Description.Value != nil {
		if err := v.Var(*req.Description.Value, "max=1000"); err != nil {
			details["description"] = describe(err.(validator.ValidationErrors)[0])
		}
	}
	if req.Completed.Set && req.Completed.Null {
		details["completed"] = "may not be null"
	}
	if req.Priority.Set {
		if req.Priority.Null {
			details["priority"] = "may not be null"
		} else if err := v.Var(string(req.Priority.Value), "oneof=low medium high"); err != nil {
			details["priority"] = describe(err.(validator.ValidationErrors)[0])
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

type todoResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Completed   bool            `json:"completed"`
	Priority    models.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UserID      int64           `json:"user_id"`
}

func newTodoResponse(t *models.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		DueDate:     utcPtr(t.DueDate),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		UserID:      t.UserID,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

type todoListResponse struct {
	Items   []todoResponse `json:"items"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

func newTodoListResponse(p *models.TodoPage) todoListResponse {
	items := make([]todoResponse, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, newTodoResponse(t))
	}
	return todoListResponse{Items: items, Total: p.Total, Page: p.Page, PerPage: p.PerPage, Pages: p.Pages}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// A non-nil result is the details map of a validation_error response.
func (h *handler) decodeAndValidate(r *http.Request, dst any) map[string]string {
	if err := decodeJSON(r, dst); err != nil {
		return map[string]string{"body": err.Error()}
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return map[string]string{"body": err.Error()}
		}
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describe(fe)
		}
		return details
	}
	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fmt.Errorf("%s has the wrong type", typeErr.Field)
		}
		return errors.New("request body is not valid JSON")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
