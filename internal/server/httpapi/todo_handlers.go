package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (h *handler) listTodos(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	page, err := h.todos.List(r.Context(), userID, parseListQuery(r))
	if err != nil {
		h.respondWithServiceError(w, r, err, "")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newTodoListResponse(page))
}

func (h *handler) createTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req todoCreateRequest
	if details := h.decodeAndValidate(r, &req); details != nil {
		h.respondWithError(w, http.StatusBadRequest, codeValidation, "Validation failed", details)
		return
	}

	todo, err := h.todos.Create(r.Context(), userID, req.toModel())
	if err != nil {
		h.respondWithServiceError(w, r, err, "Todo")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, newTodoResponse(todo))
}

func (h *handler) getTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.todos.Get(r.Context(), id, userID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "Todo")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newTodoResponse(todo))
}

// updateTodo serves both PUT and PATCH; only the fields present in the body
// are changed.
func (h *handler) updateTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	var req todoUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, codeValidation, "Validation failed", map[string]string{"body": err.Error()})
		return
	}
	if details := req.validate(h.validate); details != nil {
		h.respondWithError(w, http.StatusBadRequest, codeValidation, "Validation failed", details)
		return
	}

	todo, err := h.todos.Update(r.Context(), id, userID, req.toModel())
	if err != nil {
		h.respondWithServiceError(w, r, err, "Todo")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newTodoResponse(todo))
}

func (h *handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	deleted, err := h.todos.Delete(r.Context(), id, userID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "Todo")
		return
	}
	if !deleted {
		h.respondWithError(w, http.StatusNotFound, codeNotFound, "Todo not found", nil)
		return
	}

	h.respondWithJSON(w, http.StatusOK, messageResponse{Message: "Todo deleted successfully"})
}

func (h *handler) toggleTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.todos.Toggle(r.Context(), id, userID)
	if err != nil {
		h.respondWithServiceError(w, r, err, "Todo")
		return
	}

	h.respondWithJSON(w, http.StatusOK, newTodoResponse(todo))
}

// todoID parses the {id} path segment. Anything that isn't an integer can't
// name a todo, so it is answered with 404.
func (h *handler) todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, codeNotFound, "Todo not found", nil)
		return 0, false
	}
	return id, true
}

// parseListQuery reads paging, filter and sort parameters. Unparseable
// numbers fall back to their defaults; range clamping happens in the service.
func parseListQuery(r *http.Request) models.ListQuery {
	values := r.URL.Query()

	q := models.ListQuery{
		Page:    models.DefaultPage,
		PerPage: models.DefaultPerPage,
		SortBy:  values.Get("sort_by"),
		Order:   values.Get("order"),
	}
	if v, err := strconv.Atoi(values.Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(values.Get("per_page")); err == nil {
		q.PerPage = v
	}
	if values.Has("completed") {
		switch strings.ToLower(values.Get("completed")) {
		case "true", "1", "yes":
			q.Completed = ptr(true)
		default:
			q.Completed = ptr(false)
		}
	}

	return q
}

func ptr[T any](v T) *T {
	return &v
}
