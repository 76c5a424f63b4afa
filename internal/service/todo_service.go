package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/chiehw/todo-api/internal/domain"
	"github.com/chiehw/todo-api/internal/repository"

	"gorm.io/gorm"
)

// PageSize is the fixed number of todos per list page.
const PageSize = 10

// --- Input/Output Structs (DTOs) ---

// CreateTodoRequest holds the data needed to create a new todo. The owner is
// never part of the payload; it comes from the authenticated identity.
type CreateTodoRequest struct {
	Title string

	// Field type mismatches recorded while decoding, reported by Validate
	// so they carry the same field-error shape as every other rule.
	fieldErrors map[string][]string
}

// UnmarshalJSON decodes the payload field by field. Unknown fields still
// fail the decode, but a wrongly-typed title is deferred to Validate.
func (r *CreateTodoRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title json.RawMessage `json:"title"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*r = CreateTodoRequest{}
	title, msgs := stringField(raw.Title, "title")
	if msgs != nil {
		r.fieldErrors = map[string][]string{"title": msgs}
		return nil
	}
	if title != nil {
		r.Title = *title
	}
	return nil
}

// Validate checks the create payload and returns a field-keyed error map on
// failure.
func (r CreateTodoRequest) Validate() *domain.ValidationError {
	if len(r.fieldErrors) > 0 {
		return &domain.ValidationError{Fields: r.fieldErrors}
	}
	if msgs := validateTitle(r.Title); len(msgs) > 0 {
		return domain.NewValidationError("title", msgs...)
	}
	return nil
}

// UpdateTodoRequest holds the data for updating an existing todo.
// Using pointers allows distinguishing between a field being omitted
// vs. being set to its zero value (e.g., setting Completed to false).
type UpdateTodoRequest struct {
	Title     *string
	Completed *bool

	fieldErrors map[string][]string
}

// UnmarshalJSON decodes the payload field by field. A wrongly-typed title or
// completed (e.g. "completed":"yes") does not fail the decode; it is
// reported by Validate, so the existence and ownership checks still run
// first.
func (r *UpdateTodoRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title     json.RawMessage `json:"title"`
		Completed json.RawMessage `json:"completed"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*r = UpdateTodoRequest{}
	errs := make(map[string][]string)
	title, msgs := stringField(raw.Title, "title")
	if msgs != nil {
		errs["title"] = msgs
	} else {
		r.Title = title
	}
	completed, msgs := boolField(raw.Completed, "completed")
	if msgs != nil {
		errs["completed"] = msgs
	} else {
		r.Completed = completed
	}
	if len(errs) > 0 {
		r.fieldErrors = errs
	}
	return nil
}

// Validate checks the update payload. Only supplied fields are validated; a
// supplied title goes through the same rule as create, so an explicit empty
// string fails.
func (r UpdateTodoRequest) Validate() *domain.ValidationError {
	errs := make(map[string][]string)
	for field, msgs := range r.fieldErrors {
		errs[field] = msgs
	}
	if r.Title != nil {
		if msgs := validateTitle(*r.Title); len(msgs) > 0 {
			errs["title"] = msgs
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Fields: errs}
	}
	return nil
}

// TodoResponse is the standard representation of a Todo returned by the service.
type TodoResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PaginationMeta describes one page of a list response.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// TodoListResponse is a paginated page of todos.
type TodoListResponse struct {
	Data []TodoResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// --- Service Interface ---

// TodoService sits between the transport surface and the store. It owns
// validation and the ownership checks; handlers only translate its errors
// into status codes. Every operation takes the requester's identity as an
// explicit parameter.
type TodoService interface {
	// ListTodos returns one page of the owner's todos. It never returns
	// another user's records.
	ListTodos(ctx context.Context, ownerID uint, page int) (*TodoListResponse, error)

	// CreateTodo validates the payload and persists a new todo owned by
	// ownerID with Completed=false.
	CreateTodo(ctx context.Context, ownerID uint, req CreateTodoRequest) (*TodoResponse, error)

	// UpdateTodo applies the supplied fields to an existing todo. Checks run
	// in order: existence (domain.ErrNotFound), ownership
	// (domain.ErrForbidden), then validation (*domain.ValidationError).
	UpdateTodo(ctx context.Context, requesterID, id uint, req UpdateTodoRequest) (*TodoResponse, error)

	// DeleteTodo permanently removes a todo after the same existence and
	// ownership checks as UpdateTodo.
	DeleteTodo(ctx context.Context, requesterID, id uint) error
}

// --- Service Implementation ---

type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{
		repo: repo,
	}
}

func (s *todoService) ListTodos(ctx context.Context, ownerID uint, page int) (*TodoListResponse, error) {
	if page < 1 {
		page = 1
	}

	todos, total, err := s.repo.FindByUserID(ctx, ownerID, page, PageSize)
	if err != nil {
		log.Printf("Error listing todos for user %d: %v", ownerID, err)
		return nil, errors.New("failed to retrieve todo items")
	}

	lastPage := int((total + PageSize - 1) / PageSize)
	if lastPage < 1 {
		lastPage = 1
	}

	data := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		data = append(data, toResponse(&todos[i]))
	}

	return &TodoListResponse{
		Data: data,
		Meta: PaginationMeta{
			CurrentPage: page,
			PerPage:     PageSize,
			Total:       total,
			LastPage:    lastPage,
		},
	}, nil
}

func (s *todoService) CreateTodo(ctx context.Context, ownerID uint, req CreateTodoRequest) (*TodoResponse, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	newTodo := &domain.Todo{
		Title:     req.Title,
		Completed: false,
		UserID:    ownerID,
	}

	if err := s.repo.Create(ctx, newTodo); err != nil {
		log.Printf("Error creating todo for user %d: %v", ownerID, err)
		return nil, errors.New("failed to create todo item")
	}

	resp := toResponse(newTodo)
	return &resp, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, requesterID, id uint, req UpdateTodoRequest) (*TodoResponse, error) {
	// Existence precedes ownership precedes validation: a missing id is
	// always a not-found, and a non-owner is always forbidden even with an
	// invalid payload.
	existing, err := s.loadTodo(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanMutate(requesterID, existing) {
		return nil, domain.ErrForbidden
	}

	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Completed != nil {
		existing.Completed = *req.Completed
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		log.Printf("Error updating todo %d: %v", id, err)
		return nil, errors.New("failed to update todo item")
	}

	resp := toResponse(existing)
	return &resp, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, requesterID, id uint) error {
	existing, err := s.loadTodo(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanMutate(requesterID, existing) {
		return domain.ErrForbidden
	}

	err = s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted between the load and the delete. Same observable
			// outcome as deleting twice.
			return domain.ErrNotFound
		}
		log.Printf("Error deleting todo %d: %v", id, err)
		return errors.New("failed to delete todo item")
	}

	return nil
}

// loadTodo fetches a todo and translates the store's not-found into the
// domain sentinel.
func (s *todoService) loadTodo(ctx context.Context, id uint) (*domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		log.Printf("Error fetching todo %d: %v", id, err)
		return nil, errors.New("failed to retrieve todo item")
	}
	return todo, nil
}

func toResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        todo.ID,
		UserID:    todo.UserID,
		Title:     todo.Title,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt.Format(time.RFC3339),
		UpdatedAt: todo.UpdatedAt.Format(time.RFC3339),
	}
}
