package repository

import (
	"context"

	"github.com/chiehw/todo-api/internal/domain"

	"gorm.io/gorm"
)

// TodoRepository defines the interface for todo data operations
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id uint) (*domain.Todo, error)
	// FindByUserID returns one page of the owner's todos in insertion (id)
	// order, plus the owner's total count. The owner filter lives in the
	// query itself so callers cannot leak another user's records.
	FindByUserID(ctx context.Context, userID uint, page, pageSize int) ([]domain.Todo, int64, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id uint) error
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create adds a new todo to the database. GORM populates ID and the
// timestamps on the passed struct.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).Create(todo)
	return result.Error
}

// FindByID retrieves a todo by its primary key. Returns
// gorm.ErrRecordNotFound when no row matches.
func (r *gormTodoRepository) FindByID(ctx context.Context, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	result := r.db.WithContext(ctx).First(&todo, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &todo, nil
}

// FindByUserID retrieves one page of todos owned by userID.
func (r *gormTodoRepository) FindByUserID(ctx context.Context, userID uint, page, pageSize int) ([]domain.Todo, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var todos []domain.Todo
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&todos).Error
	if err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

// Update saves the full record. Concurrent updates to the same row are
// last-write-wins; there is no optimistic-concurrency token.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).Save(todo)
	return result.Error
}

// Delete permanently removes a todo. The model has no DeletedAt column, so
// this is a hard delete. A missing row reports gorm.ErrRecordNotFound so a
// repeated delete is observably a not-found, never a second success.
func (r *gormTodoRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
