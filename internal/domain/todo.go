package domain

import "time"

// Todo is the persisted todo item. The model deliberately does not embed
// gorm.Model: there is no DeletedAt column, so deletes are permanent.
type Todo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanMutate is the ownership policy: only the owner may update or delete a
// todo. Every mutation path goes through this check rather than comparing
// ids inline per handler.
func CanMutate(requesterID uint, todo *Todo) bool {
	return todo != nil && requesterID == todo.UserID
}
