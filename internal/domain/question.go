package domain

import (
	"context"
	"time"
)

// QuestionRepository defines the interface for question-related operations
type QuestionRepository interface {
	// List retrieves a page of questions ordered by id
	List(ctx context.Context, limit, offset int) ([]*Question, error)

	// ListAll retrieves every question ordered by id
	ListAll(ctx context.Context) ([]*Question, error)

	// ListByCategory retrieves all questions of a category
	ListByCategory(ctx context.Context, categoryID int) ([]*Question, error)

	// Count returns the total number of questions
	Count(ctx context.Context) (int, error)

	// Search retrieves questions whose text contains term, case-insensitively
	Search(ctx context.Context, term string) ([]*Question, error)

	// GetByID retrieves a question by its ID
	GetByID(ctx context.Context, id int) (*Question, error)

	// Create creates a new question
	Create(ctx context.Context, question *Question) error

	// BulkCreate creates multiple questions in a single transaction
	BulkCreate(ctx context.Context, questions []*Question) error

	// Delete deletes a question
	Delete(ctx context.Context, id int) error
}

// Question represents a trivia question
type Question struct {
	ID         int       `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   int       `json:"category"`
	Difficulty int       `json:"difficulty"`
	CreatedAt  time.Time `json:"-"`
}
