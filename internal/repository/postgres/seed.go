package postgres

import (
	"context"
	"fmt"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// SeedQuestion is a question whose category is given by type label
type SeedQuestion struct {
	Question   string
	Answer     string
	Category   string
	Difficulty int
}

// Seed loads categories and questions in one transaction when the categories table
// is empty. It reports whether anything was inserted.
func Seed(ctx context.Context, db DBTX, categories []string, questions []SeedQuestion) (bool, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	categoryRepo := NewCategoryRepository(tx)
	questionRepo := NewQuestionRepository(tx)

	existing, err := categoryRepo.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	ids := make(map[string]int, len(categories))
	for _, name := range categories {
		category := &domain.Category{Type: name}
		if err := categoryRepo.Create(ctx, category); err != nil {
			return false, err
		}
		ids[name] = category.ID
	}

	rows := make([]*domain.Question, 0, len(questions))
	for _, q := range questions {
		id, ok := ids[q.Category]
		if !ok {
			return false, fmt.Errorf("seed question %q: %w: unknown category %q", q.Question, domain.ErrInvalidInput, q.Category)
		}
		rows = append(rows, &domain.Question{
			Question:   q.Question,
			Answer:     q.Answer,
			Category:   id,
			Difficulty: q.Difficulty,
		})
	}

	if err := questionRepo.BulkCreate(ctx, rows); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}
