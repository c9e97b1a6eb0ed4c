// Package memory is an in-process implementation of the domain repositories. It
// mirrors the PostgreSQL semantics closely enough to drive service and handler tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// Store holds categories and questions shared by the two repositories
type Store struct {
	mu             sync.RWMutex
	categories     []*domain.Category
	questions      []*domain.Question
	nextCategoryID int
	nextQuestionID int

	// Err, when set, is returned by every repository call
	Err error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{nextCategoryID: 1, nextQuestionID: 1}
}

// Questions returns the question repository view of the store
func (s *Store) Questions() *Questions {
	return &Questions{store: s}
}

// Categories returns the category repository view of the store
func (s *Store) Categories() *Categories {
	return &Categories{store: s}
}

// Fail makes every later call return err. Pass nil to recover.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

func (s *Store) category(id int) *domain.Category {
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func clone(q *domain.Question) *domain.Question {
	c := *q
	return &c
}

// Categories implements domain.CategoryRepository
type Categories struct {
	store *Store
}

// List retrieves all categories ordered by id
func (r *Categories) List(ctx context.Context) ([]*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}

	out := make([]*domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

// GetByID retrieves a category by ID
func (r *Categories) GetByID(ctx context.Context, id int) (*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}

	c := r.store.category(id)
	if c == nil {
		return nil, domain.ErrCategoryNotFound
	}
	cc := *c
	return &cc, nil
}

// Create creates a new category
func (r *Categories) Create(ctx context.Context, category *domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.Err != nil {
		return r.store.Err
	}

	category.ID = r.store.nextCategoryID
	r.store.nextCategoryID++
	cc := *category
	r.store.categories = append(r.store.categories, &cc)
	return nil
}

// Questions implements domain.QuestionRepository
type Questions struct {
	store *Store
}

func (r *Questions) filter(keep func(*domain.Question) bool) []*domain.Question {
	out := make([]*domain.Question, 0)
	for _, q := range r.store.questions {
		if keep(q) {
			out = append(out, clone(q))
		}
	}
	return out
}

// List retrieves a page of questions ordered by id
func (r *Questions) List(ctx context.Context, limit, offset int) ([]*domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}

	all := r.filter(func(*domain.Question) bool { return true })
	if offset >= len(all) {
		return []*domain.Question{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// ListAll retrieves every question ordered by id
func (r *Questions) ListAll(ctx context.Context) ([]*domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}
	return r.filter(func(*domain.Question) bool { return true }), nil
}

// ListByCategory retrieves all questions of a category
func (r *Questions) ListByCategory(ctx context.Context, categoryID int) ([]*domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}
	return r.filter(func(q *domain.Question) bool { return q.Category == categoryID }), nil
}

// Count returns the total number of questions
func (r *Questions) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return 0, r.store.Err
	}
	return len(r.store.questions), nil
}

// Search retrieves questions whose text contains term, case-insensitively
func (r *Questions) Search(ctx context.Context, term string) ([]*domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}

	needle := strings.ToLower(term)
	return r.filter(func(q *domain.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), needle)
	}), nil
}

// GetByID retrieves a question by its ID
func (r *Questions) GetByID(ctx context.Context, id int) (*domain.Question, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.Err != nil {
		return nil, r.store.Err
	}

	for _, q := range r.store.questions {
		if q.ID == id {
			return clone(q), nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

// Create creates a new question
func (r *Questions) Create(ctx context.Context, question *domain.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.Err != nil {
		return r.store.Err
	}
	return r.insert(question)
}

// BulkCreate creates multiple questions atomically
func (r *Questions) BulkCreate(ctx context.Context, questions []*domain.Question) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.Err != nil {
		return r.store.Err
	}

	for _, q := range questions {
		if r.store.category(q.Category) == nil {
			return fmt.Errorf("failed to create question: %w: unknown category %d", domain.ErrInvalidInput, q.Category)
		}
	}
	for _, q := range questions {
		if err := r.insert(q); err != nil {
			return err
		}
	}
	return nil
}

func (r *Questions) insert(question *domain.Question) error {
	if r.store.category(question.Category) == nil {
		return fmt.Errorf("failed to create question: %w: unknown category %d", domain.ErrInvalidInput, question.Category)
	}

	question.ID = r.store.nextQuestionID
	question.CreatedAt = time.Now().UTC()
	r.store.nextQuestionID++
	r.store.questions = append(r.store.questions, clone(question))
	return nil
}

// Delete deletes a question
func (r *Questions) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.Err != nil {
		return r.store.Err
	}

	i := slices.IndexFunc(r.store.questions, func(q *domain.Question) bool { return q.ID == id })
	if i < 0 {
		return domain.ErrQuestionNotFound
	}
	r.store.questions = slices.Delete(r.store.questions, i, i+1)
	return nil
}
