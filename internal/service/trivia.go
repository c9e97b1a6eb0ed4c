package service

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/websocket"
)

const defaultQuestionsPerPage = 10

// CategoryCache stores the category mapping between requests
type CategoryCache interface {
	Categories(ctx context.Context) (domain.CategoryMap, bool, error)
	StoreCategories(ctx context.Context, categories domain.CategoryMap) error
}

// Notifier pushes question events to connected clients
type Notifier interface {
	Broadcast(eventType string, payload any) error
}

// Options configures optional collaborators of TriviaService
type Options struct {
	QuestionsPerPage int
	Cache            CategoryCache
	Notifier         Notifier
}

// TriviaService implements the question, category and quiz operations
type TriviaService struct {
	questions  domain.QuestionRepository
	categories domain.CategoryRepository
	cache      CategoryCache
	notifier   Notifier
	picker     *Picker
	perPage    int
	logger     *zap.Logger
}

// NewTriviaService creates a new trivia service
func NewTriviaService(questions domain.QuestionRepository, categories domain.CategoryRepository, logger *zap.Logger, opts Options) *TriviaService {
	perPage := opts.QuestionsPerPage
	if perPage <= 0 {
		perPage = defaultQuestionsPerPage
	}

	return &TriviaService{
		questions:  questions,
		categories: categories,
		cache:      opts.Cache,
		notifier:   opts.Notifier,
		picker:     NewPicker(),
		perPage:    perPage,
		logger:     logger,
	}
}

// QuestionPage is one page of the question listing
type QuestionPage struct {
	Questions  []*domain.Question
	Total      int
	Categories domain.CategoryMap
}

// NewQuestion holds the fields of a question to be added
type NewQuestion struct {
	Question   string
	Answer     string
	Category   int
	Difficulty int
}

// Categories returns the id -> type mapping of all categories
func (s *TriviaService) Categories(ctx context.Context) (domain.CategoryMap, error) {
	if s.cache != nil {
		categories, ok, err := s.cache.Categories(ctx)
		if err != nil {
			s.logger.Warn("category cache read failed", zap.Error(err))
		} else if ok {
			return categories, nil
		}
	}

	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	categories := domain.NewCategoryMap(list)

	if s.cache != nil {
		if err := s.cache.StoreCategories(ctx, categories); err != nil {
			s.logger.Warn("category cache write failed", zap.Error(err))
		}
	}

	return categories, nil
}

// ListQuestions returns the questions of a page together with the total count and
// the category mapping. A negative limit selects the default page size and pages
// start at 1.
func (s *TriviaService) ListQuestions(ctx context.Context, page, limit int) (*QuestionPage, error) {
	if limit < 0 {
		limit = s.perPage
	}
	if page < 1 {
		page = 1
	}

	// an offset past math.MaxInt is beyond any data
	questions := make([]*domain.Question, 0)
	if limit == 0 || page-1 <= math.MaxInt/limit {
		var err error
		questions, err = s.questions.List(ctx, limit, (page-1)*limit)
		if err != nil {
			return nil, err
		}
	}

	total, err := s.questions.Count(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	return &QuestionPage{
		Questions:  questions,
		Total:      total,
		Categories: categories,
	}, nil
}

// PerPage returns the default page size
func (s *TriviaService) PerPage() int {
	return s.perPage
}

// DeleteQuestion removes a question by id
func (s *TriviaService) DeleteQuestion(ctx context.Context, id int) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(websocket.EventQuestionDeleted, map[string]int{"id": id})
	return nil
}

// CreateQuestion stores a new question. Text and difficulty are kept as given;
// the category must exist.
func (s *TriviaService) CreateQuestion(ctx context.Context, req NewQuestion) (*domain.Question, error) {
	if req.Category <= 0 {
		return nil, invalid("category %d is not a valid id", req.Category)
	}

	question := &domain.Question{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		Difficulty: req.Difficulty,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}

	s.notify(websocket.EventQuestionCreated, question)
	return question, nil
}

// SearchQuestions returns questions whose text contains term, ignoring case
func (s *TriviaService) SearchQuestions(ctx context.Context, term string) ([]*domain.Question, error) {
	return s.questions.Search(ctx, term)
}

// QuestionsByCategory returns a category and all of its questions
func (s *TriviaService) QuestionsByCategory(ctx context.Context, categoryID int) (*domain.Category, []*domain.Question, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.questions.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("category %d: %w", category.ID, err)
	}

	return category, questions, nil
}

func (s *TriviaService) notify(eventType string, payload any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Broadcast(eventType, payload); err != nil {
		s.logger.Warn("failed to broadcast event", zap.String("event", eventType), zap.Error(err))
	}
}
