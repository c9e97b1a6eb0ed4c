package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/validation"
)

// Picker draws uniformly from the questions a player has not seen yet
type Picker struct {
	mu   sync.Mutex
	intn func(n int) int
}

// NewPicker creates a picker backed by the global random source
func NewPicker() *Picker {
	return &Picker{intn: rand.IntN}
}

// NewSeededPicker creates a deterministic picker
func NewSeededPicker(seed uint64) *Picker {
	r := rand.New(rand.NewPCG(seed, seed))
	return &Picker{intn: r.IntN}
}

// Pick returns a random candidate whose id is not in seen, or nil when none is left
func (p *Picker) Pick(candidates []*domain.Question, seen []int) *domain.Question {
	excluded := make(map[int]struct{}, len(seen))
	for _, id := range seen {
		excluded[id] = struct{}{}
	}

	remaining := make([]*domain.Question, 0, len(candidates))
	for _, q := range candidates {
		if _, ok := excluded[q.ID]; !ok {
			remaining = append(remaining, q)
		}
	}

	if len(remaining) == 0 {
		return nil
	}

	p.mu.Lock()
	i := p.intn(len(remaining))
	p.mu.Unlock()

	return remaining[i]
}

// NextQuizQuestion draws a question the player has not seen. Questions come from the
// category when it exists and from the whole pool otherwise. A nil question with a
// nil error means every candidate has been played.
func (s *TriviaService) NextQuizQuestion(ctx context.Context, categoryID int, previous []int) (*domain.Question, error) {
	candidates, err := s.quizCandidates(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return s.picker.Pick(candidates, previous), nil
}

func (s *TriviaService) quizCandidates(ctx context.Context, categoryID int) ([]*domain.Question, error) {
	// 0 is the "All" pseudo category sent by the quiz UI
	if categoryID > 0 {
		category, err := s.categories.GetByID(ctx, categoryID)
		switch {
		case err == nil:
			return s.questions.ListByCategory(ctx, category.ID)
		case !errors.Is(err, domain.ErrCategoryNotFound):
			return nil, err
		}
	}

	return s.questions.ListAll(ctx)
}

// AnswerResult is the outcome of checking a quiz answer
type AnswerResult struct {
	Correct bool
	Answer  string
}

// CheckAnswer compares a submitted answer with the stored one
func (s *TriviaService) CheckAnswer(ctx context.Context, questionID int, answer string) (*AnswerResult, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		Correct: validation.IsSimilarAnswer(answer, question.Answer),
		Answer:  question.Answer,
	}, nil
}
