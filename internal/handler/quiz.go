package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// QuizHandler handles quiz play
type QuizHandler struct {
	trivia *service.TriviaService
	logger *zap.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(trivia *service.TriviaService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		trivia: trivia,
		logger: logger,
	}
}

// QuizCategory selects the category to play; 0 or an unknown id plays all questions
type QuizCategory struct {
	ID *FlexInt `json:"id" validate:"required"`
}

// QuizRequest carries the questions already played and the chosen category
type QuizRequest struct {
	PreviousQuestions []FlexInt     `json:"previous_questions" validate:"required"`
	QuizCategory      *QuizCategory `json:"quiz_category" validate:"required"`
}

// QuizResponse holds the next question, or null when the quiz is over
type QuizResponse struct {
	Question *domain.Question `json:"question"`
}

// AnswerRequest represents an answer to check
type AnswerRequest struct {
	QuestionID FlexInt `json:"question_id" validate:"required,gt=0"`
	Answer     *string `json:"answer" validate:"required"`
}

// AnswerResponse reports whether the answer was accepted
type AnswerResponse struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
}

// PlayQuiz draws the next unseen question
func (h *QuizHandler) PlayQuiz(c echo.Context) error {
	var req QuizRequest
	if err := bindRequest(c, &req); err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	previous := make([]int, 0, len(req.PreviousQuestions))
	for _, id := range req.PreviousQuestions {
		previous = append(previous, int(id))
	}

	question, err := h.trivia.NextQuizQuestion(c.Request().Context(), int(*req.QuizCategory.ID), previous)
	if err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	return c.JSON(http.StatusOK, QuizResponse{Question: question})
}

// CheckAnswer compares a player's answer with the stored one
func (h *QuizHandler) CheckAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := bindRequest(c, &req); err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	result, err := h.trivia.CheckAnswer(c.Request().Context(), int(req.QuestionID), *req.Answer)
	if err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	return c.JSON(http.StatusOK, AnswerResponse{
		Correct: result.Correct,
		Answer:  result.Answer,
	})
}
