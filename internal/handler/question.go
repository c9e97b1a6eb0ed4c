package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// QuestionHandler handles question-related HTTP requests
type QuestionHandler struct {
	trivia *service.TriviaService
	logger *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(trivia *service.TriviaService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		trivia: trivia,
		logger: logger,
	}
}

// QuestionListResponse is one page of questions with the category mapping
type QuestionListResponse struct {
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	CurrentCategory *domain.Category   `json:"current_category"`
	Categories      domain.CategoryMap `json:"categories"`
}

// QuestionsResponse lists questions matching a search or category
type QuestionsResponse struct {
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	CurrentCategory *domain.Category   `json:"current_category"`
}

// CreateQuestionRequest represents the request to add a question. All four keys
// must be present; their values are stored as given.
type CreateQuestionRequest struct {
	Question   *string  `json:"question" validate:"required"`
	Answer     *string  `json:"answer" validate:"required"`
	Category   *FlexInt `json:"category" validate:"required"`
	Difficulty *FlexInt `json:"difficulty" validate:"required"`
}

// SearchRequest represents a question search
type SearchRequest struct {
	SearchTerm *string `json:"searchTerm" validate:"required"`
}

// GetQuestions godoc
// @Summary List questions
// @Description Paginated question listing with the total count and all categories
// @Tags questions
// @Produce json
// @Param limit query int false "Page size"
// @Param page query int false "Page number, starting at 1"
// @Success 200 {object} QuestionListResponse
// @Router /questions [get]
func (h *QuestionHandler) GetQuestions(c echo.Context) error {
	limit := queryInt(c, "limit", h.trivia.PerPage())
	page := queryInt(c, "page", 1)

	result, err := h.trivia.ListQuestions(c.Request().Context(), page, limit)
	if err != nil {
		return failure(c, h.logger, err, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, QuestionListResponse{
		Questions:      result.Questions,
		TotalQuestions: result.Total,
		Categories:     result.Categories,
	})
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	if err := h.trivia.DeleteQuestion(c.Request().Context(), id); err != nil {
		return failure(c, h.logger, err, http.StatusNotFound)
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Question %d has been deleted.", id),
	})
}

// CreateQuestion godoc
// @Summary Add a question
// @Tags questions
// @Accept json
// @Produce json
// @Param question body CreateQuestionRequest true "Question"
// @Success 200 {object} MessageResponse
// @Failure 422 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c echo.Context) error {
	var req CreateQuestionRequest
	if err := bindRequest(c, &req); err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	_, err := h.trivia.CreateQuestion(c.Request().Context(), service.NewQuestion{
		Question:   *req.Question,
		Answer:     *req.Answer,
		Category:   int(*req.Category),
		Difficulty: int(*req.Difficulty),
	})
	if err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "A new question has been added.",
	})
}

// SearchQuestions godoc
// @Summary Search questions
// @Description Case-insensitive substring match on the question text
// @Tags questions
// @Accept json
// @Produce json
// @Param search body SearchRequest true "Search term"
// @Success 200 {object} QuestionsResponse
// @Failure 422 {object} ErrorResponse
// @Router /questions/search [post]
func (h *QuestionHandler) SearchQuestions(c echo.Context) error {
	var req SearchRequest
	if err := bindRequest(c, &req); err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	questions, err := h.trivia.SearchQuestions(c.Request().Context(), *req.SearchTerm)
	if err != nil {
		return failure(c, h.logger, err, http.StatusUnprocessableEntity)
	}

	return c.JSON(http.StatusOK, QuestionsResponse{
		Questions:      questions,
		TotalQuestions: len(questions),
	})
}
