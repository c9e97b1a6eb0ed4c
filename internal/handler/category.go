package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	trivia *service.TriviaService
	logger *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(trivia *service.TriviaService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		trivia: trivia,
		logger: logger,
	}
}

// CategoriesResponse maps category ids to their type
type CategoriesResponse struct {
	Categories domain.CategoryMap `json:"categories"`
}

// GetCategories returns every category
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.trivia.Categories(c.Request().Context())
	if err != nil {
		return failure(c, h.logger, err, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
}

// GetQuestionsByCategory returns all questions of one category
func (h *CategoryHandler) GetQuestionsByCategory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	category, questions, err := h.trivia.QuestionsByCategory(c.Request().Context(), id)
	if err != nil {
		return failure(c, h.logger, err, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, QuestionsResponse{
		Questions:       questions,
		TotalQuestions:  len(questions),
		CurrentCategory: category,
	})
}
