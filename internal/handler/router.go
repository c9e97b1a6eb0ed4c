package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/service"
	"github.com/zizouhuweidi/trivia/internal/websocket"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RateLimiter counts requests per client and reports when the limit is exceeded
type RateLimiter interface {
	RateLimit(ctx context.Context, client string, limit int, window time.Duration) (bool, error)
}

// Deps holds everything the router needs. Hub, Limiter and DB are optional.
type Deps struct {
	Trivia    *service.TriviaService
	Hub       *websocket.Hub
	Limiter   RateLimiter
	RateLimit config.RateLimit
	DB        Pinger
	Logger    *zap.Logger
}

// NewRouter builds the echo instance with middleware and all trivia routes
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}))
	if deps.Limiter != nil && deps.RateLimit.Requests > 0 {
		e.Use(rateLimit(deps.Limiter, deps.RateLimit, deps.Logger))
	}

	questions := NewQuestionHandler(deps.Trivia, deps.Logger)
	categories := NewCategoryHandler(deps.Trivia, deps.Logger)
	quiz := NewQuizHandler(deps.Trivia, deps.Logger)

	// Category routes
	e.GET("/categories", categories.GetCategories)
	e.GET("/categories/:id/questions", categories.GetQuestionsByCategory)

	// Question routes
	e.GET("/questions", questions.GetQuestions)
	e.POST("/questions", questions.CreateQuestion)
	e.DELETE("/questions/:id", questions.DeleteQuestion)
	e.POST("/questions/search", questions.SearchQuestions)

	// Quiz routes
	e.POST("/quizzes", quiz.PlayQuiz)
	e.POST("/quizzes/answer", quiz.CheckAnswer)

	if deps.Hub != nil {
		e.GET("/ws", NewWebSocketHandler(deps.Hub).HandleWebSocket)
	}

	// Health check endpoint
	e.GET("/health", healthCheck(deps.DB))

	return e
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

func rateLimit(limiter RateLimiter, cfg config.RateLimit, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Path() {
			case "/health", "/ws":
				return next(c)
			}

			exceeded, err := limiter.RateLimit(c.Request().Context(), c.RealIP(), cfg.Requests, cfg.Window)
			if err != nil {
				// fail open
				logger.Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if exceeded {
				return echo.NewHTTPError(http.StatusTooManyRequests)
			}
			return next(c)
		}
	}
}

func healthCheck(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
