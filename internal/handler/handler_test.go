package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/repository/memory"
	"github.com/zizouhuweidi/trivia/internal/service"
)

type testEnv struct {
	e     *echo.Echo
	store *memory.Store
}

// newTestEnv seeds Science (id 1) and Art (id 2) and n questions; odd ids are Science
func newTestEnv(t *testing.T, n int, mutate ...func(*Deps)) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, name := range []string{"Science", "Art"} {
		require.NoError(t, store.Categories().Create(ctx, &domain.Category{Type: name}))
	}
	for i := 1; i <= n; i++ {
		require.NoError(t, store.Questions().Create(ctx, &domain.Question{
			Question:   fmt.Sprintf("What is question %d?", i),
			Answer:     fmt.Sprintf("answer %d", i),
			Category:   1 + (i+1)%2,
			Difficulty: 1 + i%5,
		}))
	}

	logger := zap.NewNop()
	deps := Deps{
		Trivia: service.NewTriviaService(store.Questions(), store.Categories(), logger, service.Options{QuestionsPerPage: 10}),
		Logger: logger,
	}
	for _, m := range mutate {
		m(&deps)
	}
	return &testEnv{e: NewRouter(deps), store: store}
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	assert.Equal(t, status, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, status, body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestGetCategories(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":{"1":"Science","2":"Art"}}`, rec.Body.String())
}

func TestGetQuestions(t *testing.T) {
	env := newTestEnv(t, 23)

	rec := env.do(http.MethodGet, "/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body["questions"], 10)
	assert.EqualValues(t, 23, body["total_questions"])
	assert.Contains(t, body, "current_category")
	assert.Nil(t, body["current_category"])
	assert.Equal(t, map[string]any{"1": "Science", "2": "Art"}, body["categories"])

	first := body["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{
		"id":         float64(1),
		"question":   "What is question 1?",
		"answer":     "answer 1",
		"category":   float64(1),
		"difficulty": float64(2),
	}, first)
}

func TestGetQuestionsPagination(t *testing.T) {
	env := newTestEnv(t, 23)

	tests := []struct {
		query   string
		wantLen int
	}{
		{"?page=3", 3},
		{"?page=4", 0},
		{"?limit=5&page=5", 3},
		{"?limit=25", 23},
		{"?limit=abc", 10},
		{"?page=abc", 10},
		{"?limit=0", 0},
	}

	for _, tt := range tests {
		rec := env.do(http.MethodGet, "/questions"+tt.query, "")
		require.Equal(t, http.StatusOK, rec.Code, tt.query)
		body := decode(t, rec)
		assert.Len(t, body["questions"], tt.wantLen, tt.query)
		assert.EqualValues(t, 23, body["total_questions"], tt.query)
	}
}

func TestGetQuestionsStoreError(t *testing.T) {
	env := newTestEnv(t, 3)
	env.store.Fail(errors.New("db down"))

	assertError(t, env.do(http.MethodGet, "/questions", ""), http.StatusInternalServerError)
}

func TestDeleteQuestion(t *testing.T) {
	env := newTestEnv(t, 3)

	rec := env.do(http.MethodDelete, "/questions/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Question 3 has been deleted.", body["message"])

	_, err := env.store.Questions().GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)

	assertError(t, env.do(http.MethodDelete, "/questions/3", ""), http.StatusNotFound)
	assertError(t, env.do(http.MethodDelete, "/questions/abc", ""), http.StatusNotFound)
}

func TestDeleteQuestionStoreErrorIsNotFound(t *testing.T) {
	env := newTestEnv(t, 3)
	env.store.Fail(errors.New("db down"))

	assertError(t, env.do(http.MethodDelete, "/questions/1", ""), http.StatusNotFound)
}

func TestCreateQuestion(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(http.MethodPost, "/questions", `{"question":"test","answer":"test","category":1,"difficulty":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "A new question has been added.", body["message"])

	rec = env.do(http.MethodGet, "/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	questions := decode(t, rec)["questions"].([]any)
	require.Len(t, questions, 1)
	assert.Equal(t, map[string]any{
		"id":         float64(1),
		"question":   "test",
		"answer":     "test",
		"category":   float64(1),
		"difficulty": float64(1),
	}, questions[0])
}

func TestCreateQuestionCoercesNumbers(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(http.MethodPost, "/questions", `{"question":"q","answer":"a","category":"2","difficulty":3.0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	q, err := env.store.Questions().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Category)
	assert.Equal(t, 3, q.Difficulty)
}

func TestCreateQuestionStoresAnyDifficulty(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(http.MethodPost, "/questions", `{"question":"Q?","answer":"A","category":1,"difficulty":7}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/questions", `{"question":"","answer":"","category":2,"difficulty":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	questions := decode(t, rec)["questions"].([]any)
	require.Len(t, questions, 2)
	assert.Equal(t, map[string]any{
		"id":         float64(1),
		"question":   "Q?",
		"answer":     "A",
		"category":   float64(1),
		"difficulty": float64(7),
	}, questions[0])
	assert.Equal(t, map[string]any{
		"id":         float64(2),
		"question":   "",
		"answer":     "",
		"category":   float64(2),
		"difficulty": float64(0),
	}, questions[1])
}

func TestCreateQuestionUnprocessable(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := map[string]string{
		"empty body":         "",
		"malformed json":     `{"question":`,
		"missing answer":     `{"question":"q","category":1,"difficulty":1}`,
		"missing category":   `{"question":"q","answer":"a","difficulty":1}`,
		"non numeric":        `{"question":"q","answer":"a","category":"science","difficulty":1}`,
		"unknown category":   `{"question":"q","answer":"a","category":99,"difficulty":1}`,
		"missing difficulty": `{"question":"q","answer":"a","category":1}`,
		"null question":      `{"question":null,"answer":"a","category":1,"difficulty":1}`,
		"boolean category":   `{"question":"q","answer":"a","category":true,"difficulty":1}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			assertError(t, env.do(http.MethodPost, "/questions", body), http.StatusUnprocessableEntity)
		})
	}

	total, err := env.store.Questions().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchQuestions(t *testing.T) {
	env := newTestEnv(t, 12)

	lower := env.do(http.MethodPost, "/questions/search", `{"searchTerm":"what"}`)
	upper := env.do(http.MethodPost, "/questions/search", `{"searchTerm":"WHAT"}`)
	require.Equal(t, http.StatusOK, lower.Code)
	require.Equal(t, http.StatusOK, upper.Code)
	assert.JSONEq(t, lower.Body.String(), upper.Body.String())

	body := decode(t, lower)
	assert.Len(t, body["questions"], 12)
	assert.EqualValues(t, 12, body["total_questions"])
	assert.Nil(t, body["current_category"])

	rec := env.do(http.MethodPost, "/questions/search", `{"searchTerm":"question 1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// 1, 10, 11, 12
	assert.EqualValues(t, 4, decode(t, rec)["total_questions"])

	rec = env.do(http.MethodPost, "/questions/search", `{"searchTerm":"zebra"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Empty(t, body["questions"])
	assert.EqualValues(t, 0, body["total_questions"])
}

func TestSearchQuestionsUnprocessable(t *testing.T) {
	env := newTestEnv(t, 2)

	assertError(t, env.do(http.MethodPost, "/questions/search", ""), http.StatusUnprocessableEntity)
	assertError(t, env.do(http.MethodPost, "/questions/search", `{"term":"what"}`), http.StatusUnprocessableEntity)

	env.store.Fail(errors.New("db down"))
	assertError(t, env.do(http.MethodPost, "/questions/search", `{"searchTerm":"what"}`), http.StatusUnprocessableEntity)
}

func TestGetQuestionsByCategory(t *testing.T) {
	env := newTestEnv(t, 5)

	rec := env.do(http.MethodGet, "/categories/1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["questions"], 3)
	assert.EqualValues(t, 3, body["total_questions"])
	assert.Equal(t, map[string]any{"id": float64(1), "type": "Science"}, body["current_category"])

	assertError(t, env.do(http.MethodGet, "/categories/1000/questions", ""), http.StatusNotFound)
	assertError(t, env.do(http.MethodGet, "/categories/science/questions", ""), http.StatusNotFound)
}

func TestPlayQuiz(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	for _, text := range []string{"first", "second"} {
		require.NoError(t, env.store.Questions().Create(ctx, &domain.Question{Question: text, Answer: text, Category: 1, Difficulty: 1}))
	}

	draw := func(previous []int) map[string]any {
		prev, err := json.Marshal(previous)
		require.NoError(t, err)
		rec := env.do(http.MethodPost, "/quizzes", fmt.Sprintf(`{"previous_questions":%s,"quiz_category":{"id":1}}`, prev))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		require.Contains(t, body, "question")
		if body["question"] == nil {
			return nil
		}
		return body["question"].(map[string]any)
	}

	first := draw([]int{})
	require.NotNil(t, first)
	firstID := int(first["id"].(float64))
	assert.Contains(t, []int{1, 2}, firstID)

	second := draw([]int{firstID})
	require.NotNil(t, second)
	assert.Equal(t, 3-firstID, int(second["id"].(float64)))

	assert.Nil(t, draw([]int{1, 2}))
}

func TestPlayQuizAllCategories(t *testing.T) {
	env := newTestEnv(t, 4)

	// the UI sends category ids as strings; 0 is "All"
	rec := env.do(http.MethodPost, "/quizzes", `{"previous_questions":[1,2,3],"quiz_category":{"type":"click","id":"0"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	question := decode(t, rec)["question"].(map[string]any)
	assert.EqualValues(t, 4, question["id"])

	rec = env.do(http.MethodPost, "/quizzes", `{"previous_questions":[1,2,3],"quiz_category":{"id":77}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	question = decode(t, rec)["question"].(map[string]any)
	assert.EqualValues(t, 4, question["id"])
}

func TestPlayQuizUnprocessable(t *testing.T) {
	env := newTestEnv(t, 2)

	assertError(t, env.do(http.MethodPost, "/quizzes", ""), http.StatusUnprocessableEntity)
	assertError(t, env.do(http.MethodPost, "/quizzes", `{"previous_questions":[]}`), http.StatusUnprocessableEntity)
	assertError(t, env.do(http.MethodPost, "/quizzes", `{"quiz_category":{"id":1}}`), http.StatusUnprocessableEntity)
	assertError(t, env.do(http.MethodPost, "/quizzes", `{"previous_questions":[],"quiz_category":{}}`), http.StatusUnprocessableEntity)

	env.store.Fail(errors.New("db down"))
	assertError(t, env.do(http.MethodPost, "/quizzes", `{"previous_questions":[],"quiz_category":{"id":1}}`), http.StatusUnprocessableEntity)
}

func TestCheckAnswer(t *testing.T) {
	env := newTestEnv(t, 1)

	rec := env.do(http.MethodPost, "/quizzes/answer", `{"question_id":1,"answer":"Answer 1!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"correct":true,"answer":"answer 1"}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/quizzes/answer", `{"question_id":1,"answer":"nope"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["correct"])

	rec = env.do(http.MethodPost, "/quizzes/answer", `{"question_id":1,"answer":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"correct":false,"answer":"answer 1"}`, rec.Body.String())

	assertError(t, env.do(http.MethodPost, "/quizzes/answer", `{"question_id":9,"answer":"x"}`), http.StatusNotFound)
	assertError(t, env.do(http.MethodPost, "/quizzes/answer", `{"question_id":1}`), http.StatusUnprocessableEntity)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, 0)

	assertError(t, env.do(http.MethodGet, "/SomeTestEndpoint", ""), http.StatusNotFound)
	assertError(t, env.do(http.MethodPatch, "/questions", ""), http.StatusMethodNotAllowed)
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/questions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodDelete)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET,POST,DELETE", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "Content-Type,Authorization", rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
}

type fakeLimiter struct {
	calls int
	limit int
	err   error
}

func (l *fakeLimiter) RateLimit(ctx context.Context, client string, limit int, window time.Duration) (bool, error) {
	l.calls++
	l.limit = limit
	if l.err != nil {
		return false, l.err
	}
	return l.calls > limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	env := newTestEnv(t, 0, func(d *Deps) {
		d.Limiter = limiter
		d.RateLimit = config.RateLimit{Requests: 2, Window: time.Minute}
	})

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/categories", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/categories", "").Code)
	assertError(t, env.do(http.MethodGet, "/categories", ""), http.StatusTooManyRequests)
	assert.Equal(t, 2, limiter.limit)

	// health checks bypass the limiter
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, 3, limiter.calls)
}

func TestRateLimitFailsOpen(t *testing.T) {
	env := newTestEnv(t, 0, func(d *Deps) {
		d.Limiter = &fakeLimiter{err: errors.New("redis down")}
		d.RateLimit = config.RateLimit{Requests: 1, Window: time.Minute}
	})

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/categories", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/categories", "").Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 0, func(d *Deps) { d.DB = fakePinger{} })
	rec := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	env = newTestEnv(t, 0, func(d *Deps) { d.DB = fakePinger{err: errors.New("down")} })
	rec = env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}
