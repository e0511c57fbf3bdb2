package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rewards_quest_bot/internal/middleware"
	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/internal/repository"
	"rewards_quest_bot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	passes []repository.PassSummary
	err    error
	limit  int
}

func (f *fakeHistory) RecentPasses(_ context.Context, limit int) ([]repository.PassSummary, error) {
	f.limit = limit
	return f.passes, f.err
}

func newTestRouter(board StatusReader, history HistoryReader, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHealthRoutes(router)
	NewStatusRoutes(router.Group("/api/v1"), board, history, middleware.NewAuthorization(token))
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func boardWithPass() *service.StatusBoard {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next := now.Add(24 * time.Hour)

	board := service.NewStatusBoard(now)
	board.Update(&model.PassReport{
		ID:         uuid.New(),
		StartedAt:  now,
		FinishedAt: now.Add(time.Minute),
		Wait:       15 * time.Minute,
		NextPassAt: now.Add(16 * time.Minute),
		Results: []model.CycleResult{
			{
				AccountIndex:   1,
				AccountOK:      true,
				Email:          "a@b.c",
				NextEligibleAt: &next,
				Roll:           &model.Outcome{Kind: model.OutcomeCompleted, Credits: 10, DiceRolls: []int{3, 5, 2}},
			},
			{AccountIndex: 2, Error: "timeout"},
		},
	})
	return board
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(service.NewStatusBoard(time.Now()), nil, "secret"), "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetStatus(t *testing.T) {
	t.Run("No pass yet", func(t *testing.T) {
		w := doRequest(newTestRouter(service.NewStatusBoard(time.Now()), nil, ""), "/api/v1/status", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Latest pass", func(t *testing.T) {
		w := doRequest(newTestRouter(boardWithPass(), nil, ""), "/api/v1/status", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Passes)
		assert.Equal(t, 2, resp.LastPass.Accounts)
		assert.Equal(t, 1, resp.LastPass.AccountsOK)
		assert.Equal(t, int64(900), resp.LastPass.WaitSeconds)
		require.Len(t, resp.LastPass.Results, 2)
		require.NotNil(t, resp.LastPass.Results[0].Roll)
		assert.Equal(t, []int{3, 5, 2}, resp.LastPass.Results[0].Roll.DiceRolls)
		assert.Equal(t, "timeout", resp.LastPass.Results[1].Error)
	})

	t.Run("Token required", func(t *testing.T) {
		router := newTestRouter(boardWithPass(), nil, "secret")
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/api/v1/status", "").Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "/api/v1/status", "secret").Code)
	})
}

func TestGetAccountStatus(t *testing.T) {
	router := newTestRouter(boardWithPass(), nil, "")

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "Known account", path: "/api/v1/status/accounts/1", expectedStatus: http.StatusOK},
		{name: "Unknown account", path: "/api/v1/status/accounts/7", expectedStatus: http.StatusNotFound},
		{name: "Bad index", path: "/api/v1/status/accounts/abc", expectedStatus: http.StatusBadRequest},
		{name: "Zero index", path: "/api/v1/status/accounts/0", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.path, "")
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetHistory(t *testing.T) {
	t.Run("Not mounted without history", func(t *testing.T) {
		w := doRequest(newTestRouter(boardWithPass(), nil, ""), "/api/v1/history", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Limit is clamped", func(t *testing.T) {
		history := &fakeHistory{passes: []repository.PassSummary{{ID: "p1", Accounts: 2}}}
		w := doRequest(newTestRouter(boardWithPass(), history, ""), "/api/v1/history?limit=1000", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, maxHistoryLimit, history.limit)
		assert.Contains(t, w.Body.String(), `"id":"p1"`)
	})

	t.Run("Invalid limit", func(t *testing.T) {
		history := &fakeHistory{}
		w := doRequest(newTestRouter(boardWithPass(), history, ""), "/api/v1/history?limit=-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Repository error", func(t *testing.T) {
		history := &fakeHistory{err: errors.New("db down")}
		w := doRequest(newTestRouter(boardWithPass(), history, ""), "/api/v1/history", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, defaultHistoryLimit, history.limit)
	})
}
