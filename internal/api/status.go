package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rewards_quest_bot/internal/middleware"
	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/internal/repository"
	"rewards_quest_bot/internal/service"
	"rewards_quest_bot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type StatusReader interface {
	Snapshot() service.StatusSnapshot
	Subscribe() (<-chan *model.PassReport, func())
}

type HistoryReader interface {
	RecentPasses(ctx context.Context, limit int) ([]repository.PassSummary, error)
}

type statusRoutes struct {
	board   StatusReader
	history HistoryReader
}

// NewStatusRoutes mounts the read-only status endpoints. history may be nil
// when pass history is disabled.
func NewStatusRoutes(handler *gin.RouterGroup, board StatusReader, history HistoryReader, auth *middleware.Authorization) {
	r := &statusRoutes{board: board, history: history}

	h := handler.Group("/status")
	h.Use(auth.BearerToken())
	{
		h.GET("", r.GetStatus)
		h.GET("/accounts/:index", r.GetAccountStatus)
		h.GET("/ws", r.StreamStatus)
	}

	if history != nil {
		handler.GET("/history", auth.BearerToken(), r.GetHistory)
	}
}

func NewHealthRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

type rollResponse struct {
	Kind           string    `json:"kind"`
	Credits        int       `json:"credits"`
	DiceRolls      []int     `json:"diceRolls"`
	NextEligibleAt time.Time `json:"nextEligibleAt"`
}

type accountResponse struct {
	Index           int           `json:"index"`
	OK              bool          `json:"ok"`
	Email           string        `json:"email,omitempty"`
	SocialCompleted int           `json:"socialCompleted"`
	Roll            *rollResponse `json:"roll,omitempty"`
	NextEligibleAt  *time.Time    `json:"nextEligibleAt,omitempty"`
	Error           string        `json:"error,omitempty"`
}

type passResponse struct {
	ID          string            `json:"id"`
	StartedAt   time.Time         `json:"startedAt"`
	FinishedAt  time.Time         `json:"finishedAt"`
	Accounts    int               `json:"accounts"`
	AccountsOK  int               `json:"accountsOk"`
	WaitSeconds int64             `json:"waitSeconds"`
	NextPassAt  time.Time         `json:"nextPassAt"`
	Results     []accountResponse `json:"results"`
}

type StatusResponse struct {
	StartedAt time.Time    `json:"startedAt"`
	Passes    int          `json:"passes"`
	LastPass  passResponse `json:"lastPass"`
}

func (r *statusRoutes) GetStatus(c *gin.Context) {
	snap := r.board.Snapshot()
	if snap.Last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pass finished yet"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		StartedAt: snap.StartedAt,
		Passes:    snap.Passes,
		LastPass:  toPassResponse(snap.Last),
	})
}

func (r *statusRoutes) GetAccountStatus(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account index"})
		return
	}

	snap := r.board.Snapshot()
	if snap.Last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pass finished yet"})
		return
	}

	for _, res := range snap.Last.Results {
		if res.AccountIndex == index {
			c.JSON(http.StatusOK, toAccountResponse(res))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
}

func (r *statusRoutes) GetHistory(c *gin.Context) {
	log := logger.Logger()

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	passes, err := r.history.RecentPasses(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to load pass history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"passes": passes})
}

func toPassResponse(report *model.PassReport) passResponse {
	results := make([]accountResponse, len(report.Results))
	for i, res := range report.Results {
		results[i] = toAccountResponse(res)
	}

	return passResponse{
		ID:          report.ID.String(),
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
		Accounts:    len(report.Results),
		AccountsOK:  report.AccountsOK(),
		WaitSeconds: int64(report.Wait.Seconds()),
		NextPassAt:  report.NextPassAt,
		Results:     results,
	}
}

func toAccountResponse(res model.CycleResult) accountResponse {
	resp := accountResponse{
		Index:           res.AccountIndex,
		OK:              res.AccountOK,
		Email:           res.Email,
		SocialCompleted: res.SocialCompleted,
		NextEligibleAt:  res.NextEligibleAt,
		Error:           res.Error,
	}
	if res.Roll != nil {
		resp.Roll = &rollResponse{
			Kind:           string(res.Roll.Kind),
			Credits:        res.Roll.Credits,
			DiceRolls:      res.Roll.DiceRolls,
			NextEligibleAt: res.Roll.NextEligibleAt,
		}
	}
	return resp
}
