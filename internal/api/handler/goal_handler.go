package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rcmalta/laytrack/internal/api/middleware"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/rcmalta/laytrack/internal/service"
)

// GoalHandler serves monthly goal endpoints.
type GoalHandler struct {
	goalSvc *service.GoalService
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(goalSvc *service.GoalService) *GoalHandler {
	return &GoalHandler{goalSvc: goalSvc}
}

// Get godoc
// GET /api/goal?month=8&year=2026 [JWT]
// Defaults to the current month when the query params are absent. A month
// with no stored goal returns default values with a zero id.
func (h *GoalHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month, year := parseMonthYear(c)

	goal, err := h.goalSvc.LoadGoal(c.Request.Context(), userID, month, year)
	if err != nil {
		if domain.IsValidation(err) {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not load goal")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    goal,
		"meta": gin.H{
			"month":           goal.Month,
			"year":            goal.Year,
			"suggested_stake": goal.SuggestedStake(),
		},
	})
}

// Save godoc
// PUT /api/goal [JWT]
// Upserts the goal for the (month, year) carried in the body.
func (h *GoalHandler) Save(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.SaveGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	goal, err := h.goalSvc.SaveGoal(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not save goal")
		return
	}
	respondSuccess(c, http.StatusOK, goal)
}

// parseMonthYear reads month/year query params, defaulting to the
// current calendar month. Out-of-range values are passed through so the
// service layer rejects them with a domain error.
func parseMonthYear(c *gin.Context) (month, year int) {
	now := time.Now().UTC()
	month, _ = strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ = strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	return month, year
}
