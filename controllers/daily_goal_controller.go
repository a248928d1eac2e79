package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
)

// GoalController is the thin boundary for the goal-setting collaborator:
// targets are written here and only read by the nutrition day summary.
type GoalController struct {
	goals services.GoalStore
}

func NewGoalController(goals services.GoalStore) *GoalController {
	return &GoalController{goals: goals}
}

func (ctl *GoalController) Get(c *gin.Context) {
	goal, err := ctl.goals.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

type upsertGoalRequest struct {
	Calories int `json:"calories" binding:"min=0"`
	Protein  int `json:"protein_g" binding:"min=0"`
	Carbs    int `json:"carbs_g" binding:"min=0"`
	Fat      int `json:"fat_g" binding:"min=0"`
}

func (ctl *GoalController) Upsert(c *gin.Context) {
	var req upsertGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goal, err := ctl.goals.Upsert(c.Request.Context(), ownerID(c), models.DailyGoal{
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}
