package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

type MealController struct {
	store services.MealStore
	agg   *services.Aggregator
	goals services.GoalStore
}

func NewMealController(store services.MealStore, agg *services.Aggregator, goals services.GoalStore) *MealController {
	return &MealController{store: store, agg: agg, goals: goals}
}

type mealItemRequest struct {
	Name     string  `json:"name" validate:"required"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	Fiber    float64 `json:"fiber_g"`
	Sugar    float64 `json:"sugar_g"`
	Sodium   float64 `json:"sodium_mg"`
}

// appendMealRequest accepts either an items list or flat macro fields (the
// shape a confirmed estimate comes back in).
type appendMealRequest struct {
	Label string            `json:"label"`
	AteAt *time.Time        `json:"ate_at"`
	Items []mealItemRequest `json:"items" validate:"omitempty,dive"`

	MealName string   `json:"meal_name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein_g"`
	Carbs    *float64 `json:"carbs_g"`
	Fat      *float64 `json:"fat_g"`

	Source          string   `json:"source"`
	Confidence      int      `json:"confidence"`
	IdentifiedFoods []string `json:"identified_foods"`
	SuggestedSwaps  []string `json:"suggested_swaps"`
	Explanation     string   `json:"explanation"`
}

// Append handles POST /nutrition/meals: manual logging and confirmation of
// gate-rejected estimates.
func (ctl *MealController) Append(c *gin.Context) {
	var req appendMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := models.Meal{Label: req.Label}
	if req.AteAt != nil {
		meal.AteAt = *req.AteAt
	}
	for _, it := range req.Items {
		meal.Items = append(meal.Items, models.NutritionItem{
			Name:     it.Name,
			Calories: utils.CoerceNumber(it.Calories),
			Protein:  utils.CoerceNumber(it.Protein),
			Carbs:    utils.CoerceNumber(it.Carbs),
			Fat:      utils.CoerceNumber(it.Fat),
			Fiber:    utils.CoerceNumber(it.Fiber),
			Sugar:    utils.CoerceNumber(it.Sugar),
			Sodium:   utils.CoerceNumber(it.Sodium),
		})
	}
	if len(meal.Items) == 0 && req.Calories != nil {
		name := req.MealName
		if name == "" {
			name = req.Label
		}
		if name == "" {
			name = utils.DefaultMealName
		}
		meal.Items = []models.NutritionItem{{
			Name:     name,
			Calories: utils.CoerceNumber(*req.Calories),
			Protein:  coerceOptional(req.Protein),
			Carbs:    coerceOptional(req.Carbs),
			Fat:      coerceOptional(req.Fat),
		}}
	}

	meal.Source = req.Source
	if meal.Source == "" {
		meal.Source = models.SourceManual
	}
	meal.Confidence = req.Confidence
	meal.IdentifiedFoods = req.IdentifiedFoods
	meal.SuggestedSwaps = req.SuggestedSwaps
	meal.Explanation = req.Explanation

	stored, err := ctl.store.Append(c.Request.Context(), ownerID(c), meal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// List handles GET /nutrition/meals, newest first, no dedup.
func (ctl *MealController) List(c *gin.Context) {
	meals, err := ctl.store.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// Delete handles DELETE /nutrition/meals/:id. Unknown ids are not errors.
func (ctl *MealController) Delete(c *gin.Context) {
	removed, err := ctl.store.Remove(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// DaySummary handles GET /nutrition/daily?date=YYYY-MM-DD (default today).
func (ctl *MealController) DaySummary(c *gin.Context) {
	date, err := parseDateParam(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	owner := ownerID(c)
	totals, recent, err := ctl.agg.DayTotals(c.Request.Context(), owner, date)
	if err != nil {
		respondError(c, err)
		return
	}
	goal, err := ctl.goals.Get(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totals":      totals,
		"targets":     goal,
		"remaining":   services.RemainingAgainst(totals, goal),
		"recentMeals": recent,
	})
}

// History handles GET /nutrition/history?days=N (1..60, default 7).
func (ctl *MealController) History(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = parsed
	}
	history, err := ctl.agg.History(c.Request.Context(), ownerID(c), days, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

type resetDayRequest struct {
	Date string `json:"date"`
}

// ResetDay handles POST /nutrition/reset-day (default today).
func (ctl *MealController) ResetDay(c *gin.Context) {
	var req resetDayRequest
	_ = c.ShouldBindJSON(&req)
	date, err := parseDateParam(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	removed, err := ctl.agg.ResetDay(c.Request.Context(), ownerID(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

func coerceOptional(v *float64) int {
	if v == nil {
		return 0
	}
	return utils.CoerceNumber(*v)
}
