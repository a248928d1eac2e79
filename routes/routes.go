package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/controllers"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/middlewares"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
)

// Deps is everything the router needs, injected so the handlers never
// construct their own storage or providers.
type Deps struct {
	JWTSecret string
	Estimator *services.EstimationService
	Store     services.MealStore
	Agg       *services.Aggregator
	Goals     services.GoalStore
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	estimateCtl := controllers.NewEstimateController(d.Estimator)
	mealCtl := controllers.NewMealController(d.Store, d.Agg, d.Goals)
	goalCtl := controllers.NewGoalController(d.Goals)

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware(d.JWTSecret))
	{
		nutrition := api.Group("/nutrition")
		{
			nutrition.POST("/estimate", estimateCtl.EstimateText)
			nutrition.POST("/estimate-photo", estimateCtl.EstimatePhoto)
			nutrition.POST("/meals", mealCtl.Append)
			nutrition.GET("/meals", mealCtl.List)
			nutrition.DELETE("/meals/:id", mealCtl.Delete)
			nutrition.GET("/daily", mealCtl.DaySummary)
			nutrition.GET("/history", mealCtl.History)
			nutrition.POST("/reset-day", mealCtl.ResetDay)
		}

		user := api.Group("/user")
		{
			user.GET("/goals", goalCtl.Get)
			user.PUT("/goals", goalCtl.Upsert)
		}
	}

	return r
}
