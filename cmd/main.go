package main

import (
	"context"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/config"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/routes"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Log.Fatalf("load config: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	var mealStore services.MealStore
	var goalStore services.GoalStore
	if cfg.DatabaseConfigured() {
		db, err := config.InitDB(cfg)
		if err != nil {
			utils.Log.Fatalf("init database: %v", err)
		}
		mealStore = services.NewGormMealStore(db)
		goalStore = services.NewGormGoalStore(db)
	} else {
		utils.Log.Warn("no database configured, using in-memory stores")
		mealStore = services.NewMemoryMealStore()
		goalStore = services.NewMemoryGoalStore()
	}

	gemini := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.VisionModel,
		cfg.Estimator.UpstreamTimeout,
	)

	var vision services.VisionCapability = gemini
	if cfg.Vision.Provider == "rekognition" {
		rek, err := services.NewRekognitionService(context.Background(), cfg.AWSRegion)
		if err != nil {
			utils.Log.Fatalf("init rekognition: %v", err)
		}
		vision = rek
	}

	estimator := services.NewEstimationService(vision, gemini, mealStore, services.EstimationOptions{
		AutoLogThreshold: cfg.Estimator.AutoLogThreshold,
		UpstreamTimeout:  cfg.Estimator.UpstreamTimeout,
		MaxImageDim:      cfg.Estimator.MaxImageDim,
		JPEGQuality:      cfg.Estimator.JPEGQuality,
	})

	r := routes.SetupRouter(routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Estimator: estimator,
		Store:     mealStore,
		Agg:       services.NewAggregator(mealStore),
		Goals:     goalStore,
	})

	utils.Log.Infof("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.Log.Fatalf("server exited: %v", err)
	}
}
