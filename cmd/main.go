package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/07-main-teamproject/backend/config"
	"github.com/07-main-teamproject/backend/controllers"
	"github.com/07-main-teamproject/backend/routes"
	"github.com/07-main-teamproject/backend/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	config.InitDB()

	var cache services.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = services.NewRedisCache(addr)
	} else {
		cache = services.NewMemoryCache()
	}

	timeout := 10 * time.Second
	if secs, err := strconv.Atoi(config.Getenv("OFF_TIMEOUT_SECONDS", "10")); err == nil && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	lookup := services.NewOpenFoodFactsService(os.Getenv("OFF_BASE_URL"), timeout, cache, logger)
	catalog := services.NewCatalogService(config.DB)
	dietSvc := services.NewDietService(config.DB, catalog, lookup, cache, logger, nil)
	dietFoodSvc := services.NewDietFoodService(config.DB, catalog, lookup, cache, logger)

	r := routes.SetupRouter(
		logger,
		controllers.NewDietController(dietSvc),
		controllers.NewDietFoodController(dietFoodSvc),
		controllers.NewFoodController(lookup),
	)

	port := config.Getenv("PORT", "8080")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
