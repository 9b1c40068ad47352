package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/07-main-teamproject/backend/controllers"
	"github.com/07-main-teamproject/backend/middlewares"
)

func SetupRouter(log *zap.Logger, dc *controllers.DietController, dfc *controllers.DietFoodController, fc *controllers.FoodController) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestLogger(log), gin.Recovery())

	api := r.Group("/api")

	// Public
	api.POST("/user/signup", controllers.Signup)

	// Protected
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/user/profile", controllers.GetProfile)
		auth.PUT("/user/profile", controllers.UpdateProfile)
		auth.DELETE("/user/profile", controllers.DeleteProfile)

		auth.GET("/diets", dc.List)
		auth.POST("/diets", dc.Create)
		auth.POST("/diets/default", dc.CreateDefaults)
		auth.GET("/diets/:diet_id", dc.Get)
		auth.PATCH("/diets/:diet_id", dc.Update)
		auth.DELETE("/diets/:diet_id", dc.Delete)

		auth.POST("/diets/:diet_id/foods", dfc.Add)
		auth.PUT("/diets/:diet_id/foods", dfc.UpdatePortions)
		auth.DELETE("/diets/:diet_id/foods", dfc.Remove)

		auth.GET("/food/info", fc.Info)
	}

	return r
}
