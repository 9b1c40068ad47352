package controllers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/07-main-teamproject/backend/services"
)

type FoodController struct {
	lookup services.NutritionLookup
}

func NewFoodController(lookup services.NutritionLookup) *FoodController {
	return &FoodController{lookup: lookup}
}

// Info searches the external food database and returns normalized
// candidates. Unlike diet generation, this direct endpoint surfaces
// upstream failures to the caller.
func (ct *FoodController) Info(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	candidates, err := ct.lookup.Search(c.Request.Context(), query, 5, 3)
	if err != nil {
		if isTimeout(err) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "external food API timed out"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "external food API request failed"})
		return
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no foods found"})
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
