package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/07-main-teamproject/backend/services"
)

type DietFoodController struct {
	svc *services.DietFoodService
}

func NewDietFoodController(svc *services.DietFoodService) *DietFoodController {
	return &DietFoodController{svc: svc}
}

type AddFoodsInput struct {
	ExternalIDs   []string `json:"external_ids" binding:"required"`
	PortionSize   float64  `json:"portion_size"`
	MergeQuantity bool     `json:"merge_quantity"`
}

func (ct *DietFoodController) Add(c *gin.Context) {
	userID := c.GetUint("userID")
	dietID, ok := dietIDParam(c)
	if !ok {
		return
	}

	var input AddFoodsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.PortionSize == 0 {
		input.PortionSize = 100
	}

	added, err := ct.svc.AddFoods(c.Request.Context(), userID, dietID, input.ExternalIDs, input.PortionSize, input.MergeQuantity)
	if err != nil {
		respondDietError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "foods added", "added_foods": added})
}

type UpdatePortionsInput struct {
	ExternalIDs []string                 `json:"external_ids"`
	PortionSize float64                  `json:"portion_size"`
	Updates     []services.PortionUpdate `json:"updates"`
}

func (ct *DietFoodController) UpdatePortions(c *gin.Context) {
	userID := c.GetUint("userID")
	dietID, ok := dietIDParam(c)
	if !ok {
		return
	}

	var input UpdatePortionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := ct.svc.UpdatePortions(c.Request.Context(), userID, dietID, input.ExternalIDs, input.PortionSize, input.Updates)
	if err != nil {
		respondDietError(c, err)
		return
	}
	if len(updated) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no matching foods were updated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "portions updated", "updated_foods": updated})
}

type RemoveFoodsInput struct {
	ExternalIDs []string `json:"external_ids" binding:"required"`
}

func (ct *DietFoodController) Remove(c *gin.Context) {
	userID := c.GetUint("userID")
	dietID, ok := dietIDParam(c)
	if !ok {
		return
	}

	var input RemoveFoodsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := ct.svc.RemoveFoods(c.Request.Context(), userID, dietID, input.ExternalIDs)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "foods removed", "removed_foods": removed})
}
