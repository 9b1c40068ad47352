package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/07-main-teamproject/backend/services"
)

type DietController struct {
	svc *services.DietService
}

func NewDietController(svc *services.DietService) *DietController {
	return &DietController{svc: svc}
}

// CreateDefaults generates the user's default diet batch.
func (ct *DietController) CreateDefaults(c *gin.Context) {
	userID := c.GetUint("userID")

	diets, err := ct.svc.GenerateDefaultDiets(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoEligibleFood) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "no foods match the current allergy and preference settings",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "default diets created", "diets": diets})
}

// List returns the user's diets, optionally filtered by ?date=YYYY-MM-DD.
func (ct *DietController) List(c *gin.Context) {
	userID := c.GetUint("userID")

	diets, err := ct.svc.ListDiets(userID, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, diets)
}

func (ct *DietController) Get(c *gin.Context) {
	userID := c.GetUint("userID")
	dietID, ok := dietIDParam(c)
	if !ok {
		return
	}

	diet, err := ct.svc.GetDiet(c.Request.Context(), userID, dietID)
	if err != nil {
		respondDietError(c, err)
		return
	}
	c.JSON(http.StatusOK, diet)
}

type CreateDietInput struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

// Create makes a single empty diet for the user.
func (ct *DietController) Create(c *gin.Context) {
	userID := c.GetUint("userID")

	var input CreateDietInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diet, err := ct.svc.CreateDiet(userID, input.Name, input.ImageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, diet)
}

type UpdateDietInput struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

func (ct *DietController) Update(c *gin.Context) {
	userID := c.GetUint("userID")
	dietID, ok := dietIDParam(c)
	if !ok {
		return
	}

	var input UpdateDietInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name == "" && input.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	diet, err := ct.svc.UpdateDiet(c.Request.Context(), userID, dietID, input.Name, input.ImageURL)
	if err != nil {
		respondDietError(c, err)
		return
	}
	c.JSON(http.StatusOK, diet)
}

func (ct *DietController) Delete(c *gin.Context) {
	userID := c.GetUint("userID")
	dietID, ok := dietIDParam(c)
	if !ok {
		return
	}

	if err := ct.svc.DeleteDiet(c.Request.Context(), userID, dietID); err != nil {
		respondDietError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "diet deleted", "deleted_diet_id": dietID})
}

func dietIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("diet_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid diet id"})
		return 0, false
	}
	return uint(id), true
}

func respondDietError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidPortionSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
