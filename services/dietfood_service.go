package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/07-main-teamproject/backend/models"
)

// DietFoodService mutates the foods inside a diet. Every write recomputes
// the item's scaled nutrient snapshot in the same transaction and drops
// the diet's cached totals, so reads after a write never see stale values.
type DietFoodService struct {
	db      *gorm.DB
	catalog FoodCatalog
	lookup  NutritionLookup
	cache   Cache
	log     *zap.Logger
}

func NewDietFoodService(db *gorm.DB, catalog FoodCatalog, lookup NutritionLookup, cache Cache, log *zap.Logger) *DietFoodService {
	return &DietFoodService{db: db, catalog: catalog, lookup: lookup, cache: cache, log: log}
}

// AddedFood reports one item written by AddFoods.
type AddedFood struct {
	ExternalID  string  `json:"external_id"`
	Name        string  `json:"name"`
	PortionSize float64 `json:"portion_size"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
}

// PortionUpdate carries one per-item portion change.
type PortionUpdate struct {
	ExternalID  string  `json:"external_id"`
	PortionSize float64 `json:"portion_size"`
}

// AddFoods adds foods to a diet by external id. Adding an already-present
// food is not an error: the row's portion is updated instead (added to
// when merge is set, replaced otherwise). Foods missing from the catalog
// are fetched from the external API and upserted first. The whole batch
// is one transaction.
func (s *DietFoodService) AddFoods(ctx context.Context, userID, dietID uint, externalIDs []string, portion float64, merge bool) ([]AddedFood, error) {
	if portion <= 0 {
		return nil, ErrInvalidPortionSize
	}
	if len(externalIDs) == 0 {
		return nil, fmt.Errorf("no food ids given")
	}

	diet, err := s.findUserDiet(userID, dietID)
	if err != nil {
		return nil, err
	}

	foods := make([]models.Food, 0, len(externalIDs))
	for _, extID := range externalIDs {
		food, err := s.resolveFood(ctx, extID)
		if err != nil {
			return nil, err
		}
		foods = append(foods, *food)
	}

	added := make([]AddedFood, 0, len(foods))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, food := range foods {
			var item models.DietItem
			err := tx.Where("diet_id = ? AND food_id = ?", diet.ID, food.ID).First(&item).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				item = models.DietItem{DietID: diet.ID, FoodID: food.ID}
				item.ApplyPortion(food, portion)
			case err != nil:
				return err
			default:
				next := portion
				if merge {
					next = item.PortionSize + portion
				}
				item.ApplyPortion(food, next)
			}
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("save diet item for %s: %w", food.ExternalID, err)
			}
			added = append(added, AddedFood{
				ExternalID:  food.ExternalID,
				Name:        food.Name,
				PortionSize: item.PortionSize,
				Calories:    item.Calories,
				Protein:     item.Protein,
				Carbs:       item.Carbs,
				Fat:         item.Fat,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, dietID)
	return added, nil
}

// UpdatePortions applies portion changes, either the same portion for a
// list of external ids or individual per-item updates. Foods not in the
// catalog or not in the diet are skipped; a zero or negative portion
// rejects the whole request before anything is written.
func (s *DietFoodService) UpdatePortions(ctx context.Context, userID, dietID uint, externalIDs []string, portion float64, updates []PortionUpdate) ([]AddedFood, error) {
	if len(externalIDs) == 0 && len(updates) == 0 {
		return nil, fmt.Errorf("no portion updates given")
	}

	all := make([]PortionUpdate, 0, len(externalIDs)+len(updates))
	for _, extID := range externalIDs {
		all = append(all, PortionUpdate{ExternalID: extID, PortionSize: portion})
	}
	all = append(all, updates...)
	for _, u := range all {
		if u.PortionSize <= 0 {
			return nil, fmt.Errorf("food %s: %w", u.ExternalID, ErrInvalidPortionSize)
		}
	}

	diet, err := s.findUserDiet(userID, dietID)
	if err != nil {
		return nil, err
	}

	updated := make([]AddedFood, 0, len(all))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range all {
			food, err := s.catalog.FindByExternalID(u.ExternalID)
			if errors.Is(err, ErrNotFound) {
				s.log.Debug("portion update skipped, food not in catalog", zap.String("external_id", u.ExternalID))
				continue
			}
			if err != nil {
				return err
			}
			var item models.DietItem
			err = tx.Where("diet_id = ? AND food_id = ?", diet.ID, food.ID).First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			item.ApplyPortion(*food, u.PortionSize)
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			updated = append(updated, AddedFood{
				ExternalID:  food.ExternalID,
				Name:        food.Name,
				PortionSize: item.PortionSize,
				Calories:    item.Calories,
				Protein:     item.Protein,
				Carbs:       item.Carbs,
				Fat:         item.Fat,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(updated) > 0 {
		s.invalidate(ctx, dietID)
	}
	return updated, nil
}

// RemoveFoods deletes items from the diet by external id.
func (s *DietFoodService) RemoveFoods(ctx context.Context, userID, dietID uint, externalIDs []string) ([]string, error) {
	if len(externalIDs) == 0 {
		return nil, fmt.Errorf("no food ids given")
	}

	diet, err := s.findUserDiet(userID, dietID)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(externalIDs))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, extID := range externalIDs {
			food, err := s.catalog.FindByExternalID(extID)
			if err != nil {
				return err
			}
			res := tx.Unscoped().Where("diet_id = ? AND food_id = ?", diet.ID, food.ID).Delete(&models.DietItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("food %s is not in this diet: %w", extID, ErrNotFound)
			}
			removed = append(removed, extID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, dietID)
	return removed, nil
}

// resolveFood finds a catalog row by external id, fetching and upserting
// it from the external API when it is not cached yet.
func (s *DietFoodService) resolveFood(ctx context.Context, externalID string) (*models.Food, error) {
	food, err := s.catalog.FindByExternalID(externalID)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	candidate, err := s.lookup.FetchByID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	foods, err := s.catalog.UpsertMany([]models.FoodCandidate{*candidate})
	if err != nil {
		return nil, err
	}
	if len(foods) == 0 {
		return nil, fmt.Errorf("food %s: %w", externalID, ErrNotFound)
	}
	return &foods[0], nil
}

func (s *DietFoodService) findUserDiet(userID, dietID uint) (*models.Diet, error) {
	var diet models.Diet
	if err := s.db.Where("id = ? AND user_id = ?", dietID, userID).First(&diet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("diet %d: %w", dietID, ErrNotFound)
		}
		return nil, err
	}
	return &diet, nil
}

func (s *DietFoodService) invalidate(ctx context.Context, dietID uint) {
	if s.cache != nil {
		s.cache.Delete(ctx, dietCacheKey(dietID))
	}
}
