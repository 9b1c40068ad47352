package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/07-main-teamproject/backend/models"
)

// CatalogService is the persistent dedup store for canonical food
// records, keyed by external_id.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// UpsertMany persists candidates with get-or-create semantics: an
// existing row wins and its nutrition data is never clobbered by a
// re-fetch. The unique index on external_id plus ON CONFLICT DO NOTHING
// keeps concurrent upserts from creating duplicates; the losing writer
// falls back to a read.
func (s *CatalogService) UpsertMany(candidates []models.FoodCandidate) ([]models.Food, error) {
	out := make([]models.Food, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if c.ExternalID == "" || seen[c.ExternalID] {
			continue
		}
		seen[c.ExternalID] = true

		food := c.Food()
		res := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).Create(&food)
		if res.Error != nil {
			return nil, fmt.Errorf("upsert food %s: %w", c.ExternalID, res.Error)
		}
		if res.RowsAffected == 0 {
			// conflict: someone already owns this external_id
			if err := s.db.Where("external_id = ?", c.ExternalID).First(&food).Error; err != nil {
				return nil, fmt.Errorf("load existing food %s: %w", c.ExternalID, err)
			}
		}
		out = append(out, food)
	}
	return out, nil
}

func (s *CatalogService) FindByExternalID(externalID string) (*models.Food, error) {
	var food models.Food
	if err := s.db.Where("external_id = ?", externalID).First(&food).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("food %s: %w", externalID, ErrNotFound)
		}
		return nil, err
	}
	return &food, nil
}

func (s *CatalogService) FindByID(id uint) (*models.Food, error) {
	var food models.Food
	if err := s.db.First(&food, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("food %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &food, nil
}

func (s *CatalogService) ListAll() ([]models.Food, error) {
	var foods []models.Food
	if err := s.db.Find(&foods).Error; err != nil {
		return nil, err
	}
	return foods, nil
}
