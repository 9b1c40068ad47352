package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/07-main-teamproject/backend/models"
)

const (
	// DietsPerBatch and FoodsPerDiet bound one default-generation call:
	// three diets, up to three foods each.
	DietsPerBatch = 3
	FoodsPerDiet  = 3

	dietCacheTTL = 10 * time.Minute

	searchTopUpResults = 5
	searchTopUpPages   = 3
)

var defaultDietNames = []string{"breakfast diet", "lunch diet", "dinner diet"}

// NutritionLookup is the external food search boundary.
type NutritionLookup interface {
	Search(ctx context.Context, query string, maxResults, maxPages int) ([]models.FoodCandidate, error)
	FetchByID(ctx context.Context, externalID string) (*models.FoodCandidate, error)
}

// FoodCatalog is the persistent food store boundary.
type FoodCatalog interface {
	UpsertMany(candidates []models.FoodCandidate) ([]models.Food, error)
	FindByExternalID(externalID string) (*models.Food, error)
	ListAll() ([]models.Food, error)
}

// DietService owns diet generation, diet CRUD, and nutrition aggregation.
type DietService struct {
	db      *gorm.DB
	catalog FoodCatalog
	lookup  NutritionLookup
	cache   Cache
	log     *zap.Logger
	rng     *rand.Rand

	locks userLocks
}

func NewDietService(db *gorm.DB, catalog FoodCatalog, lookup NutritionLookup, cache Cache, log *zap.Logger, rng *rand.Rand) *DietService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DietService{
		db:      db,
		catalog: catalog,
		lookup:  lookup,
		cache:   cache,
		log:     log,
		rng:     rng,
	}
}

// userLocks hands out one mutex per user so concurrent default-diet
// generation requests for the same user run one at a time. Without this,
// two batches could both see the catalog as insufficient and neither
// would respect the other's used-food set.
type userLocks struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}

func (l *userLocks) forUser(id uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[uint]*sync.Mutex)
	}
	if l.m[id] == nil {
		l.m[id] = &sync.Mutex{}
	}
	return l.m[id]
}

// DietWithTotals is a diet plus its aggregate nutrition, the shape the
// presentation layer serializes.
type DietWithTotals struct {
	models.Diet
	models.NutritionTotals
}

type dietPlan struct {
	Name  string
	Foods []models.Food
}

// GenerateDefaultDiets builds three diets for the user, each holding up
// to three allergy-filtered foods with no food repeated across the
// batch. One search query per diet slot is drawn at random from the
// preference keywords. The whole batch is written in one transaction:
// if any slot ends up with an empty candidate pool the batch rolls back
// and ErrNoEligibleFood is returned, so no empty diet rows survive.
func (s *DietService) GenerateDefaultDiets(ctx context.Context, userID uint) ([]DietWithTotals, error) {
	lock := s.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	var allergies, preferences []string
	var profile models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err == nil {
		allergies = profile.AllergyList()
		preferences = profile.PreferenceList()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	names, err := s.nextDietNames(userID)
	if err != nil {
		return nil, err
	}

	plans, err := s.planDiets(ctx, names, SearchQueries(preferences), allergies)
	if err != nil {
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	diets := make([]models.Diet, 0, len(plans))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, plan := range plans {
			diet := models.Diet{UserID: userID, Name: plan.Name, Date: today}
			if err := tx.Create(&diet).Error; err != nil {
				return fmt.Errorf("create diet %q: %w", plan.Name, err)
			}
			for _, food := range plan.Foods {
				item := models.DietItem{DietID: diet.ID, FoodID: food.ID}
				item.ApplyPortion(food, models.DefaultPortionSize)
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("create diet item: %w", err)
				}
				item.Food = food
				diet.Items = append(diet.Items, item)
			}
			diets = append(diets, diet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]DietWithTotals, 0, len(diets))
	for i := range diets {
		out = append(out, DietWithTotals{Diet: diets[i], NutritionTotals: Aggregate(&diets[i])})
	}
	return out, nil
}

// planDiets selects foods for each slot without touching diet tables, so
// the selection logic is testable on its own. The catalog pool is shared
// across slots and foods fetched for an earlier slot stay available to
// later ones; used foods are excluded batch-wide.
func (s *DietService) planDiets(ctx context.Context, names, queries, allergies []string) ([]dietPlan, error) {
	catalog, err := s.catalog.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	used := make(map[string]bool)
	plans := make([]dietPlan, 0, len(names))

	for i, name := range names {
		pool := make([]models.Food, 0, len(catalog))
		inPool := make(map[string]bool)
		for j := range catalog {
			f := catalog[j]
			if used[f.ExternalID] || !Allowed(&f, allergies) {
				continue
			}
			pool = append(pool, f)
			inPool[f.ExternalID] = true
		}

		if len(pool) < FoodsPerDiet {
			query := queries[s.rng.Intn(len(queries))]
			candidates, err := s.lookup.Search(ctx, query, searchTopUpResults, searchTopUpPages)
			if err != nil {
				// external outage degrades to an empty result set
				s.log.Warn("external food search unavailable", zap.String("query", query), zap.Error(err))
			}
			keep := make([]models.FoodCandidate, 0, len(candidates))
			for _, c := range candidates {
				if used[c.ExternalID] || inPool[c.ExternalID] || !Allowed(&c, allergies) {
					continue
				}
				keep = append(keep, c)
			}
			if len(keep) > 0 {
				foods, err := s.catalog.UpsertMany(keep)
				if err != nil {
					return nil, fmt.Errorf("persist fetched foods: %w", err)
				}
				for _, f := range foods {
					catalog = append(catalog, f)
					// get-or-create returns the stored row, whose allergen
					// flags can differ from the fresh candidate's; only the
					// stored flags decide eligibility
					if !Allowed(&f, allergies) {
						continue
					}
					pool = append(pool, f)
					inPool[f.ExternalID] = true
				}
			}
		}

		if len(pool) == 0 {
			return nil, fmt.Errorf("diet %q: %w", name, ErrNoEligibleFood)
		}

		// When the pool is scarce, spread it over the remaining slots so
		// no later diet ends up empty while an earlier one holds three.
		slotsRemaining := len(names) - i
		want := FoodsPerDiet
		if spread := (len(pool) + slotsRemaining - 1) / slotsRemaining; spread < want {
			want = spread
		}
		selected := sampleFoods(pool, want, s.rng)
		for _, f := range selected {
			used[f.ExternalID] = true
		}
		plans = append(plans, dietPlan{Name: name, Foods: selected})
	}
	return plans, nil
}

// sampleFoods picks up to n distinct foods uniformly without replacement.
func sampleFoods(pool []models.Food, n int, rng *rand.Rand) []models.Food {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]models.Food, 0, n)
	for _, idx := range rng.Perm(len(pool))[:n] {
		out = append(out, pool[idx])
	}
	return out
}

// nextDietNames returns the batch's diet names: the breakfast/lunch/
// dinner defaults until all three exist, then "extra diet N" counting on
// from previous extras.
func (s *DietService) nextDietNames(userID uint) ([]string, error) {
	var defaults int64
	if err := s.db.Model(&models.Diet{}).
		Where("user_id = ? AND name IN ?", userID, defaultDietNames).
		Count(&defaults).Error; err != nil {
		return nil, err
	}
	if defaults < int64(len(defaultDietNames)) {
		return defaultDietNames, nil
	}

	var extras int64
	if err := s.db.Model(&models.Diet{}).
		Where("user_id = ? AND name LIKE ?", userID, "extra diet %").
		Count(&extras).Error; err != nil {
		return nil, err
	}
	names := make([]string, 0, DietsPerBatch)
	for i := 1; i <= DietsPerBatch; i++ {
		names = append(names, fmt.Sprintf("extra diet %d", extras+int64(i)))
	}
	return names, nil
}

// Aggregate recomputes per-diet totals from the per-100g food values and
// each item's portion size. It never reads the cached per-item snapshot,
// so a stale snapshot cannot leak into the totals. Items must be loaded
// with their Food association.
func Aggregate(diet *models.Diet) models.NutritionTotals {
	var t models.NutritionTotals
	for i := range diet.Items {
		it := &diet.Items[i]
		scale := it.PortionSize / 100.0
		t.Calories += it.Food.Calories * scale
		t.Protein += it.Food.Protein * scale
		t.Carbs += it.Food.Carbs * scale
		t.Fat += it.Food.Fat * scale
	}
	return t
}

// ListDiets returns the user's diets with totals, optionally limited to
// one date (YYYY-MM-DD).
func (s *DietService) ListDiets(userID uint, date string) ([]DietWithTotals, error) {
	q := s.db.Preload("Items.Food").Where("user_id = ?", userID)
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", date)
		}
		q = q.Where("date = ?", day)
	}
	var diets []models.Diet
	if err := q.Order("created_at DESC").Find(&diets).Error; err != nil {
		return nil, err
	}
	out := make([]DietWithTotals, 0, len(diets))
	for i := range diets {
		out = append(out, DietWithTotals{Diet: diets[i], NutritionTotals: Aggregate(&diets[i])})
	}
	return out, nil
}

// GetDiet returns one diet with totals, scoped to the owning user. The
// totals go through the per-diet cache; every diet mutation removes the
// cache entry so a stale total never survives a write.
func (s *DietService) GetDiet(ctx context.Context, userID, dietID uint) (*DietWithTotals, error) {
	diet, err := s.findUserDiet(s.db.Preload("Items.Food"), userID, dietID)
	if err != nil {
		return nil, err
	}

	key := dietCacheKey(dietID)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var totals models.NutritionTotals
			if err := json.Unmarshal(raw, &totals); err == nil {
				return &DietWithTotals{Diet: *diet, NutritionTotals: totals}, nil
			}
		}
	}

	totals := Aggregate(diet)
	if s.cache != nil {
		if raw, err := json.Marshal(totals); err == nil {
			s.cache.Set(ctx, key, raw, dietCacheTTL)
		}
	}
	return &DietWithTotals{Diet: *diet, NutritionTotals: totals}, nil
}

// CreateDiet makes one empty diet by explicit user action, outside the
// default-generation flow.
func (s *DietService) CreateDiet(userID uint, name, imageURL string) (*models.Diet, error) {
	if name == "" {
		return nil, fmt.Errorf("diet name is required")
	}
	diet := models.Diet{
		UserID:   userID,
		Name:     name,
		ImageURL: imageURL,
		Date:     time.Now().Truncate(24 * time.Hour),
	}
	if err := s.db.Create(&diet).Error; err != nil {
		return nil, err
	}
	return &diet, nil
}

// UpdateDiet changes the diet's name and/or image reference and drops
// its cache entry.
func (s *DietService) UpdateDiet(ctx context.Context, userID, dietID uint, name, imageURL string) (*models.Diet, error) {
	diet, err := s.findUserDiet(s.db, userID, dietID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		diet.Name = name
	}
	if imageURL != "" {
		diet.ImageURL = imageURL
	}
	if err := s.db.Save(diet).Error; err != nil {
		return nil, err
	}
	s.invalidateDiet(ctx, dietID)
	return diet, nil
}

// DeleteDiet removes the diet and its items in one transaction.
func (s *DietService) DeleteDiet(ctx context.Context, userID, dietID uint) error {
	diet, err := s.findUserDiet(s.db, userID, dietID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// hard-delete items so the (diet_id, food_id) unique index never
		// trips over soft-deleted leftovers
		if err := tx.Unscoped().Where("diet_id = ?", diet.ID).Delete(&models.DietItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(diet).Error
	})
	if err != nil {
		return err
	}
	s.invalidateDiet(ctx, dietID)
	return nil
}

func (s *DietService) findUserDiet(q *gorm.DB, userID, dietID uint) (*models.Diet, error) {
	var diet models.Diet
	if err := q.Where("id = ? AND user_id = ?", dietID, userID).First(&diet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("diet %d: %w", dietID, ErrNotFound)
		}
		return nil, err
	}
	return &diet, nil
}

func (s *DietService) invalidateDiet(ctx context.Context, dietID uint) {
	if s.cache != nil {
		s.cache.Delete(ctx, dietCacheKey(dietID))
	}
}

func dietCacheKey(dietID uint) string {
	return fmt.Sprintf("diet_nutrition_%d", dietID)
}
