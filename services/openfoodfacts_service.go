package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/07-main-teamproject/backend/models"
)

const (
	searchCacheTTL = 10 * time.Minute
	searchPageSize = 20
)

// OpenFoodFactsService talks to the OpenFoodFacts search and product
// endpoints and normalizes results into FoodCandidate values. Network
// failures degrade to whatever was accumulated so far: diet generation
// must not hard-fail because a third party is down.
type OpenFoodFactsService struct {
	baseURL string
	client  *http.Client
	cache   Cache
	log     *zap.Logger
}

func NewOpenFoodFactsService(baseURL string, timeout time.Duration, cache Cache, log *zap.Logger) *OpenFoodFactsService {
	if baseURL == "" {
		baseURL = "https://world.openfoodfacts.org"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenFoodFactsService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}
}

type offSearchPage struct {
	Products []json.RawMessage `json:"products"`
}

type offNutriments struct {
	EnergyKcal    float64 `json:"energy-kcal"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

type offProduct struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	Nutriments      *offNutriments `json:"nutriments"`
	IngredientsTags []string       `json:"ingredients_tags"`
	CategoriesTags  []string       `json:"categories_tags"`
	AllergensTags   []string       `json:"allergens_tags"`
	TracesTags      []string       `json:"traces_tags"`
	LabelsTags      []string       `json:"labels_tags"`
}

// Search pages through the search endpoint until maxResults candidates
// accumulated, maxPages exhausted, or a page yields no valid result.
// The error is non-nil only when the request failed before anything
// usable was collected; callers inside diet generation treat that the
// same as an empty result.
func (s *OpenFoodFactsService) Search(ctx context.Context, query string, maxResults, maxPages int) ([]models.FoodCandidate, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	cacheKey := searchCacheKey(query)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, cacheKey); ok {
			var cached []models.FoodCandidate
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var (
		results []models.FoodCandidate
		seen    = make(map[string]bool)
	)
	for page := 1; page <= maxPages && len(results) < maxResults; page++ {
		candidates, err := s.searchPage(ctx, query, page)
		if err != nil {
			s.log.Warn("openfoodfacts search failed",
				zap.String("query", query),
				zap.Int("page", page),
				zap.Error(err))
			if len(results) == 0 {
				return nil, fmt.Errorf("openfoodfacts search %q: %w", query, err)
			}
			break
		}
		if len(candidates) == 0 {
			break
		}
		for _, c := range candidates {
			if c.ExternalID == "" || seen[c.ExternalID] {
				continue
			}
			seen[c.ExternalID] = true
			results = append(results, c)
			if len(results) == maxResults {
				break
			}
		}
	}

	if s.cache != nil && len(results) > 0 {
		if raw, err := json.Marshal(results); err == nil {
			s.cache.Set(ctx, cacheKey, raw, searchCacheTTL)
		}
	}
	return results, nil
}

func (s *OpenFoodFactsService) searchPage(ctx context.Context, query string, page int) ([]models.FoodCandidate, error) {
	u := fmt.Sprintf(
		"%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d&page=%d",
		s.baseURL, url.QueryEscape(query), searchPageSize, page,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error %d", resp.StatusCode)
	}

	var pr offSearchPage
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	candidates := make([]models.FoodCandidate, 0, len(pr.Products))
	for _, raw := range pr.Products {
		var p offProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			// malformed entries are discarded, not counted
			continue
		}
		if c, ok := normalizeProduct(p); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// FetchByID looks up a single product by its OpenFoodFacts code.
func (s *OpenFoodFactsService) FetchByID(ctx context.Context, externalID string) (*models.FoodCandidate, error) {
	u := fmt.Sprintf("%s/api/v0/product/%s.json", s.baseURL, url.PathEscape(externalID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts product %s: %w", externalID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read product response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product %s: %w", externalID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product API error %d", resp.StatusCode)
	}

	var pr struct {
		Status  int        `json:"status"`
		Product offProduct `json:"product"`
	}
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if pr.Status != 1 {
		return nil, fmt.Errorf("product %s: %w", externalID, ErrNotFound)
	}
	if pr.Product.Code == "" {
		pr.Product.Code = externalID
	}
	c, ok := normalizeProduct(pr.Product)
	if !ok {
		return nil, fmt.Errorf("product %s has no usable nutrition data: %w", externalID, ErrNotFound)
	}
	return &c, nil
}

// normalizeProduct converts a raw product into a FoodCandidate. Products
// without a name or nutrient section are not usable. An allergen flag is
// set when the tag shows up in any of the ingredient, category, declared
// allergen, or trace tag lists.
func normalizeProduct(p offProduct) (models.FoodCandidate, bool) {
	if p.Code == "" || p.ProductName == "" || p.Nutriments == nil {
		return models.FoodCandidate{}, false
	}
	return models.FoodCandidate{
		ExternalID:     p.Code,
		Name:           p.ProductName,
		Calories:       p.Nutriments.EnergyKcal,
		Protein:        p.Nutriments.Proteins,
		Carbs:          p.Nutriments.Carbohydrates,
		Fat:            p.Nutriments.Fat,
		ContainsNuts:   p.hasTag(models.AllergyNuts),
		ContainsGluten: p.hasTag(models.AllergyGluten),
		ContainsDairy:  p.hasTag(models.AllergyDairy),
		Categories:     p.CategoriesTags,
		Ingredients:    p.IngredientsTags,
		Labels:         p.LabelsTags,
	}, true
}

func (p *offProduct) hasTag(tag string) bool {
	for _, list := range [][]string{p.IngredientsTags, p.CategoriesTags, p.AllergensTags, p.TracesTags} {
		for _, t := range list {
			// tags are namespaced, e.g. "en:nuts"
			if t == tag || strings.HasSuffix(t, ":"+tag) {
				return true
			}
		}
	}
	return false
}

func searchCacheKey(query string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(query)), " ", "_")
	return "food_search_" + normalized
}
