package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shoppingListCacheTTL = 5 * time.Minute

// ShoppingListItem is one aggregated line of a user's shopping list.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

// ShoppingListService aggregates ingredient quantities across the
// recipes in a user's basket and renders the downloadable document.
// The Redis client is optional; without it every download recomputes.
type ShoppingListService struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewShoppingListService(db *gorm.DB, cache *redis.Client) *ShoppingListService {
	return &ShoppingListService{db: db, cache: cache}
}

// Aggregate groups every ingredient of every basket recipe by
// (name, measurement unit) and sums the amounts. An empty basket
// yields an empty slice. Ordered by ingredient name for determinism.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	items := []ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN basket_items ON basket_items.recipe_id = recipe_ingredients.recipe_id").
		Where("basket_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// RenderLines formats the aggregated list one ingredient per line.
func RenderLines(items []ShoppingListItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s %s - %d", item.Name, item.MeasurementUnit, item.Amount))
	}
	return lines
}

// Document returns the rendered shopping list as flat text, serving a
// cached copy when one exists.
func (s *ShoppingListService) Document(ctx context.Context, userID uuid.UUID) (string, error) {
	key := s.cacheKey(userID)
	if s.cache != nil {
		if doc, err := s.cache.Get(ctx, key).Result(); err == nil {
			return doc, nil
		}
	}

	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}

	doc := strings.Join(RenderLines(items), "\n")
	if doc != "" {
		doc += "\n"
	}

	if s.cache != nil {
		// Best effort; a failed cache write must not fail the download.
		s.cache.Set(ctx, key, doc, shoppingListCacheTTL)
	}
	return doc, nil
}

// Invalidate drops the cached document after a basket change.
func (s *ShoppingListService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.Del(ctx, s.cacheKey(userID))
	}
}

func (s *ShoppingListService) cacheKey(userID uuid.UUID) string {
	return "shopping_list:" + userID.String()
}
