package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// RecipeService handles recipe CRUD. Mutations are restricted to the
// recipe's author or an admin.
type RecipeService struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		db:        db,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// RecipeIngredientInput pairs an ingredient with its quantity.
type RecipeIngredientInput struct {
	IngredientID uuid.UUID
	Amount       int64
}

// RecipeInput is the mutable part of a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []RecipeIngredientInput
}

// ListRecipesOptions filters and paginates recipe listings.
type ListRecipesOptions struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InBasketOf  *uuid.UUID
	Page        int
	Limit       int
}

func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, input *RecipeInput) (*models.Recipe, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        strings.TrimSpace(input.Name),
		Text:        s.sanitizer.Sanitize(input.Text),
		CookingTime: input.CookingTime,
		AuthorID:    authorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := s.checkIngredients(tx, input.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return s.replaceIngredients(tx, recipe.ID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, id, userID uuid.UUID, isAdmin bool, input *RecipeInput) (*models.Recipe, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID && !isAdmin {
		return nil, ErrNotRecipeAuthor
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := s.checkIngredients(tx, input.Ingredients); err != nil {
			return err
		}
		updates := map[string]any{
			"name":         strings.TrimSpace(input.Name),
			"text":         s.sanitizer.Sanitize(input.Text),
			"cooking_time": input.CookingTime,
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return s.replaceIngredients(tx, id, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe removes the recipe together with its ingredient rows
// and every favorite and basket row pointing at it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID && !isAdmin {
		return ErrNotRecipeAuthor
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.BasketItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

func (s *RecipeService) ListRecipes(ctx context.Context, opts ListRecipesOptions) ([]models.Recipe, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 10
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if opts.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *opts.AuthorID)
	}
	if len(opts.TagSlugs) > 0 {
		// Subquery rather than a join so a recipe matching several of
		// the requested tags is not listed twice.
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", opts.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if opts.FavoritedBy != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *opts.FavoritedBy)
	}
	if opts.InBasketOf != nil {
		query = query.
			Joins("JOIN basket_items ON basket_items.recipe_id = recipes.id").
			Where("basket_items.user_id = ?", *opts.InBasketOf)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC, recipes.id DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// AuthorizeMutation reports whether the user may modify the recipe.
func (s *RecipeService) AuthorizeMutation(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID && !isAdmin {
		return ErrNotRecipeAuthor
	}
	return nil
}

// SetImageURL records the stored image location on the recipe.
func (s *RecipeService) SetImageURL(ctx context.Context, id, userID uuid.UUID, isAdmin bool, url string) error {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID && !isAdmin {
		return ErrNotRecipeAuthor
	}
	return s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).Update("image_url", url).Error
}

func (s *RecipeService) validateInput(input *RecipeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if input.CookingTime < 1 {
		return fmt.Errorf("%w: cooking time must be at least one minute", ErrInvalidRecipe)
	}
	if len(input.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRecipe)
	}
	seen := make(map[uuid.UUID]bool, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		if ing.Amount < 1 {
			return fmt.Errorf("%w: ingredient amount must be positive", ErrInvalidRecipe)
		}
		if seen[ing.IngredientID] {
			return fmt.Errorf("%w: duplicate ingredient", ErrInvalidRecipe)
		}
		seen[ing.IngredientID] = true
	}
	return nil
}

func (s *RecipeService) resolveTags(tx *gorm.DB, tagIDs []uuid.UUID) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

func (s *RecipeService) checkIngredients(tx *gorm.DB, inputs []RecipeIngredientInput) error {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.IngredientID)
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrIngredientNotFound
	}
	return nil
}

func (s *RecipeService) replaceIngredients(tx *gorm.DB, recipeID uuid.UUID, inputs []RecipeIngredientInput) error {
	for _, in := range inputs {
		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: in.IngredientID,
			Amount:       in.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
