package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// RelationService manages the join rows behind favorites, the shopping
// basket and author subscriptions. All three share the same mark/unmark
// core: an existence pre-check for a friendly error, then a single-row
// insert or delete. The unique index on each join table is the actual
// arbiter of "at most one row per pair" - a concurrent duplicate that
// slips past the pre-check is rejected by the constraint and mapped to
// the same domain error.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

func mark[T any](db *gorm.DB, row *T, already error, cond string, args ...any) error {
	var count int64
	if err := db.Model(new(T)).Where(cond, args...).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return already
	}
	if err := db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return already
		}
		return err
	}
	return nil
}

func unmark[T any](db *gorm.DB, missing error, cond string, args ...any) error {
	res := db.Where(cond, args...).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missing
	}
	return nil
}

func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	row := &models.Favorite{UserID: userID, RecipeID: recipeID}
	return mark(s.db.WithContext(ctx), row, ErrAlreadyFavorited,
		"user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	return unmark[models.Favorite](s.db.WithContext(ctx), ErrNotFavorited,
		"user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (s *RelationService) AddToBasket(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	row := &models.BasketItem{UserID: userID, RecipeID: recipeID}
	return mark(s.db.WithContext(ctx), row, ErrAlreadyInBasket,
		"user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (s *RelationService) RemoveFromBasket(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	return unmark[models.BasketItem](s.db.WithContext(ctx), ErrNotInBasket,
		"user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (s *RelationService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	if followerID == authorID {
		return ErrSelfSubscribe
	}
	if err := s.userExists(ctx, authorID); err != nil {
		return err
	}
	row := &models.Follow{FollowerID: followerID, AuthorID: authorID}
	return mark(s.db.WithContext(ctx), row, ErrAlreadySubscribed,
		"follower_id = ? AND author_id = ?", followerID, authorID)
}

func (s *RelationService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	if err := s.userExists(ctx, authorID); err != nil {
		return err
	}
	return unmark[models.Follow](s.db.WithContext(ctx), ErrNotSubscribed,
		"follower_id = ? AND author_id = ?", followerID, authorID)
}

// Subscriptions lists the authors the user follows, newest subscription
// first, with page/limit pagination.
func (s *RelationService) Subscriptions(ctx context.Context, followerID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", followerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := base.Order("follows.created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// FavoritedSet reports which of the given recipes the user has
// favorited; used to annotate recipe listings in one query.
func (s *RelationService) FavoritedSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.recipeIDSet(ctx, &models.Favorite{}, userID, recipeIDs)
}

// BasketSet is FavoritedSet for basket rows.
func (s *RelationService) BasketSet(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.recipeIDSet(ctx, &models.BasketItem{}, userID, recipeIDs)
}

func (s *RelationService) IsSubscribed(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (s *RelationService) recipeIDSet(ctx context.Context, model any, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *RelationService) recipeExists(ctx context.Context, recipeID uuid.UUID) error {
	return existsOr(s.db.WithContext(ctx), &models.Recipe{}, recipeID, ErrRecipeNotFound)
}

func (s *RelationService) userExists(ctx context.Context, userID uuid.UUID) error {
	return existsOr(s.db.WithContext(ctx), &models.User{}, userID, ErrUserNotFound)
}

func existsOr(db *gorm.DB, model any, id uuid.UUID, notFound error) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}
