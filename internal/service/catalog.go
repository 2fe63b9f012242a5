package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// CatalogService serves the tag and ingredient reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).Order("slug ASC").Find(&tags).Error
	return tags, err
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// SearchIngredients ranks prefix matches ahead of substring matches,
// alphabetically within each group. An empty query lists everything.
func (s *CatalogService) SearchIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	db := s.db.WithContext(ctx)
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "" {
		var all []models.Ingredient
		err := db.Order("name ASC").Find(&all).Error
		return all, err
	}

	var prefix []models.Ingredient
	if err := db.Where("LOWER(name) LIKE ?", name+"%").Order("name ASC").Find(&prefix).Error; err != nil {
		return nil, err
	}

	var contains []models.Ingredient
	if err := db.Where("LOWER(name) LIKE ? AND LOWER(name) NOT LIKE ?", "%"+name+"%", name+"%").
		Order("name ASC").Find(&contains).Error; err != nil {
		return nil, err
	}

	return append(prefix, contains...), nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// GetOrCreateIngredient upserts one ingredient by (name, unit) and
// reports whether a new row was created. The bulk importer calls this
// per CSV row to count created vs skipped.
func (s *CatalogService) GetOrCreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)

	var existing models.Ingredient
	err := s.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, unit).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent import; fetch the winner.
			err = s.db.WithContext(ctx).
				Where("name = ? AND measurement_unit = ?", name, unit).
				First(&existing).Error
			if err != nil {
				return nil, false, err
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &ing, true, nil
}

// CreateTag is used by seeding and admin tooling; the API itself is
// read-only for tags.
func (s *CatalogService) CreateTag(ctx context.Context, name, color, slug string) (*models.Tag, error) {
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
