package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testdb"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func seedTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func seedRecipe(t *testing.T, db *gorm.DB, author *models.User, name string) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		Name:        name,
		Text:        "test recipe",
		CookingTime: 30,
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func addIngredient(t *testing.T, db *gorm.DB, recipe *models.Recipe, ing *models.Ingredient, amount int64) {
	t.Helper()
	row := &models.RecipeIngredient{
		RecipeID:     recipe.ID,
		IngredientID: ing.ID,
		Amount:       amount,
	}
	require.NoError(t, db.Create(row).Error)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testdb.New(t)
}
