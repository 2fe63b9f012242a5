package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
)

func TestListTags(t *testing.T) {
	app := newTestApp(t)
	seedTag(t, app, "Dinner", "dinner")
	seedTag(t, app, "Breakfast", "breakfast")

	w := app.request(t, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tags []models.Tag
	decodeJSON(t, w, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)
}

func TestSearchIngredients(t *testing.T) {
	app := newTestApp(t)
	seedIngredient(t, app, "Salt", "g")
	seedIngredient(t, app, "Sea salt", "g")
	seedIngredient(t, app, "Basil", "g")

	w := app.request(t, http.MethodGet, "/api/v1/ingredients?name=sa", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ingredients []models.Ingredient
	decodeJSON(t, w, &ingredients)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Salt", ingredients[0].Name)
	assert.Equal(t, "Sea salt", ingredients[1].Name)
}

func TestGetIngredientNotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, http.MethodGet, "/api/v1/ingredients/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.request(t, http.MethodGet, "/api/v1/ingredients/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
