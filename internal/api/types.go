package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/models"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type recipeIngredientRequest struct {
	ID     uuid.UUID `json:"id"`
	Amount int64     `json:"amount"`
}

type recipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
	Tags        []uuid.UUID               `json:"tags"`
	Ingredients []recipeIngredientRequest `json:"ingredients"`
}

type userResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type ingredientAmountResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int64     `json:"amount"`
}

type recipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Name             string                     `json:"name"`
	Text             string                     `json:"text"`
	ImageURL         string                     `json:"image_url"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
	Author           userResponse               `json:"author"`
	Tags             []models.Tag               `json:"tags"`
	Ingredients      []ingredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
}

func newUserResponse(u *models.User, subscribed bool) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func newRecipeResponse(r *models.Recipe, favorited, inBasket bool) recipeResponse {
	ingredients := make([]ingredientAmountResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, ingredientAmountResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return recipeResponse{
		ID:               r.ID,
		Name:             r.Name,
		Text:             r.Text,
		ImageURL:         r.ImageURL,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
		Author:           newUserResponse(&r.Author, false),
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inBasket,
	}
}
