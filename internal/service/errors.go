package service

import "errors"

// Domain errors surfaced to the API layer. The handlers translate
// these into 4xx responses; anything else is a 500.
var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrInvalidRecipe      = errors.New("invalid recipe")
	ErrInvalidImage       = errors.New("invalid image")

	ErrAlreadyFavorited = errors.New("recipe already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")

	ErrAlreadyInBasket = errors.New("recipe already in shopping basket")
	ErrNotInBasket     = errors.New("recipe is not in shopping basket")

	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotSubscribed     = errors.New("not subscribed to this author")
	ErrSelfSubscribe     = errors.New("cannot subscribe to yourself")

	ErrNotRecipeAuthor    = errors.New("only the author can modify this recipe")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUsernameTaken      = errors.New("a user with this username already exists")
	ErrInvalidToken       = errors.New("invalid token")
)
