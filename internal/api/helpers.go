package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/service"
)

// respondError translates domain errors into HTTP statuses: missing
// targets are 404, broken invariants and bad input are 400, permission
// failures 403, anything unknown 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrIngredientNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrAlreadyInBasket),
		errors.Is(err, service.ErrNotInBasket),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, service.ErrSelfSubscribe),
		errors.Is(err, service.ErrInvalidRecipe),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotRecipeAuthor):
		status = http.StatusForbidden
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUser pulls the authenticated identity set by the auth
// middleware out of the request context.
func currentUser(c *gin.Context) (uuid.UUID, bool, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false, false
	}
	return userID, c.GetBool("is_admin"), true
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
