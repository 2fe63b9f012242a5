package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/service"
)

type UserHandler struct {
	authService     *service.AuthService
	relationService *service.RelationService
}

func NewUserHandler(authService *service.AuthService, relationService *service.RelationService) *UserHandler {
	return &UserHandler{
		authService:     authService,
		relationService: relationService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth, optionalAuth gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/subscriptions", auth, h.ListSubscriptions)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var subscribed bool
	if viewerID, _, authenticated := currentUser(c); authenticated {
		subscribed, err = h.relationService.IsSubscribed(c.Request.Context(), viewerID, id)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, newUserResponse(user, subscribed))
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	authors, total, err := h.relationService.Subscriptions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]userResponse, 0, len(authors))
	for i := range authors {
		results = append(results, newUserResponse(&authors[i], true))
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   total,
		"results": results,
	})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	h.toggleSubscription(c, h.relationService.Subscribe, http.StatusCreated)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	h.toggleSubscription(c, h.relationService.Unsubscribe, http.StatusNoContent)
}

func (h *UserHandler) toggleSubscription(c *gin.Context, op func(ctx context.Context, followerID, authorID uuid.UUID) error, successStatus int) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	followerID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := op(c.Request.Context(), followerID, authorID); err != nil {
		respondError(c, err)
		return
	}

	if successStatus == http.StatusNoContent {
		c.Status(http.StatusNoContent)
		return
	}

	author, err := h.authService.GetUser(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(successStatus, newUserResponse(author, true))
}
