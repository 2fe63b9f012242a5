package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

const maxImageSize = 5 << 20 // 5 MiB

type RecipeHandler struct {
	recipeService       *service.RecipeService
	relationService     *service.RelationService
	shoppingListService *service.ShoppingListService
	imageService        *service.ImageService // nil when S3 is not configured
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	relationService *service.RelationService,
	shoppingListService *service.ShoppingListService,
	imageService *service.ImageService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
		imageService:        imageService,
	}
}

// RegisterRoutes wires the recipe endpoints. Reads are public (with
// optional viewer context for the per-user flags); writes require auth
// plus any write guards (rate limiting).
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, auth, optionalAuth gin.HandlerFunc, writeGuards ...gin.HandlerFunc) {
	write := append([]gin.HandlerFunc{auth}, writeGuards...)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)

		recipes.POST("", append(write, h.CreateRecipe)...)
		recipes.PUT("/:id", append(write, h.UpdateRecipe)...)
		recipes.DELETE("/:id", append(write, h.DeleteRecipe)...)
		recipes.POST("/:id/image", append(write, h.UploadImage)...)

		recipes.POST("/:id/favorite", auth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", auth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddToBasket)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromBasket)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	opts := service.ListRecipesOptions{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 10),
	}

	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		opts.AuthorID = &id
	}
	if tags := c.Query("tags"); tags != "" {
		for _, slug := range strings.Split(tags, ",") {
			if slug = strings.TrimSpace(slug); slug != "" {
				opts.TagSlugs = append(opts.TagSlugs, slug)
			}
		}
	}

	viewerID, _, authenticated := currentUser(c)
	if authenticated {
		if c.Query("is_favorited") == "1" {
			opts.FavoritedBy = &viewerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			opts.InBasketOf = &viewerID
		}
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	favorited := map[uuid.UUID]bool{}
	inBasket := map[uuid.UUID]bool{}
	if authenticated && len(recipes) > 0 {
		ids := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			ids = append(ids, r.ID)
		}
		if favorited, err = h.relationService.FavoritedSet(c.Request.Context(), viewerID, ids); err != nil {
			respondError(c, err)
			return
		}
		if inBasket, err = h.relationService.BasketSet(c.Request.Context(), viewerID, ids); err != nil {
			respondError(c, err)
			return
		}
	}

	results := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		results = append(results, newRecipeResponse(r, favorited[r.ID], inBasket[r.ID]))
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   total,
		"recipes": results,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var favorited, inBasket bool
	if viewerID, _, authenticated := currentUser(c); authenticated {
		favSet, err := h.relationService.FavoritedSet(c.Request.Context(), viewerID, []uuid.UUID{id})
		if err != nil {
			respondError(c, err)
			return
		}
		basketSet, err := h.relationService.BasketSet(c.Request.Context(), viewerID, []uuid.UUID{id})
		if err != nil {
			respondError(c, err)
			return
		}
		favorited, inBasket = favSet[id], basketSet[id]
	}

	c.JSON(http.StatusOK, newRecipeResponse(recipe, favorited, inBasket))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, recipeInput(&req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newRecipeResponse(recipe, false, false))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, userID, isAdmin, recipeInput(&req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(recipe, false, false))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id, userID, isAdmin); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	if h.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, isAdmin, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	// Check ownership before touching object storage.
	if err := h.recipeService.AuthorizeMutation(c.Request.Context(), id, userID, isAdmin); err != nil {
		respondError(c, err)
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if len(data) > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 5 MiB limit"})
		return
	}

	url, err := h.imageService.UploadRecipeImage(c.Request.Context(), id, data, http.DetectContentType(data))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.recipeService.SetImageURL(c.Request.Context(), id, userID, isAdmin, url); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, h.relationService.AddFavorite, http.StatusCreated, false)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.toggle(c, h.relationService.RemoveFavorite, http.StatusNoContent, false)
}

func (h *RecipeHandler) AddToBasket(c *gin.Context) {
	h.toggle(c, h.relationService.AddToBasket, http.StatusCreated, true)
}

func (h *RecipeHandler) RemoveFromBasket(c *gin.Context) {
	h.toggle(c, h.relationService.RemoveFromBasket, http.StatusNoContent, true)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	doc, err := h.shoppingListService.Document(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="ingredients.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

// toggle runs one mark/unmark operation against the recipe in the
// path. Basket changes additionally drop the cached shopping list.
func (h *RecipeHandler) toggle(c *gin.Context, op func(ctx context.Context, userID, recipeID uuid.UUID) error, successStatus int, basket bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := op(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	if basket {
		h.shoppingListService.Invalidate(c.Request.Context(), userID)
	}

	if successStatus == http.StatusNoContent {
		c.Status(http.StatusNoContent)
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(successStatus, shortRecipe(recipe))
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func recipeInput(req *recipeRequest) *service.RecipeInput {
	ingredients := make([]service.RecipeIngredientInput, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredients = append(ingredients, service.RecipeIngredientInput{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}
	return &service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: ingredients,
	}
}

func shortRecipe(r *models.Recipe) gin.H {
	return gin.H{
		"id":           r.ID,
		"name":         r.Name,
		"image_url":    r.ImageURL,
		"cooking_time": r.CookingTime,
	}
}
