package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/infrastructure/session"
	"github.com/oksasatya/recipe-api/pkg/response"
	"github.com/oksasatya/recipe-api/pkg/validation"
)

type RecipeHandler struct {
	Recipes *application.RecipeService
	Logger  *logrus.Logger
}

func NewRecipeHandler(recipes *application.RecipeService, logger *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{Recipes: recipes, Logger: logger}
}

type createRecipeRequest struct {
	Title             *string `json:"title" binding:"required"`
	Instructions      *string `json:"instructions" binding:"required"`
	MinutesToComplete *int    `json:"minutes_to_complete"`
}

// Index GET /recipes
func (h *RecipeHandler) Index(c *gin.Context) {
	sess := session.FromContext(c)
	if !sess.Authenticated() {
		response.Unauthorized(c)
		return
	}
	id, _ := sess.UserID()
	recipes, err := h.Recipes.ListForUser(c.Request.Context(), id)
	if err != nil {
		unprocessable(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, newRecipeList(recipes))
}

// Create POST /recipes. Only the presence of a user id is required here, not
// a valid one; the recipe is stored unowned when it does not resolve.
func (h *RecipeHandler) Create(c *gin.Context) {
	sess := session.FromContext(c)
	id, ok := sess.UserID()
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unprocessable(c, validation.ToMessages(err)...)
		return
	}
	in := application.CreateRecipeInput{Title: *req.Title, Instructions: *req.Instructions}
	if req.MinutesToComplete != nil {
		in.MinutesToComplete = *req.MinutesToComplete
	}

	rec, err := h.Recipes.Create(c.Request.Context(), id, in)
	if err != nil {
		unprocessable(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, newRecipeJSON(rec))
}

// Search GET /recipes/search?q=&limit=
func (h *RecipeHandler) Search(c *gin.Context) {
	sess := session.FromContext(c)
	if !sess.Authenticated() {
		response.Unauthorized(c)
		return
	}
	id, _ := sess.UserID()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Unprocessable(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recipes, err := h.Recipes.Search(c.Request.Context(), id, c.Query("q"), limit)
	if err != nil {
		unprocessable(c, h.Logger, err)
		return
	}
	h.Logger.WithFields(logrus.Fields{"user_id": id, "results": len(recipes)}).Debug("recipe search")
	response.JSON(c, http.StatusOK, newRecipeList(recipes))
}
