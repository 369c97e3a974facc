package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/recipeapi/models"
	"github.com/padraicbc/recipeapi/session"
	"github.com/padraicbc/recipeapi/store"
)

type createRecipeRequest struct {
	Title             string `json:"title"`
	Instructions      string `json:"instructions"`
	MinutesToComplete *int   `json:"minutes_to_complete"`
}

// Recipes returns the signed-in user's recipes in creation order.
func (h *Handler) Recipes(c echo.Context) error {
	uid, ok := session.UserID(c)
	if !ok {
		return unauthorized()
	}

	recipes, err := h.repo.ListRecipesByOwner(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	return c.JSON(http.StatusOK, recipes)
}

// CreateRecipe adds a recipe owned by the signed-in user.
func (h *Handler) CreateRecipe(c echo.Context) error {
	uid, ok := session.UserID(c)
	if !ok {
		return unauthorized()
	}

	var req createRecipeRequest
	if err := c.Bind(&req); err != nil {
		return unprocessable(err)
	}

	recipe := &models.Recipe{
		Title:             req.Title,
		Instructions:      req.Instructions,
		MinutesToComplete: req.MinutesToComplete,
		UserID:            uid,
	}
	if err := recipe.Validate(); err != nil {
		return unprocessable(err)
	}

	if err := h.repo.CreateRecipe(c.Request().Context(), recipe); err != nil {
		if store.IsRejected(err) || errors.Is(err, models.ErrValidation) {
			h.log.Warn("recipe rejected", zap.Int64("user_id", uid), zap.Error(err))
			return unprocessable(err)
		}
		return err
	}
	return c.JSON(http.StatusCreated, recipe)
}
