package handlers

import (
	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/recipeapi/middleware"
)

// Register installs the session loader, the authorization gate and the API routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.Use(h.sessions.Load())
	e.Use(mw.RequireUser("/signup", "/login", "/check_session"))

	// Public
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
	e.GET("/check_session", h.CheckSession)

	// Protected
	e.DELETE("/logout", h.Logout)
	e.GET("/recipes", h.Recipes)
	e.POST("/recipes", h.CreateRecipe)
}
