package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/recipeapi/models"
	"github.com/padraicbc/recipeapi/session"
	"github.com/padraicbc/recipeapi/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	credentials
	ImageURL *string `json:"image_url"`
	Bio      *string `json:"bio"`
}

// Signup creates a user and signs them in.
func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return unprocessable(err)
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		return unprocessable(errors.New("username and password are required"))
	}

	user, err := models.NewUser(req.Username, req.Password, req.ImageURL, req.Bio)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return unprocessable(err)
		}
		return err
	}

	if err := h.repo.CreateUser(c.Request().Context(), user); err != nil {
		if store.IsRejected(err) {
			h.log.Warn("signup rejected", zap.String("username", user.Username), zap.Error(err))
			return unprocessable(err)
		}
		return err
	}

	if err := h.sessions.Grant(c, user.ID); err != nil {
		return err
	}

	h.log.Info("user signed up", zap.Int64("user_id", user.ID))
	return c.JSON(http.StatusCreated, user)
}

// CheckSession returns the signed-in user.
func (h *Handler) CheckSession(c echo.Context) error {
	uid, ok := session.UserID(c)
	if !ok {
		return unauthorized()
	}

	user, err := h.repo.FindUserByID(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return unauthorized()
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Login verifies credentials and starts a session only when they match.
func (h *Handler) Login(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return unauthorized().SetInternal(err)
	}

	user, err := h.repo.FindUserByUsername(c.Request().Context(), creds.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return unauthorized()
		}
		return err
	}

	if !user.Authenticate(creds.Password) {
		h.log.Info("login failed", zap.Int64("user_id", user.ID))
		return unauthorized()
	}

	if err := h.sessions.Grant(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Logout clears the session user.
func (h *Handler) Logout(c echo.Context) error {
	if _, ok := session.UserID(c); !ok {
		return unauthorized()
	}
	if err := h.sessions.Revoke(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
