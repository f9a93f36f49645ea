package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
	"github.com/iliyamo/classroom-client/internal/utils"
)

// Me returns the authenticated user's profile.
func (h *Handler) Me(c echo.Context) error {
	u, err := h.currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, u.Model())
}

// UpdateMe applies a partial profile update.
func (h *Handler) UpdateMe(c echo.Context) error {
	u, err := h.currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "unknown user")
	}
	var req model.UpdateProfile
	if ok, err := bind(c, &req); !ok {
		return err
	}
	updated, err := h.Repos.Users.UpdateProfile(c.Request().Context(), u.ID, req, h.Clock.Now())
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return message(c, http.StatusConflict, "email already exists")
	case errors.Is(err, utils.ErrPasswordTooShort):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation error",
			"errors":  map[string][]string{"password": {"must be at least 6 characters"}},
		})
	case err != nil:
		return repoError(c, err, "user")
	}
	return c.JSON(http.StatusOK, updated.Model())
}

// ListUsers returns one page of users.  Admin only.
func (h *Handler) ListUsers(c echo.Context) error {
	page, perPage := pageParams(c)
	rows, total := h.Repos.Users.List(c.Request().Context(), page, perPage)
	out := make([]model.User, len(rows))
	for i, u := range rows {
		out[i] = u.Model()
	}
	return c.JSON(http.StatusOK, newPage(out, total, page, perPage))
}
