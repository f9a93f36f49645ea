package handler // handler defines the http handlers of the development LMS API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/middleware"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
)

// Handler bundles the repositories and clock every resource handler needs.
type Handler struct {
	Repos *repository.Repos
	Clock clockwork.Clock
}

func New(repos *repository.Repos, clock clockwork.Clock) *Handler {
	if repos == nil {
		panic("nil repositories passed to handler.New")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{Repos: repos, Clock: clock}
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, model.Message{Message: msg})
}

// bind decodes the JSON body into dst and runs the registered validator.
// It writes the 400/422 response itself and reports false when it did.
func bind(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, message(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		var fe *FieldErrors
		if errors.As(err, &fe) {
			return false, c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"message": "Validation error",
				"errors":  fe.Fields,
			})
		}
		return false, message(c, http.StatusBadRequest, err.Error())
	}
	return true, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func currentUserID(c echo.Context) (int64, bool) { return middleware.UserID(c) }

// currentUser loads the authenticated user.  A token for a user that no
// longer exists is treated as unauthenticated.
func (h *Handler) currentUser(c echo.Context) (repository.User, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return h.Repos.Users.GetByID(c.Request().Context(), id)
}

// repoError maps repository sentinels onto HTTP responses.
func repoError(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return message(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrForbidden):
		return message(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return message(c, http.StatusConflict, what+" already exists")
	default:
		c.Logger().Errorf("%s: %v", what, err)
		return message(c, http.StatusInternalServerError, "internal error")
	}
}

func idOf(id model.ID) int64 {
	n, _ := strconv.ParseInt(id.String(), 10, 64)
	return n
}

// pageParams reads page and per_page, capping the page size at 100.
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	page, perPage = model.PageParams(page, perPage)
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func newPage[T any](data []T, total, page, perPage int) model.Page[T] {
	pages := (total + perPage - 1) / perPage
	return model.Page[T]{Data: data, Total: total, Page: page, PerPage: perPage, TotalPages: pages}
}
