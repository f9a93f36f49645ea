package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/model"
)

func (h *Handler) ListCourses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Repos.Courses.List(c.Request().Context()))
}

func (h *Handler) GetCourse(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	course, err := h.Repos.Courses.Get(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err, "course")
	}
	return c.JSON(http.StatusOK, course)
}

func (h *Handler) CreateCourse(c echo.Context) error {
	var req model.CreateCourse
	if ok, err := bind(c, &req); !ok {
		return err
	}
	course, err := h.Repos.Courses.Create(c.Request().Context(), req)
	if err != nil {
		return repoError(c, err, "course")
	}
	return c.JSON(http.StatusCreated, course)
}

func (h *Handler) UpdateCourse(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	var req model.UpdateCourse
	if ok, err := bind(c, &req); !ok {
		return err
	}
	course, err := h.Repos.Courses.Update(c.Request().Context(), id, req)
	if err != nil {
		return repoError(c, err, "course")
	}
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse refuses to delete a course that still has classes.
func (h *Handler) DeleteCourse(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if h.Repos.Classes.CountByCourse(ctx, model.IDFromInt(id)) > 0 {
		return message(c, http.StatusConflict, "course has classes")
	}
	if err := h.Repos.Courses.Delete(ctx, id); err != nil {
		return repoError(c, err, "course")
	}
	return message(c, http.StatusOK, "Course deleted successfully")
}
