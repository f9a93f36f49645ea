package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/model"
)

// classOf loads the class an assessment belongs to.
func (h *Handler) classOf(c echo.Context, classID int64) (model.Class, error) {
	return h.Repos.Classes.Get(c.Request().Context(), classID)
}

// ListAssessments returns the assessments of every class the caller can
// see.
func (h *Handler) ListAssessments(c echo.Context) error {
	ctx := c.Request().Context()
	out := h.Repos.Assessments.List(ctx, func(a model.Assessment) bool {
		class, err := h.classOf(c, a.ClassID)
		return err == nil && h.visibleClass(ctx, c, class)
	})
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAssessment(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	a, err := h.Repos.Assessments.Get(ctx, id)
	if err != nil {
		return repoError(c, err, "assessment")
	}
	if class, err := h.classOf(c, a.ClassID); err != nil || !h.visibleClass(ctx, c, class) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	return c.JSON(http.StatusOK, a)
}

// CreateAssessment adds an assessment to a class the caller teaches.
func (h *Handler) CreateAssessment(c echo.Context) error {
	var req model.CreateAssessment
	if ok, err := bind(c, &req); !ok {
		return err
	}
	class, err := h.classOf(c, req.ClassID)
	if err != nil {
		return repoError(c, err, "class")
	}
	if !ownsClass(c, class) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	uid, _ := currentUserID(c)
	a := h.Repos.Assessments.Create(c.Request().Context(), uid, req, h.Clock.Now())
	return c.JSON(http.StatusCreated, a)
}

// loadOwnedAssessment resolves :id to an assessment of a class the caller
// teaches.
func (h *Handler) loadOwnedAssessment(c echo.Context) (model.Assessment, bool, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return model.Assessment{}, false, message(c, http.StatusBadRequest, "invalid id")
	}
	a, err := h.Repos.Assessments.Get(c.Request().Context(), id)
	if err != nil {
		return model.Assessment{}, false, repoError(c, err, "assessment")
	}
	class, err := h.classOf(c, a.ClassID)
	if err != nil || !ownsClass(c, class) {
		return model.Assessment{}, false, message(c, http.StatusForbidden, "forbidden")
	}
	return a, true, nil
}

func (h *Handler) UpdateAssessment(c echo.Context) error {
	a, ok, err := h.loadOwnedAssessment(c)
	if !ok {
		return err
	}
	var req model.UpdateAssessment
	if ok, err := bind(c, &req); !ok {
		return err
	}
	updated, err := h.Repos.Assessments.Update(c.Request().Context(), a.ID, req, h.Clock.Now())
	if err != nil {
		return repoError(c, err, "assessment")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteAssessment removes the assessment and its scores.
func (h *Handler) DeleteAssessment(c echo.Context) error {
	a, ok, err := h.loadOwnedAssessment(c)
	if !ok {
		return err
	}
	ctx := c.Request().Context()
	if err := h.Repos.Assessments.Delete(ctx, a.ID); err != nil {
		return repoError(c, err, "assessment")
	}
	h.Repos.Scores.DeleteByAssessment(ctx, a.ID)
	return message(c, http.StatusOK, "Assessment deleted successfully")
}
