package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/middleware"
	"github.com/iliyamo/classroom-client/internal/model"
)

// canSeeStudent: students only see their own scores.
func canSeeStudent(c echo.Context, studentID int64) bool {
	if middleware.Role(c) != model.RoleStudent {
		return true
	}
	uid, _ := currentUserID(c)
	return uid == studentID
}

// CreateScore records a score for an enrolled student.  The route is
// restricted to teachers.
func (h *Handler) CreateScore(c echo.Context) error {
	var req model.CreateScore
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.Repos.Assessments.Get(ctx, req.AssessmentID)
	if err != nil {
		return repoError(c, err, "assessment")
	}
	class, err := h.classOf(c, a.ClassID)
	if err != nil || !ownsClass(c, class) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	if !h.Repos.Classes.IsEnrolled(ctx, a.ClassID, req.StudentID) {
		return message(c, http.StatusBadRequest, "student is not enrolled in this class")
	}
	s, err := h.Repos.Scores.Create(ctx, req, h.Clock.Now())
	if err != nil {
		return repoError(c, err, "score")
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) GetScore(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	s, err := h.Repos.Scores.Get(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err, "score")
	}
	if !canSeeStudent(c, s.StudentID) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateScore(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	var req model.UpdateScore
	if ok, err := bind(c, &req); !ok {
		return err
	}
	s, err := h.Repos.Scores.Update(c.Request().Context(), id, req, h.Clock.Now())
	if err != nil {
		return repoError(c, err, "score")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteScore(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Repos.Scores.Delete(c.Request().Context(), id); err != nil {
		return repoError(c, err, "score")
	}
	return message(c, http.StatusOK, "Score deleted successfully")
}

func (h *Handler) StudentScores(c echo.Context) error {
	studentID, ok := pathID(c, "student_id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid student id")
	}
	if !canSeeStudent(c, studentID) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	return c.JSON(http.StatusOK, h.Repos.Scores.ByStudent(c.Request().Context(), studentID))
}

// StudentAssessmentScore finds a student's score by assessment title.
func (h *Handler) StudentAssessmentScore(c echo.Context) error {
	studentID, ok := pathID(c, "student_id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid student id")
	}
	if !canSeeStudent(c, studentID) {
		return message(c, http.StatusForbidden, "forbidden")
	}
	title := strings.TrimSpace(c.QueryParam("title"))
	if title == "" {
		return message(c, http.StatusBadRequest, "title is required")
	}
	ctx := c.Request().Context()
	a, err := h.Repos.Assessments.FindByTitle(ctx, title)
	if err != nil {
		return repoError(c, err, "assessment")
	}
	for _, s := range h.Repos.Scores.ByStudent(ctx, studentID) {
		if s.AssessmentID == a.ID {
			return c.JSON(http.StatusOK, s)
		}
	}
	return message(c, http.StatusNotFound, "score not found")
}
