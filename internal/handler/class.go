package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/middleware"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
)

// visibleClass reports whether the caller may read a class: admins see
// every class, teachers the classes they teach, students the classes they
// attend.
func (h *Handler) visibleClass(ctx context.Context, c echo.Context, class model.Class) bool {
	uid, _ := middleware.UserID(c)
	switch middleware.Role(c) {
	case model.RoleAdmin:
		return true
	case model.RoleTeacher:
		return idOf(class.TeacherID) == uid
	default:
		return h.Repos.Classes.IsEnrolled(ctx, idOf(class.ID), uid)
	}
}

// ownsClass reports whether the caller may modify a class.
func ownsClass(c echo.Context, class model.Class) bool {
	uid, _ := middleware.UserID(c)
	return middleware.Role(c) == model.RoleAdmin || idOf(class.TeacherID) == uid
}

// loadClass resolves the :id parameter and applies check.  On failure it
// writes the response and returns false.
func (h *Handler) loadClass(c echo.Context, check func(model.Class) bool) (model.Class, bool, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return model.Class{}, false, message(c, http.StatusBadRequest, "invalid id")
	}
	class, err := h.Repos.Classes.Get(c.Request().Context(), id)
	if err != nil {
		return model.Class{}, false, repoError(c, err, "class")
	}
	if !check(class) {
		return model.Class{}, false, message(c, http.StatusForbidden, "forbidden")
	}
	return class, true, nil
}

func (h *Handler) ListClasses(c echo.Context) error {
	ctx := c.Request().Context()
	page, perPage := pageParams(c)
	rows, total := h.Repos.Classes.List(ctx, func(class model.Class) bool {
		return h.visibleClass(ctx, c, class)
	}, page, perPage)
	return c.JSON(http.StatusOK, newPage(rows, total, page, perPage))
}

// GetClass returns the class with its course and teacher inlined.
func (h *Handler) GetClass(c echo.Context) error {
	ctx := c.Request().Context()
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return h.visibleClass(ctx, c, cl) })
	if !ok {
		return err
	}
	details := model.ClassDetails{Class: class}
	if course, err := h.Repos.Courses.Get(ctx, idOf(class.CourseID)); err == nil {
		details.Course.CourseCode = course.CourseCode
		details.Course.Title = course.Title
	}
	if teacher, err := h.Repos.Users.GetByID(ctx, idOf(class.TeacherID)); err == nil {
		details.Teacher.FirstName = teacher.FirstName
		details.Teacher.LastName = teacher.LastName
		details.Teacher.Email = teacher.Email
	}
	return c.JSON(http.StatusOK, details)
}

// CreateClass schedules a class taught by the caller.
func (h *Handler) CreateClass(c echo.Context) error {
	var req model.CreateClass
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Repos.Courses.Get(ctx, idOf(req.CourseID)); err != nil {
		return repoError(c, err, "course")
	}
	uid, _ := middleware.UserID(c)
	return c.JSON(http.StatusCreated, h.Repos.Classes.Create(ctx, uid, req))
}

func (h *Handler) UpdateClass(c echo.Context) error {
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return ownsClass(c, cl) })
	if !ok {
		return err
	}
	var req model.UpdateClass
	if ok, err := bind(c, &req); !ok {
		return err
	}
	updated, err := h.Repos.Classes.Update(c.Request().Context(), idOf(class.ID), req)
	if err != nil {
		return repoError(c, err, "class")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteClass(c echo.Context) error {
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return ownsClass(c, cl) })
	if !ok {
		return err
	}
	if err := h.Repos.Classes.Delete(c.Request().Context(), idOf(class.ID)); err != nil {
		return repoError(c, err, "class")
	}
	return message(c, http.StatusOK, "Class deleted successfully")
}

// ClassStats aggregates the scores of a class's assessments.  Completion
// is the share of expected submissions (students x assessments) recorded.
func (h *Handler) ClassStats(c echo.Context) error {
	ctx := c.Request().Context()
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return ownsClass(c, cl) })
	if !ok {
		return err
	}
	assessments := h.Repos.Assessments.ByClass(ctx, idOf(class.ID))
	ids := make([]int64, len(assessments))
	for i, a := range assessments {
		ids[i] = a.ID
	}
	scores := h.Repos.Scores.ByAssessments(ctx, ids)

	stats := model.ClassStats{
		AssessmentCount:   len(assessments),
		GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "F": 0},
		RecentActivities:  []model.ClassActivity{},
	}
	var sum float64
	for _, s := range scores {
		sum += s.ScoreValue
		stats.GradeDistribution[letterGrade(s.ScoreValue)]++
	}
	if len(scores) > 0 {
		stats.AverageScore = sum / float64(len(scores))
	}
	if expected := class.StudentCount * len(assessments); expected > 0 {
		stats.CompletionRate = 100 * float64(len(scores)) / float64(expected)
	}

	for i, a := range model.RecentAssessments(assessments, h.Clock.Now()) {
		if i == 5 {
			break
		}
		stats.RecentActivities = append(stats.RecentActivities, model.ClassActivity{
			Type:        string(a.Type),
			Date:        a.Date,
			Description: a.Title,
		})
	}
	return c.JSON(http.StatusOK, stats)
}

func letterGrade(v float64) string {
	switch {
	case v >= 90:
		return "A"
	case v >= 80:
		return "B"
	case v >= 70:
		return "C"
	case v >= 60:
		return "D"
	}
	return "F"
}

// ClassStudents returns one page of the roster.
func (h *Handler) ClassStudents(c echo.Context) error {
	ctx := c.Request().Context()
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return ownsClass(c, cl) })
	if !ok {
		return err
	}
	page, perPage := pageParams(c)
	var roster []model.User
	for _, id := range h.Repos.Classes.Students(ctx, idOf(class.ID)) {
		if u, err := h.Repos.Users.GetByID(ctx, id); err == nil {
			roster = append(roster, u.Model())
		}
	}
	return c.JSON(http.StatusOK, newPage(pageOf(roster, page, perPage), len(roster), page, perPage))
}

func pageOf[T any](rows []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(rows) {
		return []T{}
	}
	return rows[start:min(start+perPage, len(rows))]
}

// AddStudent enrols a student account in the class.
func (h *Handler) AddStudent(c echo.Context) error {
	ctx := c.Request().Context()
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return ownsClass(c, cl) })
	if !ok {
		return err
	}
	var req struct {
		StudentID model.ID `json:"student_id" validate:"required"`
	}
	if ok, err := bind(c, &req); !ok {
		return err
	}
	student, err := h.Repos.Users.GetByID(ctx, idOf(req.StudentID))
	if err != nil {
		return repoError(c, err, "student")
	}
	if student.Role != model.RoleStudent {
		return message(c, http.StatusBadRequest, "user is not a student")
	}
	if err := h.Repos.Classes.Enroll(ctx, idOf(class.ID), student.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return message(c, http.StatusConflict, "student already enrolled")
		}
		return repoError(c, err, "class")
	}
	return message(c, http.StatusCreated, "Student added to class")
}

func (h *Handler) RemoveStudent(c echo.Context) error {
	class, ok, err := h.loadClass(c, func(cl model.Class) bool { return ownsClass(c, cl) })
	if !ok {
		return err
	}
	studentID, ok := pathID(c, "student_id")
	if !ok {
		return message(c, http.StatusBadRequest, "invalid student id")
	}
	if err := h.Repos.Classes.Unenroll(c.Request().Context(), idOf(class.ID), studentID); err != nil {
		return repoError(c, err, "enrolment")
	}
	return message(c, http.StatusOK, "Student removed from class")
}
