package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
)

var now = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

// Seeded ids: admin 1, teacher 2, student 3, course 1, class 1.
const (
	adminID   = 1
	teacherID = 2
	studentID = 3
)

type fixture struct {
	e     *echo.Echo
	repos *repository.Repos
	clock *clockwork.FakeClock
	h     *Handler
	auth  *AuthHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.New(bcrypt.MinCost)
	require.NoError(t, repos.Seed(context.Background(), now))
	clock := clockwork.NewFakeClockAt(now)
	e := echo.New()
	e.Validator = NewRequestValidator()
	cfg := config.Server{JWTSecret: "handler-secret", AccessTTLMin: 15, RefreshTTLDays: 7}
	return &fixture{
		e:     e,
		repos: repos,
		clock: clock,
		h:     New(repos, clock),
		auth:  NewAuthHandler(cfg, repos.Users, repos.Tokens, clock),
	}
}

type call struct {
	method string
	target string
	body   string
	bearer string
	userID int64
	role   model.Role
	params map[string]string
}

func (f *fixture) serve(t *testing.T, fn echo.HandlerFunc, in call) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if in.body != "" {
		req = httptest.NewRequest(in.method, in.target, strings.NewReader(in.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(in.method, in.target, nil)
	}
	if in.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+in.bearer)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if in.userID > 0 {
		c.Set("user_id", in.userID)
		c.Set("role", string(in.role))
	}
	if len(in.params) > 0 {
		var names, values []string
		for k, v := range in.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	require.NoError(t, fn(c))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (f *fixture) login(t *testing.T, email, password string) model.LoginResponse {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	rec := f.serve(t, f.auth.Login, call{method: http.MethodPost, target: "/api/auth/login", body: body})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[model.LoginResponse](t, rec)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, repository.SeedTeacherEmail, repository.SeedUserPassword)
	assert.NotEmpty(t, res.AccessToken)
	assert.Len(t, res.RefreshToken, 96)
	assert.Equal(t, model.RoleTeacher, res.User.Role)
	assert.Equal(t, "teacher@example.com", res.User.Email)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"email":"teacher@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"ghost@example.com","password":"x"}`, http.StatusUnauthorized},
		{"bad email", `{"email":"teacher","password":"x"}`, http.StatusUnprocessableEntity},
		{"missing password", `{"email":"teacher@example.com"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(t, f.auth.Login, call{method: http.MethodPost, target: "/api/auth/login", body: tt.body})
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestLoginValidationShape(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(t, f.auth.Login, call{method: http.MethodPost, target: "/api/auth/login", body: `{"email":"nope"}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation error", body.Message)
	assert.Equal(t, []string{"must be a valid email address"}, body.Errors["email"])
	assert.Equal(t, []string{"is required"}, body.Errors["password"])
}

func TestRefreshFromBearerOrBody(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, repository.SeedStudentEmail, repository.SeedUserPassword)

	rec := f.serve(t, f.auth.Refresh, call{method: http.MethodPost, target: "/api/auth/refresh", bearer: res.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[model.RefreshResponse](t, rec).AccessToken)

	rec = f.serve(t, f.auth.Refresh, call{
		method: http.MethodPost,
		target: "/api/auth/refresh",
		body:   `{"refresh_token":"` + res.RefreshToken + `"}`,
		bearer: "ignored",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.serve(t, f.auth.Refresh, call{method: http.MethodPost, target: "/api/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.clock.Advance(8 * 24 * time.Hour)
	rec = f.serve(t, f.auth.Refresh, call{method: http.MethodPost, target: "/api/auth/refresh", bearer: res.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	t.Run("revokes the body token", func(t *testing.T) {
		res := f.login(t, repository.SeedStudentEmail, repository.SeedUserPassword)
		body := `{"refresh_token":"` + res.RefreshToken + `"}`
		rec := f.serve(t, f.auth.Logout, call{method: http.MethodPost, target: "/api/auth/logout", body: body})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = f.serve(t, f.auth.Refresh, call{method: http.MethodPost, target: "/api/auth/refresh", bearer: res.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("access token revokes every session", func(t *testing.T) {
		a := f.login(t, repository.SeedTeacherEmail, repository.SeedUserPassword)
		b := f.login(t, repository.SeedTeacherEmail, repository.SeedUserPassword)
		rec := f.serve(t, f.auth.Logout, call{method: http.MethodPost, target: "/api/auth/logout", bearer: a.AccessToken})
		require.Equal(t, http.StatusOK, rec.Code)

		for _, rt := range []string{a.RefreshToken, b.RefreshToken} {
			rec = f.serve(t, f.auth.Refresh, call{method: http.MethodPost, target: "/api/auth/refresh", bearer: rt})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("nothing to revoke", func(t *testing.T) {
		rec := f.serve(t, f.auth.Logout, call{method: http.MethodPost, target: "/api/auth/logout"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateMe(t *testing.T) {
	f := newFixture(t)
	as := call{method: http.MethodPut, target: "/api/users/me", userID: studentID, role: model.RoleStudent}

	as.body = `{"first_name":"Samantha"}`
	rec := f.serve(t, f.h.UpdateMe, as)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Samantha", decode[model.User](t, rec).FirstName)

	as.body = `{"email":"teacher@example.com"}`
	rec = f.serve(t, f.h.UpdateMe, as)
	assert.Equal(t, http.StatusConflict, rec.Code)

	as.body = `{"password":"123"}`
	rec = f.serve(t, f.h.UpdateMe, as)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteCourseWithClasses(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(t, f.h.DeleteCourse, call{
		method: http.MethodDelete, target: "/api/courses/1",
		userID: adminID, role: model.RoleAdmin,
		params: map[string]string{"id": "1"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCourseDuplicateCode(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(t, f.h.CreateCourse, call{
		method: http.MethodPost, target: "/api/courses",
		body:   `{"course_code":"cs101","title":"Again"}`,
		userID: adminID, role: model.RoleAdmin,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClassVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.repos.Users.Create(ctx, repository.NewUser{
		Email: "other@example.com", Password: "password123",
		FirstName: "Olga", LastName: "Other", Role: model.RoleStudent,
	}, now)
	require.NoError(t, err)

	get := call{method: http.MethodGet, target: "/api/classes/1", params: map[string]string{"id": "1"}}

	get.userID, get.role = studentID, model.RoleStudent
	assert.Equal(t, http.StatusOK, f.serve(t, f.h.GetClass, get).Code)

	get.userID = other
	assert.Equal(t, http.StatusForbidden, f.serve(t, f.h.GetClass, get).Code)

	list := call{method: http.MethodGet, target: "/api/classes", userID: other, role: model.RoleStudent}
	page := decode[model.Page[model.Class]](t, f.serve(t, f.h.ListClasses, list))
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Total)
}

func TestClassStats(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(t, f.h.ClassStats, call{
		method: http.MethodGet, target: "/api/classes/1/stats",
		userID: teacherID, role: model.RoleTeacher,
		params: map[string]string{"id": "1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[model.ClassStats](t, rec)
	assert.Equal(t, 2, stats.AssessmentCount)
	assert.InDelta(t, 84, stats.AverageScore, 0.001)
	assert.InDelta(t, 50, stats.CompletionRate, 0.001)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 0, "D": 0, "F": 0}, stats.GradeDistribution)
	require.Len(t, stats.RecentActivities, 1)
	assert.Equal(t, "Quiz 1", stats.RecentActivities[0].Description)
}

func TestAddStudent(t *testing.T) {
	f := newFixture(t)
	add := call{
		method: http.MethodPost, target: "/api/classes/1/students",
		userID: teacherID, role: model.RoleTeacher,
		params: map[string]string{"id": "1"},
	}

	add.body = `{"student_id":3}`
	assert.Equal(t, http.StatusConflict, f.serve(t, f.h.AddStudent, add).Code)

	add.body = `{"student_id":2}`
	assert.Equal(t, http.StatusBadRequest, f.serve(t, f.h.AddStudent, add).Code)
}

func TestCreateScoreRules(t *testing.T) {
	f := newFixture(t)
	create := call{method: http.MethodPost, target: "/api/scores/", userID: teacherID, role: model.RoleTeacher}

	create.body = `{"student_id":3,"assessment_id":1,"score_value":90}`
	assert.Equal(t, http.StatusConflict, f.serve(t, f.h.CreateScore, create).Code)

	create.body = `{"student_id":3,"assessment_id":2,"score_value":120}`
	assert.Equal(t, http.StatusUnprocessableEntity, f.serve(t, f.h.CreateScore, create).Code)

	create.body = `{"student_id":3,"assessment_id":2,"score_value":91.5}`
	rec := f.serve(t, f.h.CreateScore, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 91.5, decode[model.Score](t, rec).ScoreValue)
}

func TestStudentScoresPrivacy(t *testing.T) {
	f := newFixture(t)
	get := call{method: http.MethodGet, target: "/api/scores/student/3", params: map[string]string{"student_id": "3"}}

	get.userID, get.role = studentID, model.RoleStudent
	rec := f.serve(t, f.h.StudentScores, get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Score](t, rec), 1)

	get.params = map[string]string{"student_id": "1"}
	assert.Equal(t, http.StatusForbidden, f.serve(t, f.h.StudentScores, get).Code)

	get.userID, get.role = teacherID, model.RoleTeacher
	assert.Equal(t, http.StatusOK, f.serve(t, f.h.StudentScores, get).Code)
}

func TestLetterGrade(t *testing.T) {
	for v, want := range map[float64]string{100: "A", 90: "A", 89.9: "B", 80: "B", 75: "C", 60: "D", 59.99: "F", 0: "F"} {
		assert.Equal(t, want, letterGrade(v), "score %v", v)
	}
}

func TestPageParamsCap(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500", nil), httptest.NewRecorder())
	page, perPage := pageParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, perPage)

	p := newPage([]int{1, 2}, 201, 3, 100)
	assert.Equal(t, 3, p.TotalPages)
}
