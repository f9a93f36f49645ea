package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/classroom-client/internal/apiclient"
	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/logging"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
	"github.com/iliyamo/classroom-client/internal/service"
	"github.com/iliyamo/classroom-client/internal/session"
	"github.com/iliyamo/classroom-client/internal/tokenstore"
)

var start = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	clock *clockwork.FakeClock
	store *tokenstore.Memory
	api   *apiclient.Client
	sess  *session.Session
	svc   *service.Services
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	repos := repository.New(bcrypt.MinCost)
	require.NoError(t, repos.Seed(context.Background(), start))

	e := New(Deps{
		Cfg: config.Server{
			JWTSecret:      "e2e-secret",
			AccessTTLMin:   1,
			RefreshTTLDays: 1,
			BcryptCost:     bcrypt.MinCost,
		},
		Repos:  repos,
		Clock:  clock,
		Logger: logging.Discard(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemory()
	api, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Store: store, Logger: logging.Discard()})
	require.NoError(t, err)
	sess, err := session.New(session.Options{Client: api, Logger: logging.Discard(), Clock: clock})
	require.NoError(t, err)
	return &harness{clock: clock, store: store, api: api, sess: sess, svc: service.New(api)}
}

func (h *harness) login(t *testing.T, email, password string) {
	t.Helper()
	_, err := h.sess.Login(context.Background(), model.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	e := New(Deps{Repos: repository.New(bcrypt.MinCost), Logger: logging.Discard()})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoginAndProfile(t *testing.T) {
	h := newHarness(t)
	h.login(t, repository.SeedAdminEmail, repository.SeedAdminPassword)

	assert.True(t, h.sess.IsAdmin())
	assert.Equal(t, "Ada Admin", h.sess.FullName())

	users, err := h.svc.Users.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, users.Total)
	assert.Equal(t, 2, users.TotalPages)
	assert.Len(t, users.Data, 2)
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.sess.Login(context.Background(), model.LoginRequest{Email: repository.SeedAdminEmail, Password: "nope"})
	require.Error(t, err)
	info := apiclient.Describe(err)
	assert.Equal(t, http.StatusUnauthorized, info.Status)
	assert.False(t, h.sess.IsAuthenticated(context.Background()))
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.sess.Login(context.Background(), model.LoginRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Errors, "email")
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, repository.SeedTeacherEmail, repository.SeedUserPassword)
	before, _ := h.store.AccessToken(ctx)

	h.clock.Advance(2 * time.Minute)

	classes, err := h.svc.Classes.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, classes.Data, 1)
	assert.Equal(t, 1, classes.Data[0].StudentCount)

	after, _ := h.store.AccessToken(ctx)
	assert.NotEqual(t, before, after)
	refresh, _ := h.store.RefreshToken(ctx)
	assert.NotEmpty(t, refresh)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, repository.SeedTeacherEmail, repository.SeedUserPassword)
	refresh, _ := h.store.RefreshToken(ctx)

	require.NoError(t, h.sess.Logout(ctx))
	assert.False(t, h.sess.IsAuthenticated(ctx))

	// Put the revoked pair back: the server must refuse to refresh it.
	require.NoError(t, h.store.Set(ctx, "stale", refresh))
	_, err := h.svc.Courses.List(ctx)
	require.ErrorIs(t, err, apiclient.ErrSessionExpired)

	access, _ := h.store.AccessToken(ctx)
	assert.Empty(t, access)
}

func TestAssessmentsRedirect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, repository.SeedStudentEmail, repository.SeedUserPassword)

	var list []model.Assessment
	require.NoError(t, h.api.Get(ctx, "/api/assessments", nil, &list))
	assert.Len(t, list, 2)

	upcoming := model.UpcomingAssessments(list, start)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Midterm", upcoming[0].Title)
}

func TestRoleEnforcement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, repository.SeedStudentEmail, repository.SeedUserPassword)

	_, err := h.svc.Courses.Create(ctx, model.CreateCourse{CourseCode: "X1", Title: "X"})
	assert.True(t, apiclient.IsStatus(err, http.StatusForbidden))

	_, err = h.svc.Scores.Create(ctx, model.CreateScore{StudentID: 3, AssessmentID: 1, ScoreValue: 100})
	assert.True(t, apiclient.IsStatus(err, http.StatusForbidden))

	me := h.sess.Profile()
	require.NotNil(t, me)
	scores, err := h.svc.Scores.ByStudent(ctx, idOf(t, me.ID))
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 84.0, scores[0].ScoreValue)

	_, err = h.svc.Scores.ByStudent(ctx, idOf(t, me.ID)+100)
	assert.True(t, apiclient.IsStatus(err, http.StatusForbidden))
}

func TestTeacherWorkflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, repository.SeedTeacherEmail, repository.SeedUserPassword)

	classes, err := h.svc.Classes.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	classID := classes[0].ID

	details, err := h.svc.Classes.Get(ctx, classID)
	require.NoError(t, err)
	assert.Equal(t, "CS101", details.Course.CourseCode)
	assert.Equal(t, "Tom", details.Teacher.FirstName)

	roster, err := h.svc.Classes.Students(ctx, classID, 1, 10)
	require.NoError(t, err)
	require.Len(t, roster.Data, 1)
	student := roster.Data[0]

	a, err := h.svc.Assessments.Create(ctx, model.CreateAssessment{
		ClassID: idOf(t, classID),
		Title:   "Homework 1",
		Type:    model.AssessmentAssignment,
		Date:    "2025-04-10",
	})
	require.NoError(t, err)

	_, err = h.svc.Scores.Create(ctx, model.CreateScore{StudentID: idOf(t, student.ID), AssessmentID: a.ID, ScoreValue: 55})
	require.NoError(t, err)

	score, err := h.svc.Scores.ByStudentAndAssessment(ctx, idOf(t, student.ID), "Homework 1")
	require.NoError(t, err)
	assert.Equal(t, 55.0, score.ScoreValue)

	stats, err := h.svc.Classes.Stats(ctx, classID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.AssessmentCount)
	assert.InDelta(t, 69.5, stats.AverageScore, 0.001)
	assert.Equal(t, 1, stats.GradeDistribution["B"])
	assert.Equal(t, 1, stats.GradeDistribution["F"])

	_, err = h.svc.Assessments.Create(ctx, model.CreateAssessment{ClassID: idOf(t, classID), Title: "Bad", Type: "essay", Date: "2025-04-10"})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Validation error", apiclient.Describe(err).Message)
}

func idOf(t *testing.T, id model.ID) int64 {
	t.Helper()
	var n int64
	for _, r := range id.String() {
		require.True(t, r >= '0' && r <= '9', "numeric id expected, got %q", id)
		n = n*10 + int64(r-'0')
	}
	return n
}
