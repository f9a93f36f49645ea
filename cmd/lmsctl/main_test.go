package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/classroom-client/internal/apiclient"
	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/logging"
	"github.com/iliyamo/classroom-client/internal/repository"
	"github.com/iliyamo/classroom-client/internal/router"
	"github.com/iliyamo/classroom-client/internal/session"
)

var start = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	repos := repository.New(bcrypt.MinCost)
	require.NoError(t, repos.Seed(context.Background(), start))
	srv := httptest.NewServer(router.New(router.Deps{
		Cfg:    config.Server{JWTSecret: "cli-secret", AccessTTLMin: 15, RefreshTTLDays: 7},
		Repos:  repos,
		Clock:  clock,
		Logger: logging.Discard(),
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Client{
		BaseURL:      srv.URL,
		TokenStore:   config.StoreMemory,
		Profile:      "default",
		HTTPTimeout:  5 * time.Second,
		MaxRedirects: 1,
	}
	var out bytes.Buffer
	a, err := newApp(context.Background(), cfg, &out)
	require.NoError(t, err)
	a.log = logging.Discard()
	a.clock = clock
	t.Cleanup(func() { a.Close() })
	return a, &out
}

func passwordFile(t *testing.T, password string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pw")
	require.NoError(t, os.WriteFile(path, []byte(password+"\n"), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func login(t *testing.T, a *app, email, password string) {
	t.Helper()
	a.in = passwordFile(t, password)
	require.NoError(t, a.run(context.Background(), "login", []string{"-email", email}))
}

func TestLoginMeLogout(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	login(t, a, repository.SeedTeacherEmail, repository.SeedUserPassword)
	assert.Contains(t, out.String(), "Logged in as Tom Teacher (teacher)")

	out.Reset()
	require.NoError(t, a.run(ctx, "me", nil))
	assert.Contains(t, out.String(), "teacher@example.com")

	out.Reset()
	require.NoError(t, a.run(ctx, "status", nil))
	assert.Contains(t, out.String(), "logged in")
	assert.Contains(t, out.String(), "valid")

	out.Reset()
	require.NoError(t, a.run(ctx, "logout", nil))
	assert.Contains(t, out.String(), "Logged out")

	err := a.run(ctx, "me", nil)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestLoginWrongPassword(t *testing.T) {
	a, _ := newTestApp(t)
	a.in = passwordFile(t, "wrong")
	err := a.run(context.Background(), "login", []string{"-email", repository.SeedTeacherEmail})
	require.Error(t, err)

	var buf bytes.Buffer
	report(&buf, err)
	assert.Contains(t, buf.String(), "Unauthorized access (401)")
}

func TestListings(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()
	login(t, a, repository.SeedStudentEmail, repository.SeedUserPassword)

	out.Reset()
	require.NoError(t, a.run(ctx, "courses", nil))
	assert.Contains(t, out.String(), "CS101")

	out.Reset()
	require.NoError(t, a.run(ctx, "classes", nil))
	assert.Contains(t, out.String(), "CS101 Morning")
	assert.Contains(t, out.String(), "page 1 of 1 (1 classes)")

	out.Reset()
	require.NoError(t, a.run(ctx, "assessments", []string{"-upcoming"}))
	assert.Contains(t, out.String(), "Midterm")
	assert.NotContains(t, out.String(), "Quiz 1")

	out.Reset()
	require.NoError(t, a.run(ctx, "scores", nil))
	assert.Contains(t, out.String(), "Quiz 1")
	assert.Contains(t, out.String(), "Average: 84.0 over 1 scores")

	out.Reset()
	require.NoError(t, a.run(ctx, "scores", []string{"-assessment", "Quiz 1"}))
	assert.Contains(t, out.String(), "Quiz 1: 84.0")
}

func TestClassView(t *testing.T) {
	a, out := newTestApp(t)
	login(t, a, repository.SeedTeacherEmail, repository.SeedUserPassword)

	out.Reset()
	require.NoError(t, a.run(context.Background(), "class", []string{"-id", "1", "-threshold", "90"}))
	s := out.String()
	assert.Contains(t, s, "Teacher: Tom Teacher")
	assert.Contains(t, s, "Students: 1")
	assert.Contains(t, s, "Quiz 1")
	assert.Contains(t, s, "Below 90:")
	assert.Contains(t, s, "Sam Student <student@example.com>")
}

func TestUsageErrors(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.run(ctx, "bogus", nil), errUsage)
	assert.ErrorIs(t, a.run(ctx, "login", nil), errUsage)
	assert.ErrorIs(t, a.run(ctx, "assessments", []string{"-upcoming", "-recent"}), errUsage)
	assert.ErrorIs(t, a.run(ctx, "classes", []string{"-page", "x"}), errUsage)
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &apiclient.APIError{Status: 422, Message: "Validation error", Errors: map[string][]string{"email": {"is required"}}}, "error: Validation error (422)\n  email: is required\n"},
		{"server detail", &apiclient.APIError{Status: 409, Message: "course already exists"}, "error: An unexpected error occurred (409): course already exists\n"},
		{"plain", errors.New("dial tcp: refused"), "error: dial tcp: refused (500)\n"},
		{"expired", apiclient.ErrSessionExpired, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			report(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestBoltPath(t *testing.T) {
	p, err := boltPath("/tmp/x/session.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x/session.db", p)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	p, err = boltPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lmsctl", "session.db"), p)
}
