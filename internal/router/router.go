// Package router wires the development LMS API onto an echo instance.
package router

import (
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/handler"
	"github.com/iliyamo/classroom-client/internal/middleware"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Cfg     config.Server
	Repos   *repository.Repos
	Clock   clockwork.Clock
	Logger  *slog.Logger
	Limiter echo.MiddlewareFunc // applied to login; nil disables throttling
}

// New builds a ready-to-serve echo instance.
func New(d Deps) *echo.Echo {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Limiter == nil {
		d.Limiter = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(requestLogger(d.Logger))

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(d.Cfg, d.Repos.Users, d.Repos.Tokens, d.Clock), d.Limiter)
	RegisterAPI(e, handler.New(d.Repos, d.Clock), d.Cfg.JWTSecret, d.Clock)
	return e
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", c.Request().Header.Get("X-Request-ID"),
			)
			return nil
		},
	})
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the token endpoints under /api/auth.  None of them
// require an access token: refresh and logout authenticate with the
// refresh token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// slashRedirect answers with a 308 to the trailing-slash form of the
// collection path, keeping method, body and query.
func slashRedirect(c echo.Context) error {
	u := *c.Request().URL
	u.Path += "/"
	return c.Redirect(http.StatusPermanentRedirect, u.RequestURI())
}

// RegisterAPI registers the resource endpoints.  Every route requires a
// valid access token; write routes additionally require a role.
func RegisterAPI(e *echo.Echo, h *handler.Handler, jwtSecret string, clock clockwork.Clock) {
	// Assessments and scores are registered with a trailing slash.  The bare
	// path redirects before authentication, as the upstream API does.
	e.Any("/api/assessments", slashRedirect)
	e.Any("/api/scores", slashRedirect)

	api := e.Group("/api", middleware.JWTAuth(jwtSecret, clock))
	admin := middleware.RequireRole(model.RoleAdmin)
	staff := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)
	teacher := middleware.RequireRole(model.RoleTeacher)

	api.GET("/users/me", h.Me)
	api.PUT("/users/me", h.UpdateMe)
	api.GET("/users", h.ListUsers, admin)

	api.GET("/courses", h.ListCourses)
	api.POST("/courses", h.CreateCourse, admin)
	api.GET("/courses/:id", h.GetCourse)
	api.PUT("/courses/:id", h.UpdateCourse, admin)
	api.DELETE("/courses/:id", h.DeleteCourse, admin)

	api.GET("/classes", h.ListClasses)
	api.POST("/classes", h.CreateClass, staff)
	api.GET("/classes/:id", h.GetClass)
	api.PUT("/classes/:id", h.UpdateClass, staff)
	api.DELETE("/classes/:id", h.DeleteClass, staff)
	api.GET("/classes/:id/stats", h.ClassStats, staff)
	api.GET("/classes/:id/students", h.ClassStudents, staff)
	api.POST("/classes/:id/students", h.AddStudent, staff)
	api.DELETE("/classes/:id/students/:student_id", h.RemoveStudent, staff)

	api.GET("/assessments/", h.ListAssessments)
	api.POST("/assessments/", h.CreateAssessment, staff)
	api.GET("/assessments/:id", h.GetAssessment)
	api.PUT("/assessments/:id", h.UpdateAssessment, staff)
	api.DELETE("/assessments/:id", h.DeleteAssessment, staff)

	api.POST("/scores/", h.CreateScore, teacher)
	api.GET("/scores/:id", h.GetScore)
	api.PUT("/scores/:id", h.UpdateScore, teacher)
	api.DELETE("/scores/:id", h.DeleteScore, teacher)
	api.GET("/scores/student/:student_id", h.StudentScores)
	api.GET("/scores/student/:student_id/assessment", h.StudentAssessmentScore)
}
