// Package service maps LMS resources onto REST calls.  Every method is a
// thin request/response mapping over apiclient.Client; authentication,
// redirects and token refresh happen below this layer.
package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/iliyamo/classroom-client/internal/apiclient"
	"github.com/iliyamo/classroom-client/internal/model"
)

// API is the subset of apiclient.Client the services use.
type API interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

var _ API = (*apiclient.Client)(nil)

// Services bundles one instance of every resource service.
type Services struct {
	Courses     *CourseService
	Classes     *ClassService
	Assessments *AssessmentService
	Scores      *ScoreService
	Users       *UserService
}

func New(api API) *Services {
	return &Services{
		Courses:     &CourseService{api: api},
		Classes:     &ClassService{api: api},
		Assessments: &AssessmentService{api: api},
		Scores:      &ScoreService{api: api},
		Users:       &UserService{api: api},
	}
}

func pageQuery(page, perPage int) url.Values {
	page, perPage = model.PageParams(page, perPage)
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
}

func idPath(prefix string, id model.ID) string {
	return prefix + url.PathEscape(id.String())
}

func intPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
