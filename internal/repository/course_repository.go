package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/classroom-client/internal/model"
)

type CourseRepo struct {
	mu   sync.Mutex // guards course code uniqueness
	rows *table[model.Course]
}

func NewCourseRepo() *CourseRepo { return &CourseRepo{rows: newTable[model.Course]()} }

func (r *CourseRepo) codeTaken(code string, except model.ID) bool {
	for _, c := range r.rows.all(nil) {
		if strings.EqualFold(c.CourseCode, code) && c.ID != except {
			return true
		}
	}
	return false
}

// Create inserts an active course.  Course codes are unique, ignoring case.
func (r *CourseRepo) Create(_ context.Context, in model.CreateCourse) (model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codeTaken(in.CourseCode, "") {
		return model.Course{}, ErrConflict
	}
	return r.rows.insert(func(id int64) model.Course {
		return model.Course{
			ID:          model.IDFromInt(id),
			CourseCode:  in.CourseCode,
			Title:       in.Title,
			Description: in.Description,
			IsActive:    true,
		}
	}), nil
}

func (r *CourseRepo) Get(_ context.Context, id int64) (model.Course, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return model.Course{}, ErrNotFound
	}
	return c, nil
}

func (r *CourseRepo) List(_ context.Context) []model.Course {
	return r.rows.all(nil)
}

func (r *CourseRepo) Update(_ context.Context, id int64, in model.UpdateCourse) (model.Course, error) {
	return r.rows.update(id, func(c *model.Course) error {
		if in.Title != nil {
			c.Title = *in.Title
		}
		if in.Description != nil {
			c.Description = *in.Description
		}
		if in.IsActive != nil {
			c.IsActive = *in.IsActive
		}
		return nil
	})
}

func (r *CourseRepo) Delete(_ context.Context, id int64) error {
	return r.rows.remove(id)
}
