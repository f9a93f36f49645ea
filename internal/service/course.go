package service

import (
	"context"

	"github.com/iliyamo/classroom-client/internal/model"
)

type CourseService struct{ api API }

func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	err := s.api.Get(ctx, "/api/courses", nil, &out)
	return out, err
}

func (s *CourseService) Get(ctx context.Context, id model.ID) (model.Course, error) {
	var out model.Course
	err := s.api.Get(ctx, idPath("/api/courses/", id), nil, &out)
	return out, err
}

func (s *CourseService) Create(ctx context.Context, in model.CreateCourse) (model.Course, error) {
	var out model.Course
	err := s.api.Post(ctx, "/api/courses", in, &out)
	return out, err
}

func (s *CourseService) Update(ctx context.Context, id model.ID, in model.UpdateCourse) (model.Course, error) {
	var out model.Course
	err := s.api.Put(ctx, idPath("/api/courses/", id), in, &out)
	return out, err
}

func (s *CourseService) Delete(ctx context.Context, id model.ID) (model.Message, error) {
	var out model.Message
	err := s.api.Delete(ctx, idPath("/api/courses/", id), &out)
	return out, err
}
