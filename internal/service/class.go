package service

import (
	"context"

	"github.com/iliyamo/classroom-client/internal/model"
)

type ClassService struct{ api API }

// List returns one page of classes.
func (s *ClassService) List(ctx context.Context, page, perPage int) (model.Page[model.Class], error) {
	var out model.Page[model.Class]
	err := s.api.Get(ctx, "/api/classes", pageQuery(page, perPage), &out)
	return out, err
}

// ListAll walks every page.  The dashboard views filter over the full set.
func (s *ClassService) ListAll(ctx context.Context) ([]model.Class, error) {
	var all []model.Class
	for page := 1; ; page++ {
		p, err := s.List(ctx, page, 50)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Data...)
		if len(p.Data) == 0 || page >= p.TotalPages {
			return all, nil
		}
	}
}

func (s *ClassService) Get(ctx context.Context, id model.ID) (model.ClassDetails, error) {
	var out model.ClassDetails
	err := s.api.Get(ctx, idPath("/api/classes/", id), nil, &out)
	return out, err
}

func (s *ClassService) Create(ctx context.Context, in model.CreateClass) (model.Class, error) {
	var out model.Class
	err := s.api.Post(ctx, "/api/classes", in, &out)
	return out, err
}

func (s *ClassService) Update(ctx context.Context, id model.ID, in model.UpdateClass) (model.Class, error) {
	var out model.Class
	err := s.api.Put(ctx, idPath("/api/classes/", id), in, &out)
	return out, err
}

func (s *ClassService) Delete(ctx context.Context, id model.ID) (model.Message, error) {
	var out model.Message
	err := s.api.Delete(ctx, idPath("/api/classes/", id), &out)
	return out, err
}

func (s *ClassService) Stats(ctx context.Context, id model.ID) (model.ClassStats, error) {
	var out model.ClassStats
	err := s.api.Get(ctx, idPath("/api/classes/", id)+"/stats", nil, &out)
	return out, err
}

// Students returns one page of the class roster.
func (s *ClassService) Students(ctx context.Context, id model.ID, page, perPage int) (model.Page[model.User], error) {
	var out model.Page[model.User]
	err := s.api.Get(ctx, idPath("/api/classes/", id)+"/students", pageQuery(page, perPage), &out)
	return out, err
}

func (s *ClassService) AddStudent(ctx context.Context, classID, studentID model.ID) (model.Message, error) {
	var out model.Message
	body := struct {
		StudentID model.ID `json:"student_id"`
	}{studentID}
	err := s.api.Post(ctx, idPath("/api/classes/", classID)+"/students", body, &out)
	return out, err
}

func (s *ClassService) RemoveStudent(ctx context.Context, classID, studentID model.ID) (model.Message, error) {
	var out model.Message
	err := s.api.Delete(ctx, idPath(idPath("/api/classes/", classID)+"/students/", studentID), &out)
	return out, err
}
