package repository

import (
	"context"
	"time"

	"github.com/iliyamo/classroom-client/internal/model"
)

type AssessmentRepo struct {
	rows *table[model.Assessment]
}

func NewAssessmentRepo() *AssessmentRepo {
	return &AssessmentRepo{rows: newTable[model.Assessment]()}
}

func (r *AssessmentRepo) Create(_ context.Context, createdBy int64, in model.CreateAssessment, now time.Time) model.Assessment {
	stamp := now.UTC().Format(time.RFC3339)
	return r.rows.insert(func(id int64) model.Assessment {
		return model.Assessment{
			ID:          id,
			ClassID:     in.ClassID,
			Title:       in.Title,
			Description: in.Description,
			Type:        in.Type,
			Date:        in.Date,
			CreatedBy:   createdBy,
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
		}
	})
}

func (r *AssessmentRepo) Get(_ context.Context, id int64) (model.Assessment, error) {
	a, ok := r.rows.get(id)
	if !ok {
		return model.Assessment{}, ErrNotFound
	}
	return a, nil
}

// List returns the assessments kept by keep (all when nil).
func (r *AssessmentRepo) List(_ context.Context, keep func(model.Assessment) bool) []model.Assessment {
	return r.rows.all(keep)
}

func (r *AssessmentRepo) ByClass(ctx context.Context, classID int64) []model.Assessment {
	return r.List(ctx, func(a model.Assessment) bool { return a.ClassID == classID })
}

// FindByTitle is the first assessment with the given title.
func (r *AssessmentRepo) FindByTitle(ctx context.Context, title string) (model.Assessment, error) {
	for _, a := range r.List(ctx, nil) {
		if a.Title == title {
			return a, nil
		}
	}
	return model.Assessment{}, ErrNotFound
}

func (r *AssessmentRepo) Update(_ context.Context, id int64, in model.UpdateAssessment, now time.Time) (model.Assessment, error) {
	return r.rows.update(id, func(a *model.Assessment) error {
		if in.Title != nil {
			a.Title = *in.Title
		}
		if in.Description != nil {
			a.Description = *in.Description
		}
		if in.Type != nil {
			a.Type = *in.Type
		}
		if in.Date != nil {
			a.Date = *in.Date
		}
		a.UpdatedAt = now.UTC().Format(time.RFC3339)
		return nil
	})
}

func (r *AssessmentRepo) Delete(_ context.Context, id int64) error {
	return r.rows.remove(id)
}
