package service

import (
	"context"
	"net/url"

	"github.com/iliyamo/classroom-client/internal/model"
)

type ScoreService struct{ api API }

// Create records a score.  Teachers only; the API answers 403 otherwise.
func (s *ScoreService) Create(ctx context.Context, in model.CreateScore) (model.Score, error) {
	var out model.Score
	err := s.api.Post(ctx, "/api/scores/", in, &out)
	return out, err
}

func (s *ScoreService) Get(ctx context.Context, id int64) (model.Score, error) {
	var out model.Score
	err := s.api.Get(ctx, intPath("/api/scores/", id), nil, &out)
	return out, err
}

func (s *ScoreService) Update(ctx context.Context, id int64, in model.UpdateScore) (model.Score, error) {
	var out model.Score
	err := s.api.Put(ctx, intPath("/api/scores/", id), in, &out)
	return out, err
}

func (s *ScoreService) Delete(ctx context.Context, id int64) (model.Message, error) {
	var out model.Message
	err := s.api.Delete(ctx, intPath("/api/scores/", id), &out)
	return out, err
}

// ByStudent lists every score of a student.
func (s *ScoreService) ByStudent(ctx context.Context, studentID int64) ([]model.Score, error) {
	var out []model.Score
	err := s.api.Get(ctx, intPath("/api/scores/student/", studentID), nil, &out)
	return out, err
}

// ByStudentAndAssessment looks a student's score up by assessment title.
func (s *ScoreService) ByStudentAndAssessment(ctx context.Context, studentID int64, title string) (model.Score, error) {
	var out model.Score
	q := url.Values{"title": {title}}
	err := s.api.Get(ctx, intPath("/api/scores/student/", studentID)+"/assessment", q, &out)
	return out, err
}
