package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/classroom-client/internal/model"
)

type ScoreRepo struct {
	mu   sync.Mutex // guards the one-score-per-student-and-assessment rule
	rows *table[model.Score]
}

func NewScoreRepo() *ScoreRepo { return &ScoreRepo{rows: newTable[model.Score]()} }

// Create records a score; a second score for the same student and
// assessment is a conflict.
func (r *ScoreRepo) Create(_ context.Context, in model.CreateScore, now time.Time) (model.Score, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := r.rows.all(func(s model.Score) bool {
		return s.StudentID == in.StudentID && s.AssessmentID == in.AssessmentID
	})
	if len(dup) > 0 {
		return model.Score{}, ErrConflict
	}
	stamp := now.UTC().Format(time.RFC3339)
	return r.rows.insert(func(id int64) model.Score {
		return model.Score{
			ID:             id,
			StudentID:      in.StudentID,
			AssessmentID:   in.AssessmentID,
			ScoreValue:     in.ScoreValue,
			SubmissionDate: stamp,
			Feedback:       in.Feedback,
			CreatedAt:      stamp,
			UpdatedAt:      stamp,
		}
	}), nil
}

func (r *ScoreRepo) Get(_ context.Context, id int64) (model.Score, error) {
	s, ok := r.rows.get(id)
	if !ok {
		return model.Score{}, ErrNotFound
	}
	return s, nil
}

func (r *ScoreRepo) Update(_ context.Context, id int64, in model.UpdateScore, now time.Time) (model.Score, error) {
	return r.rows.update(id, func(s *model.Score) error {
		if in.ScoreValue != nil {
			s.ScoreValue = *in.ScoreValue
		}
		if in.Feedback != nil {
			s.Feedback = *in.Feedback
		}
		s.UpdatedAt = now.UTC().Format(time.RFC3339)
		return nil
	})
}

func (r *ScoreRepo) Delete(_ context.Context, id int64) error {
	return r.rows.remove(id)
}

func (r *ScoreRepo) ByStudent(_ context.Context, studentID int64) []model.Score {
	return r.rows.all(func(s model.Score) bool { return s.StudentID == studentID })
}

// ByAssessments returns every score recorded for one of the assessments.
func (r *ScoreRepo) ByAssessments(_ context.Context, assessmentIDs []int64) []model.Score {
	want := make(map[int64]bool, len(assessmentIDs))
	for _, id := range assessmentIDs {
		want[id] = true
	}
	return r.rows.all(func(s model.Score) bool { return want[s.AssessmentID] })
}

// DeleteByAssessment drops the scores of a deleted assessment.
func (r *ScoreRepo) DeleteByAssessment(ctx context.Context, assessmentID int64) {
	for _, s := range r.ByAssessments(ctx, []int64{assessmentID}) {
		_ = r.rows.remove(s.ID)
	}
}
