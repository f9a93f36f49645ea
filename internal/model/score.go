package model

import "sort"

// Score is one graded submission of a student for an assessment.
type Score struct {
	ID             int64   `json:"id" validate:"required"`
	StudentID      int64   `json:"student_id"`
	AssessmentID   int64   `json:"assessment_id"`
	ScoreValue     float64 `json:"score_value"`
	SubmissionDate string  `json:"submission_date"`
	Feedback       string  `json:"feedback,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// CreateScore is the POST /api/scores/ body.
type CreateScore struct {
	StudentID    int64   `json:"student_id" validate:"required"`
	AssessmentID int64   `json:"assessment_id" validate:"required"`
	ScoreValue   float64 `json:"score_value" validate:"gte=0,lte=100"`
	Feedback     string  `json:"feedback,omitempty"`
}

// UpdateScore is the PUT /api/scores/:id body.
type UpdateScore struct {
	ScoreValue *float64 `json:"score_value,omitempty" validate:"omitempty,gte=0,lte=100"`
	Feedback   *string  `json:"feedback,omitempty"`
}

// AverageScore is the mean score recorded for an assessment, or 0 when
// there is none.
func AverageScore(scores []Score, assessmentID int64) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if s.AssessmentID == assessmentID {
			sum += s.ScoreValue
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// LowPerformingStudents returns the ids of students whose mean score across
// all given scores is strictly below threshold, in ascending id order.
func LowPerformingStudents(scores []Score, threshold float64) []int64 {
	type agg struct {
		sum   float64
		count int
	}
	byStudent := make(map[int64]*agg)
	for _, s := range scores {
		a, ok := byStudent[s.StudentID]
		if !ok {
			a = &agg{}
			byStudent[s.StudentID] = a
		}
		a.sum += s.ScoreValue
		a.count++
	}
	var out []int64
	for id, a := range byStudent {
		if a.sum/float64(a.count) < threshold {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
