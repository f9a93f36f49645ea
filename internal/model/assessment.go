package model

import (
	"sort"
	"time"
)

// AssessmentType enumerates what kind of assessment a record is.
type AssessmentType string

const (
	AssessmentQuiz       AssessmentType = "quiz"
	AssessmentAssignment AssessmentType = "assignment"
	AssessmentExam       AssessmentType = "exam"
)

// Assessment is a quiz, assignment or exam scheduled for a class.  Date is
// kept as the server sent it; DateTime parses it on demand.
type Assessment struct {
	ID          int64          `json:"id" validate:"required"`
	ClassID     int64          `json:"class_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        AssessmentType `json:"type" validate:"omitempty,oneof=quiz assignment exam"`
	Date        string         `json:"date"`
	CreatedBy   int64          `json:"created_by"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// CreateAssessment is the POST /api/assessments/ body.
type CreateAssessment struct {
	ClassID     int64          `json:"class_id" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description,omitempty"`
	Type        AssessmentType `json:"type" validate:"required,oneof=quiz assignment exam"`
	Date        string         `json:"date" validate:"required"`
}

// UpdateAssessment is the PUT /api/assessments/:id body.
type UpdateAssessment struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Type        *AssessmentType `json:"type,omitempty" validate:"omitempty,oneof=quiz assignment exam"`
	Date        *string         `json:"date,omitempty"`
}

var assessmentDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTime parses Date with the layouts the API has been seen to emit.
func (a Assessment) DateTime() (time.Time, bool) {
	for _, layout := range assessmentDateLayouts {
		if t, err := time.Parse(layout, a.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AssessmentsByClass filters assessments of one class.
func AssessmentsByClass(assessments []Assessment, classID int64) []Assessment {
	var out []Assessment
	for _, a := range assessments {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out
}

// UpcomingAssessments returns assessments dated after now, soonest first.
// Records with an unparseable date are skipped.
func UpcomingAssessments(assessments []Assessment, now time.Time) []Assessment {
	var out []Assessment
	for _, a := range assessments {
		if t, ok := a.DateTime(); ok && t.After(now) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].DateTime()
		tj, _ := out[j].DateTime()
		return ti.Before(tj)
	})
	return out
}

// RecentAssessments returns assessments dated at or before now, latest first.
func RecentAssessments(assessments []Assessment, now time.Time) []Assessment {
	var out []Assessment
	for _, a := range assessments {
		if t, ok := a.DateTime(); ok && !t.After(now) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].DateTime()
		tj, _ := out[j].DateTime()
		return ti.After(tj)
	})
	return out
}
