package model

import "math"

// Class is one scheduled section of a course taught by a teacher.
type Class struct {
	ID           ID     `json:"id" validate:"required"`
	CourseID     ID     `json:"course_id"`
	TeacherID    ID     `json:"teacher_id"`
	Name         string `json:"name"`
	Section      string `json:"section"`
	Schedule     string `json:"schedule,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	IsActive     bool   `json:"is_active"`
	StudentCount int    `json:"student_count"`
}

// ClassDetails is the single-class view with the course and teacher
// summaries inlined.
type ClassDetails struct {
	Class
	Course struct {
		CourseCode string `json:"course_code"`
		Title      string `json:"title"`
	} `json:"course"`
	Teacher struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"teacher"`
}

// CreateClass is the POST /api/classes body.
type CreateClass struct {
	CourseID  ID     `json:"course_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Section   string `json:"section" validate:"required"`
	Schedule  string `json:"schedule,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// UpdateClass is the PUT /api/classes/:id body.
type UpdateClass struct {
	Name      *string `json:"name,omitempty"`
	Section   *string `json:"section,omitempty"`
	Schedule  *string `json:"schedule,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// ClassActivity is one entry of the recent activity feed in ClassStats.
type ClassActivity struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ClassStats is the GET /api/classes/:id/stats payload.
type ClassStats struct {
	AverageScore      float64         `json:"average_score"`
	AssessmentCount   int             `json:"assessment_count"`
	CompletionRate    float64         `json:"completion_rate"`
	GradeDistribution map[string]int  `json:"grade_distribution"`
	RecentActivities  []ClassActivity `json:"recent_activities"`
}

// ClassesByCourse filters classes belonging to a course.
func ClassesByCourse(classes []Class, courseID ID) []Class {
	var out []Class
	for _, c := range classes {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	return out
}

// TeacherClasses filters classes taught by a teacher.
func TeacherClasses(classes []Class, teacherID ID) []Class {
	var out []Class
	for _, c := range classes {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out
}

// ClassSummary aggregates the teacher dashboard counters.
type ClassSummary struct {
	ActiveClasses    int
	AverageClassSize int
}

// SummarizeClasses counts active classes and their average enrolment,
// rounded to the nearest student.  With no active class both are zero.
func SummarizeClasses(classes []Class) ClassSummary {
	var active, students int
	for _, c := range classes {
		if !c.IsActive {
			continue
		}
		active++
		students += c.StudentCount
	}
	if active == 0 {
		return ClassSummary{}
	}
	avg := int(math.Round(float64(students) / float64(active)))
	return ClassSummary{ActiveClasses: active, AverageClassSize: avg}
}

// ClassOverview is the per-class card shown to a teacher.
type ClassOverview struct {
	StudentCount int
	CourseTitle  string
	CourseCode   string
}

// OverviewFor builds the card for classID among the teacher's classes.  It
// reports false when the class is not one of the teacher's.
func OverviewFor(classes []Class, courses []Course, teacherID, classID ID) (ClassOverview, bool) {
	for _, c := range TeacherClasses(classes, teacherID) {
		if c.ID != classID {
			continue
		}
		ov := ClassOverview{StudentCount: c.StudentCount}
		if course, ok := FindCourse(courses, c.CourseID); ok {
			ov.CourseTitle = course.Title
			ov.CourseCode = course.CourseCode
		}
		return ov, true
	}
	return ClassOverview{}, false
}
