package model

import (
	"sort"
	"strings"
)

// Course is a catalogue entry.  Classes are scheduled offerings of a course.
type Course struct {
	ID          ID     `json:"id" validate:"required"`
	CourseCode  string `json:"course_code" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// CreateCourse is the POST /api/courses body.
type CreateCourse struct {
	CourseCode  string `json:"course_code" validate:"required,max=20"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateCourse is the PUT /api/courses/:id body.
type UpdateCourse struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ActiveCourses returns the courses flagged active, preserving order.
func ActiveCourses(courses []Course) []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// SortCoursesByCode returns a copy of courses ordered by course code.
func SortCoursesByCode(courses []Course) []Course {
	out := append([]Course(nil), courses...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].CourseCode, out[j].CourseCode) < 0
	})
	return out
}

// FindCourse looks a course up by id.
func FindCourse(courses []Course, id ID) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}
