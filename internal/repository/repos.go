package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/classroom-client/internal/model"
)

// Repos bundles every table of the development server.
type Repos struct {
	Users       *UserRepo
	Tokens      *TokenRepo
	Courses     *CourseRepo
	Classes     *ClassRepo
	Assessments *AssessmentRepo
	Scores      *ScoreRepo
}

func New(bcryptCost int) *Repos {
	return &Repos{
		Users:       NewUserRepo(bcryptCost),
		Tokens:      NewTokenRepo(),
		Courses:     NewCourseRepo(),
		Classes:     NewClassRepo(),
		Assessments: NewAssessmentRepo(),
		Scores:      NewScoreRepo(),
	}
}

// Demo accounts created by Seed.
const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin123"
	SeedTeacherEmail  = "teacher@example.com"
	SeedStudentEmail  = "student@example.com"
	SeedUserPassword  = "password123"
)

// Seed fills empty tables with a small demo school: one account per role,
// a course, a class taught by the teacher with the student enrolled, and a
// past and an upcoming assessment.
func (r *Repos) Seed(ctx context.Context, now time.Time) error {
	users := []NewUser{
		{Email: SeedAdminEmail, Password: SeedAdminPassword, FirstName: "Ada", LastName: "Admin", Role: model.RoleAdmin},
		{Email: SeedTeacherEmail, Password: SeedUserPassword, FirstName: "Tom", LastName: "Teacher", Role: model.RoleTeacher},
		{Email: SeedStudentEmail, Password: SeedUserPassword, FirstName: "Sam", LastName: "Student", Role: model.RoleStudent},
	}
	ids := make([]int64, len(users))
	for i, u := range users {
		id, err := r.Users.Create(ctx, u, now)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		ids[i] = id
	}
	teacherID, studentID := ids[1], ids[2]

	course, err := r.Courses.Create(ctx, model.CreateCourse{
		CourseCode:  "CS101",
		Title:       "Introduction to Programming",
		Description: "Variables, control flow and functions.",
	})
	if err != nil {
		return fmt.Errorf("seed course: %w", err)
	}

	class := r.Classes.Create(ctx, teacherID, model.CreateClass{
		CourseID:  course.ID,
		Name:      "CS101 Morning",
		Section:   "A",
		Schedule:  "Mon/Wed 09:00",
		StartDate: now.AddDate(0, -1, 0).Format("2006-01-02"),
		EndDate:   now.AddDate(0, 3, 0).Format("2006-01-02"),
	})
	classID, _ := parseID(class.ID)
	if err := r.Classes.Enroll(ctx, classID, studentID); err != nil {
		return fmt.Errorf("seed enrolment: %w", err)
	}

	quiz := r.Assessments.Create(ctx, teacherID, model.CreateAssessment{
		ClassID: classID,
		Title:   "Quiz 1",
		Type:    model.AssessmentQuiz,
		Date:    now.AddDate(0, 0, -7).Format("2006-01-02"),
	}, now)
	r.Assessments.Create(ctx, teacherID, model.CreateAssessment{
		ClassID: classID,
		Title:   "Midterm",
		Type:    model.AssessmentExam,
		Date:    now.AddDate(0, 0, 14).Format("2006-01-02"),
	}, now)

	if _, err := r.Scores.Create(ctx, model.CreateScore{
		StudentID:    studentID,
		AssessmentID: quiz.ID,
		ScoreValue:   84,
		Feedback:     "Good work",
	}, now); err != nil {
		return fmt.Errorf("seed score: %w", err)
	}
	return nil
}
