package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/classroom-client/internal/model"
)

// ClassRepo stores classes and their enrolments.  StudentCount on the
// returned records is derived from the enrolment set.
type ClassRepo struct {
	rows *table[model.Class]

	mu       sync.RWMutex
	enrolled map[int64]map[int64]bool // class id -> student ids
}

func NewClassRepo() *ClassRepo {
	return &ClassRepo{rows: newTable[model.Class](), enrolled: make(map[int64]map[int64]bool)}
}

func (r *ClassRepo) withCount(id int64, c model.Class) model.Class {
	r.mu.RLock()
	c.StudentCount = len(r.enrolled[id])
	r.mu.RUnlock()
	return c
}

func (r *ClassRepo) Create(_ context.Context, teacherID int64, in model.CreateClass) model.Class {
	return r.rows.insert(func(id int64) model.Class {
		return model.Class{
			ID:        model.IDFromInt(id),
			CourseID:  in.CourseID,
			TeacherID: model.IDFromInt(teacherID),
			Name:      in.Name,
			Section:   in.Section,
			Schedule:  in.Schedule,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			IsActive:  true,
		}
	})
}

func (r *ClassRepo) Get(_ context.Context, id int64) (model.Class, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return model.Class{}, ErrNotFound
	}
	return r.withCount(id, c), nil
}

// List returns one page of the classes visible to keep (all when nil),
// plus the number of matching classes.
func (r *ClassRepo) List(_ context.Context, keep func(model.Class) bool, page, perPage int) ([]model.Class, int) {
	all := r.rows.all(keep)
	out := paginate(all, page, perPage)
	for i := range out {
		id, _ := parseID(out[i].ID)
		out[i] = r.withCount(id, out[i])
	}
	return out, len(all)
}

// CountByCourse is the number of classes scheduled for a course.
func (r *ClassRepo) CountByCourse(_ context.Context, courseID model.ID) int {
	return len(r.rows.all(func(c model.Class) bool { return c.CourseID == courseID }))
}

func (r *ClassRepo) Update(_ context.Context, id int64, in model.UpdateClass) (model.Class, error) {
	c, err := r.rows.update(id, func(c *model.Class) error {
		if in.Name != nil {
			c.Name = *in.Name
		}
		if in.Section != nil {
			c.Section = *in.Section
		}
		if in.Schedule != nil {
			c.Schedule = *in.Schedule
		}
		if in.StartDate != nil {
			c.StartDate = *in.StartDate
		}
		if in.EndDate != nil {
			c.EndDate = *in.EndDate
		}
		if in.IsActive != nil {
			c.IsActive = *in.IsActive
		}
		return nil
	})
	if err != nil {
		return model.Class{}, err
	}
	return r.withCount(id, c), nil
}

func (r *ClassRepo) Delete(_ context.Context, id int64) error {
	if err := r.rows.remove(id); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.enrolled, id)
	r.mu.Unlock()
	return nil
}

// Enroll adds a student; enrolling twice is a conflict.
func (r *ClassRepo) Enroll(_ context.Context, classID, studentID int64) error {
	if _, ok := r.rows.get(classID); !ok {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.enrolled[classID]
	if set == nil {
		set = make(map[int64]bool)
		r.enrolled[classID] = set
	}
	if set[studentID] {
		return ErrConflict
	}
	set[studentID] = true
	return nil
}

func (r *ClassRepo) Unenroll(_ context.Context, classID, studentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enrolled[classID][studentID] {
		return ErrNotFound
	}
	delete(r.enrolled[classID], studentID)
	return nil
}

// Students returns the enrolled student ids in ascending order.
func (r *ClassRepo) Students(_ context.Context, classID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.enrolled[classID]))
	for id := range r.enrolled[classID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsEnrolled reports whether a student attends a class.
func (r *ClassRepo) IsEnrolled(_ context.Context, classID, studentID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enrolled[classID][studentID]
}
