package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/utils"
)

// User is one row of the users table.
type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Role            model.Role
	ThemePreference string
	ProfileImage    string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Model is the public view of the row.
func (u User) Model() model.User {
	return model.User{
		ID:              model.IDFromInt(u.ID),
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		ThemePreference: u.ThemePreference,
		ProfileImage:    u.ProfileImage,
	}
}

// NewUser is the input of UserRepo.Create.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

var ErrEmailExists = errors.New("email already exists")

type UserRepo struct {
	rows *table[User]

	mu      sync.Mutex // serializes email uniqueness checks with inserts
	byEmail map[string]int64
	cost    int
}

func NewUserRepo(bcryptCost int) *UserRepo {
	return &UserRepo{rows: newTable[User](), byEmail: make(map[string]int64), cost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user with a bcrypt-hashed password and returns its ID.
func (r *UserRepo) Create(_ context.Context, in NewUser, now time.Time) (int64, error) {
	email := normalizeEmail(in.Email)
	hash, err := utils.HashPassword(in.Password, r.cost)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return 0, ErrEmailExists
	}
	u := r.rows.insert(func(id int64) User {
		return User{
			ID:           id,
			Email:        email,
			PasswordHash: hash,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Role:         in.Role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	})
	r.byEmail[email] = u.ID
	return u.ID, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.Unlock()
	if !ok {
		return User{}, ErrNotFound
	}
	return r.GetByID(context.Background(), id)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(_ context.Context, id int64) (User, error) {
	u, ok := r.rows.get(id)
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of p.  Changing the email keeps
// it unique; a new password is re-hashed.
func (r *UserRepo) UpdateProfile(_ context.Context, id int64, p model.UpdateProfile, now time.Time) (User, error) {
	var hash string
	if p.Password != nil {
		h, err := utils.HashPassword(*p.Password, r.cost)
		if err != nil {
			return User{}, err
		}
		hash = h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var oldEmail, newEmail string
	u, err := r.rows.update(id, func(u *User) error {
		if p.Email != nil {
			email := normalizeEmail(*p.Email)
			if owner, ok := r.byEmail[email]; ok && owner != u.ID {
				return ErrEmailExists
			}
			oldEmail, newEmail = u.Email, email
			u.Email = email
		}
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		if p.ThemePreference != nil {
			u.ThemePreference = *p.ThemePreference
		}
		if p.ProfileImage != nil {
			u.ProfileImage = *p.ProfileImage
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return User{}, err
	}
	if newEmail != "" && newEmail != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = id
	}
	return u, nil
}

// List returns one page of users ordered by id, plus the total count.
func (r *UserRepo) List(_ context.Context, page, perPage int) ([]User, int) {
	all := r.rows.all(nil)
	return paginate(all, page, perPage), len(all)
}
