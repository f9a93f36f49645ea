package service

import (
	"context"

	"github.com/iliyamo/classroom-client/internal/model"
)

type UserService struct{ api API }

// Me returns the profile of the authenticated user.
func (s *UserService) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := s.api.Get(ctx, "/api/users/me", nil, &out)
	return out, err
}

func (s *UserService) UpdateProfile(ctx context.Context, in model.UpdateProfile) (model.User, error) {
	var out model.User
	err := s.api.Put(ctx, "/api/users/me", in, &out)
	return out, err
}

// List returns one page of users (admin only).
func (s *UserService) List(ctx context.Context, page, perPage int) (model.Page[model.User], error) {
	var out model.Page[model.User]
	err := s.api.Get(ctx, "/api/users", pageQuery(page, perPage), &out)
	return out, err
}
