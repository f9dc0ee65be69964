package core

import (
	"context"
	"errors"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

type UserService struct {
	store store.IdentityStore
}

func NewUserService(s store.IdentityStore) *UserService {
	return &UserService{store: s}
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("user not found")
		}
		return nil, InfrastructureError("failed to get user", err)
	}
	return u, nil
}
