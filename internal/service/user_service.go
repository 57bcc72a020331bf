package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/repository"
)

type UserRepository interface {
	Create(ctx context.Context, email, name string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// UserService is the thin user directory: create-or-return and lookup by
// email.
type UserService struct {
	repo UserRepository
	log  *zap.Logger
}

func NewUserService(repo UserRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, log: log}
}

// CreateOrGet returns the user registered under email, creating it when
// absent.  created reports whether a new row was written.  A concurrent
// insert of the same email resolves to the row that won.
func (s *UserService) CreateOrGet(ctx context.Context, email, name string) (u model.User, created bool, err error) {
	u, err = s.repo.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, false, err
	}

	u, err = s.repo.Create(ctx, email, name)
	if errors.Is(err, repository.ErrDuplicate) {
		u, err = s.repo.GetByEmail(ctx, email)
		return u, false, err
	}
	if err != nil {
		return model.User{}, false, err
	}
	s.log.Info("user created", zap.Uint64("user_id", u.ID))
	return u, true, nil
}

// Lookup finds a user by email.
func (s *UserService) Lookup(ctx context.Context, email string) (model.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
