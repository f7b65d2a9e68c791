//go:generate go run go.uber.org/mock/mockgen -source=directory.go -destination=../mocks/mock_directory.go -package=mocks
package services

import (
	"context"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/infrastructure/storage"

	"github.com/samber/lo"
)

// IDirectory resolves user ids to public profiles.
type IDirectory interface {
	Profile(ctx context.Context, id string) (domain.Profile, error)
	ListProfiles(ctx context.Context, role domain.Role) ([]domain.Profile, error)
}

type Directory struct {
	users storage.IUserRepository
}

func NewDirectory(users storage.IUserRepository) *Directory {
	return &Directory{users: users}
}

func (d *Directory) Profile(_ context.Context, id string) (domain.Profile, error) {
	if err := domain.ValidateID(id); err != nil {
		return domain.Profile{}, err
	}
	account, err := d.users.GetUserByID(id)
	if err != nil {
		return domain.Profile{}, err
	}
	return account.Profile(), nil
}

// ListProfiles lists every profile holding role, or everyone when role is empty.
func (d *Directory) ListProfiles(_ context.Context, role domain.Role) ([]domain.Profile, error) {
	if role != "" && !role.Valid() {
		return nil, errors.ErrInvalidRole
	}
	accounts, err := d.users.ListUsers(role)
	if err != nil {
		return nil, err
	}
	return lo.Map(accounts, func(a domain.Account, _ int) domain.Profile {
		return a.Profile()
	}), nil
}
