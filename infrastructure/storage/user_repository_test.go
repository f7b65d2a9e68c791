package storage

import (
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	created, err := repository.CreateUser("Sam Carter", "Sam@Example.com", "$argon2id$hash", domain.RoleSurvivor)
	req.NoError(err)
	req.NoError(domain.ValidateID(created.ID))

	byEmail, err := repository.GetUserByEmail("  sam@example.COM ")
	req.NoError(err)
	req.Equal(created, byEmail)

	byID, err := repository.GetUserByID(created.ID)
	req.NoError(err)
	req.Equal(created, byID)
	req.Equal(domain.Profile{ID: created.ID, Name: "Sam Carter", Email: "Sam@Example.com", Role: domain.RoleSurvivor}, byID.Profile())
}

func Test_Create_User_Rejects_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("Sam", "sam@example.com", "hash", domain.RoleSurvivor)
	req.NoError(err)
	_, err = repository.CreateUser("Other Sam", "SAM@example.com", "hash", domain.RoleCounsellor)
	req.ErrorIs(err, safeerrors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByID(uuid.NewString())
	req.ErrorIs(err, safeerrors.ErrUserNotFound)
	req.ErrorIs(err, safeerrors.ErrNotFound)

	_, err = repository.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, safeerrors.ErrUserNotFound)
}

func Test_List_Users_By_Role(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("Zoe", "zoe@example.com", "hash", domain.RoleCounsellor)
	req.NoError(err)
	_, err = repository.CreateUser("Adam", "adam@example.com", "hash", domain.RoleCounsellor)
	req.NoError(err)
	_, err = repository.CreateUser("Mia", "mia@example.com", "hash", domain.RoleSurvivor)
	req.NoError(err)

	counsellors, err := repository.ListUsers(domain.RoleCounsellor)
	req.NoError(err)
	req.Len(counsellors, 2)
	req.Equal("Adam", counsellors[0].Name)
	req.Equal("Zoe", counsellors[1].Name)

	everyone, err := repository.ListUsers("")
	req.NoError(err)
	req.Len(everyone, 3)
}
