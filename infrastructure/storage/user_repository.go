//go:generate go run go.uber.org/mock/mockgen -source=user_repository.go -destination=../../mocks/mock_user_repository.go -package=mocks
package storage

import (
	"errors"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix  = "user:"
	emailPrefix = "email:"
)

type IUserRepository interface {
	CreateUser(name, email, hashedPassword string, role domain.Role) (domain.Account, error)
	GetUserByEmail(email string) (domain.Account, error)
	GetUserByID(id string) (domain.Account, error)
	ListUsers(role domain.Role) ([]domain.Account, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists a new account under a fresh id.
// Emails are unique regardless of case.
func (u *UserRepository) CreateUser(name, email, hashedPassword string, role domain.Role) (domain.Account, error) {
	account := domain.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.TrimSpace(email),
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(emailPrefix + normalizeEmail(account.Email))
		_, err := txn.Get(emailKey)
		switch {
		case err == nil:
			return safeerrors.ErrUserAlreadyExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		if err = txn.Set(emailKey, []byte(account.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(userPrefix+account.ID), encodeAccount(account))
	})
	if errors.Is(err, safeerrors.ErrUserAlreadyExists) {
		return domain.Account{}, err
	}
	if err != nil {
		return domain.Account{}, storageError(err)
	}
	return account, nil
}

func (u *UserRepository) GetUserByEmail(email string) (domain.Account, error) {
	var account domain.Account
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(emailPrefix + normalizeEmail(email)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		account, err = getAccount(txn, string(id))
		return err
	})
	if err != nil {
		return domain.Account{}, accountError(err)
	}
	return account, nil
}

func (u *UserRepository) GetUserByID(id string) (domain.Account, error) {
	var account domain.Account
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		account, err = getAccount(txn, id)
		return err
	})
	if err != nil {
		return domain.Account{}, accountError(err)
	}
	return account, nil
}

// ListUsers returns accounts sorted by name. An empty role lists everyone.
func (u *UserRepository) ListUsers(role domain.Role) ([]domain.Account, error) {
	var accounts []domain.Account
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				account, err := decodeAccount(val)
				if err != nil {
					return err
				}
				if role == "" || account.Role == role {
					accounts = append(accounts, account)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}

func getAccount(txn *badger.Txn, id string) (domain.Account, error) {
	item, err := txn.Get([]byte(userPrefix + id))
	if err != nil {
		return domain.Account{}, err
	}
	var account domain.Account
	err = item.Value(func(val []byte) error {
		account, err = decodeAccount(val)
		return err
	})
	return account, err
}

func accountError(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return safeerrors.ErrUserNotFound
	}
	return storageError(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
