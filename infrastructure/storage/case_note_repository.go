//go:generate go run go.uber.org/mock/mockgen -source=case_note_repository.go -destination=../../mocks/mock_case_note_repository.go -package=mocks
package storage

import (
	"errors"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const notePrefix = "note:"

type ICaseNoteRepository interface {
	CreateCaseNote(note domain.CaseNote) (domain.CaseNote, error)
	GetCaseNote(id string) (domain.CaseNote, error)
	ListCaseNotes() ([]domain.CaseNote, error)
	UpdateCaseNote(note domain.CaseNote) (domain.CaseNote, error)
	DeleteCaseNote(id string) error
}

type CaseNoteRepository struct {
	db *badger.DB
}

func NewCaseNoteRepository(db *badger.DB) *CaseNoteRepository {
	return &CaseNoteRepository{db: db}
}

// CreateCaseNote assigns the id and both timestamps before persisting.
func (c *CaseNoteRepository) CreateCaseNote(note domain.CaseNote) (domain.CaseNote, error) {
	now := time.Now().UTC()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(notePrefix+note.ID), encodeCaseNote(note))
	})
	if err != nil {
		return domain.CaseNote{}, storageError(err)
	}
	return note, nil
}

func (c *CaseNoteRepository) GetCaseNote(id string) (domain.CaseNote, error) {
	var note domain.CaseNote
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		note, err = getCaseNote(txn, id)
		return err
	})
	if err != nil {
		return domain.CaseNote{}, caseNoteError(err)
	}
	return note, nil
}

// ListCaseNotes returns every note, most recent first.
func (c *CaseNoteRepository) ListCaseNotes() ([]domain.CaseNote, error) {
	var notes []domain.CaseNote
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(notePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				note, err := decodeCaseNote(val)
				if err != nil {
					return err
				}
				notes = append(notes, note)
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
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// UpdateCaseNote overwrites an existing note and refreshes UpdatedAt.
func (c *CaseNoteRepository) UpdateCaseNote(note domain.CaseNote) (domain.CaseNote, error) {
	note.UpdatedAt = time.Now().UTC()
	err := c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(notePrefix + note.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(notePrefix+note.ID), encodeCaseNote(note))
	})
	if err != nil {
		return domain.CaseNote{}, caseNoteError(err)
	}
	return note, nil
}

func (c *CaseNoteRepository) DeleteCaseNote(id string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(notePrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(notePrefix + id))
	})
	if err != nil {
		return caseNoteError(err)
	}
	return nil
}

func getCaseNote(txn *badger.Txn, id string) (domain.CaseNote, error) {
	item, err := txn.Get([]byte(notePrefix + id))
	if err != nil {
		return domain.CaseNote{}, err
	}
	var note domain.CaseNote
	err = item.Value(func(val []byte) error {
		note, err = decodeCaseNote(val)
		return err
	})
	return note, err
}

func caseNoteError(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return safeerrors.ErrCaseNoteNotFound
	}
	return storageError(err)
}
