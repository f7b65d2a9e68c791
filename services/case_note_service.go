package services

import (
	"context"
	"fmt"
	"log/slog"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/infrastructure/storage"
	"strings"

	"github.com/samber/lo"
)

type ICaseNoteService interface {
	List(ctx context.Context, caller domain.Identity) ([]domain.CaseNote, error)
	Get(ctx context.Context, caller domain.Identity, id string) (domain.CaseNote, error)
	Create(ctx context.Context, caller domain.Identity, cmd domain.CreateCaseNoteCommand) (domain.CaseNote, error)
	Update(ctx context.Context, caller domain.Identity, id string, cmd domain.UpdateCaseNoteCommand) (domain.CaseNote, error)
	Delete(ctx context.Context, caller domain.Identity, id string) error
}

// CaseNoteService applies the role policy around case-note storage:
// counsellors write and see their own notes, survivors see notes about
// them, legal staff read everything and admins do everything.
type CaseNoteService struct {
	log        *slog.Logger
	repository storage.ICaseNoteRepository
	directory  IDirectory
}

func NewCaseNoteService(log *slog.Logger, repository storage.ICaseNoteRepository, directory IDirectory) *CaseNoteService {
	return &CaseNoteService{log: log, repository: repository, directory: directory}
}

func (s *CaseNoteService) List(_ context.Context, caller domain.Identity) ([]domain.CaseNote, error) {
	notes, err := s.repository.ListCaseNotes()
	if err != nil {
		return nil, err
	}
	return lo.Filter(notes, func(n domain.CaseNote, _ int) bool {
		switch caller.Role {
		case domain.RoleAdmin, domain.RoleLegal:
			return true
		case domain.RoleCounsellor:
			return n.CounsellorID == caller.ID
		case domain.RoleSurvivor:
			return n.SurvivorID == caller.ID
		}
		return false
	}), nil
}

func (s *CaseNoteService) Get(_ context.Context, caller domain.Identity, id string) (domain.CaseNote, error) {
	if err := domain.ValidateID(id); err != nil {
		return domain.CaseNote{}, err
	}
	note, err := s.repository.GetCaseNote(id)
	if err != nil {
		return domain.CaseNote{}, err
	}
	if !caller.Role.In(domain.RoleAdmin, domain.RoleLegal) && !note.Involves(caller.ID) {
		return domain.CaseNote{}, errors.ErrAccessDenied
	}
	return note, nil
}

func (s *CaseNoteService) Create(ctx context.Context, caller domain.Identity, cmd domain.CreateCaseNoteCommand) (domain.CaseNote, error) {
	if err := canWrite(caller); err != nil {
		return domain.CaseNote{}, err
	}
	cmd.Notes = strings.TrimSpace(cmd.Notes)
	if err := cmd.Validate(); err != nil {
		return domain.CaseNote{}, err
	}

	survivor, err := s.directory.Profile(ctx, cmd.SurvivorID)
	switch {
	case errors.IsNotFound(err):
		return domain.CaseNote{}, fmt.Errorf("%w: survivor %s does not exist", errors.ErrValidation, cmd.SurvivorID)
	case err != nil:
		return domain.CaseNote{}, err
	case survivor.Role != domain.RoleSurvivor:
		return domain.CaseNote{}, fmt.Errorf("%w: user %s is not a survivor", errors.ErrValidation, cmd.SurvivorID)
	}

	note, err := s.repository.CreateCaseNote(domain.CaseNote{
		SurvivorID:   cmd.SurvivorID,
		CounsellorID: caller.ID,
		Notes:        cmd.Notes,
		RiskLevel:    lo.CoalesceOrEmpty(cmd.RiskLevel, domain.RiskLow),
	})
	if err != nil {
		return domain.CaseNote{}, err
	}
	s.log.Info("Case note created", "note_id", note.ID, "user_id", caller.ID)
	return note, nil
}

func (s *CaseNoteService) Update(_ context.Context, caller domain.Identity, id string, cmd domain.UpdateCaseNoteCommand) (domain.CaseNote, error) {
	if cmd.Notes != nil {
		cmd.Notes = lo.ToPtr(strings.TrimSpace(*cmd.Notes))
	}
	if err := cmd.Validate(); err != nil {
		return domain.CaseNote{}, err
	}
	note, err := s.authored(caller, id)
	if err != nil {
		return domain.CaseNote{}, err
	}
	if cmd.Notes != nil {
		note.Notes = *cmd.Notes
	}
	if cmd.RiskLevel != nil {
		note.RiskLevel = *cmd.RiskLevel
	}
	return s.repository.UpdateCaseNote(note)
}

func (s *CaseNoteService) Delete(_ context.Context, caller domain.Identity, id string) error {
	if _, err := s.authored(caller, id); err != nil {
		return err
	}
	if err := s.repository.DeleteCaseNote(id); err != nil {
		return err
	}
	s.log.Info("Case note deleted", "note_id", id, "user_id", caller.ID)
	return nil
}

// authored loads the note when caller may modify it.
func (s *CaseNoteService) authored(caller domain.Identity, id string) (domain.CaseNote, error) {
	if err := canWrite(caller); err != nil {
		return domain.CaseNote{}, err
	}
	if err := domain.ValidateID(id); err != nil {
		return domain.CaseNote{}, err
	}
	note, err := s.repository.GetCaseNote(id)
	if err != nil {
		return domain.CaseNote{}, err
	}
	if caller.Role != domain.RoleAdmin && note.CounsellorID != caller.ID {
		return domain.CaseNote{}, fmt.Errorf("%w: not the author of the case note", errors.ErrAccessDenied)
	}
	return note, nil
}

func canWrite(caller domain.Identity) error {
	if !caller.Role.In(domain.RoleCounsellor, domain.RoleAdmin) {
		return fmt.Errorf("%w: role %s cannot write case notes", errors.ErrAccessDenied, caller.Role)
	}
	return nil
}
