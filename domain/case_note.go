package domain

import (
	"time"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CaseNote is a counsellor's record about a survivor.
type CaseNote struct {
	ID           string    `json:"id"`
	SurvivorID   string    `json:"survivorId"`
	CounsellorID string    `json:"counsellorId"`
	Notes        string    `json:"notes"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Involves reports whether userID is the survivor or the author of the note.
func (n CaseNote) Involves(userID string) bool {
	return n.SurvivorID == userID || n.CounsellorID == userID
}

type CreateCaseNoteCommand struct {
	SurvivorID string    `json:"survivorId" validate:"id"`
	Notes      string    `json:"notes" validate:"required"`
	RiskLevel  RiskLevel `json:"riskLevel" validate:"omitempty,oneof=low medium high"`
}

func (c CreateCaseNoteCommand) Validate() error {
	return validateStruct(c)
}

// UpdateCaseNoteCommand carries a partial update; nil fields are left untouched.
type UpdateCaseNoteCommand struct {
	Notes     *string    `json:"notes" validate:"omitempty,min=1"`
	RiskLevel *RiskLevel `json:"riskLevel" validate:"omitempty,oneof=low medium high"`
}

func (c UpdateCaseNoteCommand) Validate() error {
	return validateStruct(c)
}
