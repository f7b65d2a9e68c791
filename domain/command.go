package domain

import (
	stderrors "errors"
	"fmt"
	safeerrors "safe-space/errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("id", func(fl validator.FieldLevel) bool {
		return ValidateID(fl.Field().String()) == nil
	})
	return v
}

// SendMessageCommand is the intent of a caller to append a message.
type SendMessageCommand struct {
	SenderID   string `validate:"id"`
	ReceiverID string `validate:"id,nefield=SenderID"`
	Body       string `validate:"required"`
}

// NewSendMessageCommand trims the body the way it will be stored.
func NewSendMessageCommand(senderID, receiverID, body string) SendMessageCommand {
	return SendMessageCommand{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       strings.TrimSpace(body),
	}
}

func (c SendMessageCommand) Validate() error {
	return validateStruct(c)
}

// ThreadCommand addresses the conversation between a caller and a counterpart.
type ThreadCommand struct {
	CallerID      string `validate:"id"`
	CounterpartID string `validate:"id,nefield=CallerID"`
}

func (c ThreadCommand) Validate() error {
	return validateStruct(c)
}

// validateStruct runs the struct tags and translates the first failure
// into the matching validation sentinel.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("%w: %v", safeerrors.ErrValidation, err)
	}
	fe := fieldErrors[0]
	switch fe.Tag() {
	case "id":
		return fmt.Errorf("%w: %s", safeerrors.ErrMalformedID, fe.Field())
	case "nefield":
		return safeerrors.ErrSelfConversation
	case "required":
		if fe.Field() == "Body" {
			return safeerrors.ErrEmptyBody
		}
	}
	return fmt.Errorf("%w: %s failed on %s", safeerrors.ErrValidation, fe.Field(), fe.Tag())
}
