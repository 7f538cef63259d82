package topic

import (
	"github.com/go-playground/validator/v10"

	"github.com/neolearn/neolearn/core"
)

// Topic is a named unit of tutoring content, defined entirely by the
// system-prompt text handed to the tutor model.
type Topic struct {
	Title  string `json:"title" db:"title"`
	Prompt string `json:"prompt" db:"prompt"`
}

// NewTopic contains information needed to add a Topic to the catalog.
type NewTopic struct {
	Title  string `json:"title" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
}

func (nt *NewTopic) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Prompt = core.CleanString(nt.Prompt)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckUniqueness(nt.Title)
}
