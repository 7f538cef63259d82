package tutor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Turn roles.
const (
	RoleUser  = "user"
	RoleTutor = "tutor"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is any service that can hold a tutoring conversation with a hosted
// language model.
type Client interface {
	// Converse sends one chat turn and returns the model's raw textual
	// reply. history must not include message itself. A single attempt is
	// made; any network or API failure surfaces as a *TransportError.
	Converse(ctx context.Context, systemPrompt string, history []Turn, message string) (string, error)
}

// TransportError indicates the tutor service could not be reached or
// answered with a failure. It is shown to the end user and must never crash
// the conversation.
type TransportError struct {
	Err error
}

func NewTransportError(err error) error {
	return &TransportError{Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tutor unavailable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsTransportError(err error) bool {
	_, ok := errors.Cause(err).(*TransportError)
	return ok
}
