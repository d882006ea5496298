package intelligence

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Prompt is a backend neutral chat request.
type Prompt struct {
	System    string
	Messages  []Message
	MaxTokens int
	JSON      bool
}

// Completer sends a prompt to one model backend and returns the reply text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ErrNotConfigured is returned when no backend has credentials.
var ErrNotConfigured = errors.New("no AI provider configured")

// ProviderError wraps a failure of the model backend or of its reply.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
