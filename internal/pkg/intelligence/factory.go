package intelligence

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lexforge/lexforge/internal/pkg/env"
)

// NewFromEnv selects the backend named by AI_PROVIDER (gemini, claude or
// groq). Without AI_PROVIDER the first backend with an API key wins, in that
// order. It returns ErrNotConfigured when no key is set.
func NewFromEnv(ctx context.Context) (Provider, error) {
	name := strings.ToLower(env.GetEnv("AI_PROVIDER", ""))

	candidates := []string{"gemini", "claude", "groq"}
	if name != "" {
		candidates = []string{name}
	}

	for _, candidate := range candidates {
		completer, err := newCompleter(ctx, candidate)
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Infof("[Intelligence] using %s", completer.Name())
		return NewAssistant(completer), nil
	}
	log.Warn("[Intelligence] no AI provider configured, document analysis disabled")
	return nil, ErrNotConfigured
}

func newCompleter(ctx context.Context, name string) (Completer, error) {
	switch name {
	case "gemini":
		return NewGeminiCompleter(ctx, env.GetEnv("GEMINI_API_KEY", ""), env.GetEnv("GEMINI_MODEL", ""))
	case "claude", "anthropic":
		return NewClaudeCompleter(env.GetEnv("ANTHROPIC_API_KEY", ""), env.GetEnv("CLAUDE_MODEL", ""))
	case "groq":
		return NewGroqCompleter(env.GetEnv("GROQ_API_KEY", ""), env.GetEnv("GROQ_BASE_URL", ""), env.GetEnv("GROQ_MODEL", ""))
	default:
		log.Warnf("[Intelligence] unknown AI_PROVIDER %q", name)
		return nil, ErrNotConfigured
	}
}
