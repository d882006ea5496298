package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	maxDocumentChars = 15000
	defaultTimeout   = 60 * time.Second
)

const systemPrompt = `Você é o assistente jurídico do escritório. Analise documentos, sugira melhorias protetivas e redija cláusulas para contratos brasileiros.
Use linguagem jurídica formal, mas clara.`

// Provider is the document intelligence capability set.
type Provider interface {
	Name() string
	AnalyzeDocument(ctx context.Context, text string) (*Analysis, error)
	SuggestChanges(ctx context.Context, text, request string) (*Suggestions, error)
	ApplyChanges(ctx context.Context, text string, changes []Change) (*Applied, error)
	GenerateClause(ctx context.Context, clauseType, details string) (*GeneratedClause, error)
	Chat(ctx context.Context, text string, history []Message, message string) (string, error)
}

// Assistant implements Provider on top of any Completer.
type Assistant struct {
	completer Completer
	timeout   time.Duration
}

func NewAssistant(c Completer) *Assistant {
	return &Assistant{completer: c, timeout: defaultTimeout}
}

func (a *Assistant) Name() string {
	return a.completer.Name()
}

func (a *Assistant) AnalyzeDocument(ctx context.Context, text string) (*Analysis, error) {
	prompt := fmt.Sprintf(`Analise este documento jurídico e extraia as informações principais.

Documento:
%s

Retorne APENAS um objeto JSON com: tipo, partes {contratante, contratado, outras}, objeto, valor, prazo,
clausulas_identificadas [{numero, titulo, conteudo, categoria}], clausulas_problematicas [{clausula, problema, risco}],
pontos_atencao [], resumo.`, truncate(text))

	var out Analysis
	if err := a.completeJSON(ctx, prompt, 4000, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Assistant) SuggestChanges(ctx context.Context, text, request string) (*Suggestions, error) {
	prompt := fmt.Sprintf(`Documento:
%s

Solicitação do cliente: %s

Sugira alterações específicas. Retorne APENAS um objeto JSON com: sugestoes [{tipo (adicao/remocao/alteracao),
clausula_afetada, texto_original, texto_sugerido, justificativa, impacto, prioridade}],
clausulas_adicionais_recomendadas [{titulo, conteudo}], alertas [], resumo_mudancas.`, truncate(text), request)

	var out Suggestions
	if err := a.completeJSON(ctx, prompt, 5000, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Assistant) ApplyChanges(ctx context.Context, text string, changes []Change) (*Applied, error) {
	if len(changes) == 0 {
		return &Applied{Texto: text}, nil
	}
	raw, err := json.MarshalIndent(changes, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Documento original:
%s

Aplique exatamente estas alterações e mantenha o restante do texto:
%s

Retorne APENAS um objeto JSON com: texto (documento completo modificado), alteracoes [].`, text, raw)

	var out Applied
	if err := a.completeJSON(ctx, prompt, 8000, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Texto) == "" {
		return nil, &ProviderError{Provider: a.Name(), Err: errors.New("empty document in reply")}
	}
	return &out, nil
}

func (a *Assistant) GenerateClause(ctx context.Context, clauseType, details string) (*GeneratedClause, error) {
	prompt := fmt.Sprintf("Gere uma cláusula jurídica profissional para contratos brasileiros.\n\nTipo de cláusula: %q", clauseType)
	if strings.TrimSpace(details) != "" {
		prompt += "\n\nContexto adicional:\n" + details
	}
	prompt += "\n\nRetorne APENAS um objeto JSON com: clausula {titulo, texto, variantes [{nome, texto}], observacoes}."

	var out struct {
		Clausula GeneratedClause `json:"clausula"`
	}
	if err := a.completeJSON(ctx, prompt, 3000, &out); err != nil {
		return nil, err
	}
	return &out.Clausula, nil
}

func (a *Assistant) Chat(ctx context.Context, text string, history []Message, message string) (string, error) {
	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: RoleUser, Content: message})

	reply, err := a.complete(ctx, Prompt{
		System:    systemPrompt + "\n\nDocumento em discussão:\n" + truncate(text),
		Messages:  msgs,
		MaxTokens: 2000,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (a *Assistant) completeJSON(ctx context.Context, prompt string, maxTokens int, out any) error {
	reply, err := a.complete(ctx, Prompt{
		System:    systemPrompt,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
		JSON:      true,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), out); err != nil {
		log.Warnf("[Intelligence] %s returned invalid JSON: %v", a.Name(), err)
		return &ProviderError{Provider: a.Name(), Err: fmt.Errorf("decode reply: %w", err)}
	}
	return nil
}

func (a *Assistant) complete(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	reply, err := a.completer.Complete(ctx, p)
	if err != nil {
		log.Errorf("[Intelligence] %s request failed after %v: %v", a.Name(), time.Since(start), err)
		var pe *ProviderError
		if errors.As(err, &pe) {
			return "", err
		}
		return "", &ProviderError{Provider: a.Name(), Err: err}
	}
	log.Debugf("[Intelligence] %s replied in %v", a.Name(), time.Since(start))
	return reply, nil
}

// StripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	} else {
		cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "```json"), "```")
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxDocumentChars {
		return text
	}
	return string(r[:maxDocumentChars])
}
