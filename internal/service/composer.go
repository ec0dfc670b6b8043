package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/config"
	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/knowledge"
	"github.com/acuellar/atiende/internal/llm"
)

const (
	// FallbackReply is emitted when nothing matched and no model is available.
	FallbackReply = "Lo siento, no tengo información sobre eso. ¿Podrías reformular tu pregunta?"

	// ApologyReply replaces any generation failure with no retrieved rows to
	// fall back on. A raw fault never reaches the widget.
	ApologyReply = "Disculpa, tuve un problema al procesar tu consulta. Por favor intenta de nuevo en un momento."

	// minGeneratedLength is the plausibility floor for hybrid output. Shorter
	// generations are discarded in favor of the retrieved rows.
	minGeneratedLength = 30

	// maxContextRows caps the knowledge and product rows embedded in the
	// hybrid prompt preamble.
	maxContextRows = 10
)

// Answer is a composed reply with its provenance.
type Answer struct {
	Text       string
	Confidence *float64
	SourceTag  string
}

// ComposeInput carries everything one composition needs.
type ComposeInput struct {
	Profile    domain.BusinessProfile
	Query      string
	Candidates []domain.MatchCandidate
	Semantic   bool // candidates came from the semantic matcher
	Rows       []domain.KnowledgeRow
	Products   []domain.Product
}

// Composer turns matched rows into the final chat reply, optionally through a
// generative model. Mode is fixed by configuration (ia.modo).
type Composer struct {
	mode     string
	provider llm.Provider
	logger   *zap.Logger
}

// NewComposer creates a composer. provider may be nil, which degrades the
// generative modes to the direct behavior.
func NewComposer(mode string, provider llm.Provider, logger *zap.Logger) *Composer {
	return &Composer{mode: mode, provider: provider, logger: logger}
}

// Compose produces the assistant reply for a query. It never returns an
// error: every failure branch degrades to retrieved rows or a fixed sentence.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) Answer {
	mode := c.mode
	if c.provider == nil {
		mode = config.ModeDirect
	}

	switch mode {
	case config.ModeGenerative:
		return c.generativeOnly(ctx, in)
	case config.ModeHybrid:
		return c.hybrid(ctx, in)
	default:
		return c.direct(in)
	}
}

// direct returns the top match's value untouched; the semantic path applies
// the sentinel / verbatim / bulleted rules instead.
func (c *Composer) direct(in ComposeInput) Answer {
	if in.Semantic {
		reply, found := knowledge.ComposeReply(in.Candidates)
		if !found {
			return Answer{Text: reply, SourceTag: domain.SourceFallback}
		}
		best := in.Candidates[0].Score
		return Answer{Text: reply, Confidence: &best, SourceTag: domain.SourceSemantic}
	}

	if len(in.Candidates) > 0 {
		return Answer{Text: in.Candidates[0].Row.Value, SourceTag: domain.SourceLexical}
	}

	lowered, _ := knowledge.Normalize(in.Query)
	if product, ok := knowledge.MatchProduct(in.Products, lowered); ok {
		return Answer{Text: knowledge.FormatProduct(product), SourceTag: domain.SourceLexical}
	}

	return Answer{Text: FallbackReply, SourceTag: domain.SourceFallback}
}

// generativeOnly ignores retrieval and prompts the model with the query alone.
func (c *Composer) generativeOnly(ctx context.Context, in ComposeInput) Answer {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(
				"Eres el asistente virtual de %s. Responde en español, breve y amable.", in.Profile.Nombre)},
			{Role: llm.RoleUser, Content: in.Query},
		},
	})
	if err != nil {
		return c.recover(in, err)
	}

	text := trimEcho(resp.Content, in.Query)
	if text == "" {
		return c.recover(in, domain.ErrGeneration)
	}
	return Answer{Text: text, SourceTag: domain.SourceGenerative}
}

// hybrid prompts the model with the business preamble, the retrieved rows and
// the query. Implausibly short output is discarded in favor of the rows.
func (c *Composer) hybrid(ctx context.Context, in ComposeInput) Answer {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: c.hybridPreamble(in)},
			{Role: llm.RoleUser, Content: in.Query},
		},
	})
	if err != nil {
		return c.recover(in, err)
	}

	text := trimEcho(resp.Content, in.Query)
	if len(text) < minGeneratedLength && len(in.Candidates) > 0 {
		c.logger.Debug("discarding short generation", zap.Int("length", len(text)))
		return Answer{Text: bulletRows(in.Candidates), SourceTag: domain.SourceLexical}
	}
	if text == "" {
		return c.recover(in, domain.ErrGeneration)
	}
	return Answer{Text: text, SourceTag: domain.SourceGenerative}
}

// recover maps a generation failure to retrieved rows when present, else the
// generic apology. Failed calls are never retried.
func (c *Composer) recover(in ComposeInput, err error) Answer {
	c.logger.Warn("generation failed, falling back", zap.Error(err))
	if len(in.Candidates) > 0 {
		return Answer{Text: bulletRows(in.Candidates), SourceTag: domain.SourceLexical}
	}
	return Answer{Text: ApologyReply, SourceTag: domain.SourceFallback}
}

func (c *Composer) hybridPreamble(in ComposeInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Eres el asistente virtual de %s. Responde en español usando únicamente la información siguiente.\n", in.Profile.Nombre)

	if len(in.Rows) > 0 {
		b.WriteString("\nInformación del negocio:\n")
		for i, row := range in.Rows {
			if i == maxContextRows {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", row.Key, row.Value)
		}
	}

	if len(in.Products) > 0 {
		b.WriteString("\nProductos:\n")
		for i, p := range in.Products {
			if i == maxContextRows {
				break
			}
			fmt.Fprintf(&b, "- %s\n", knowledge.FormatProduct(p))
		}
	}

	if len(in.Candidates) > 0 {
		b.WriteString("\nInformación relevante para esta consulta:\n")
		for _, cand := range in.Candidates {
			fmt.Fprintf(&b, "- %s: %s\n", cand.Row.Key, cand.Row.Value)
		}
	}

	return b.String()
}

// trimEcho strips whitespace and any leading echo of the prompt from decoded
// model output.
func trimEcho(output, query string) string {
	text := strings.TrimSpace(output)
	if query != "" && strings.HasPrefix(text, query) {
		text = strings.TrimSpace(text[len(query):])
		text = strings.TrimLeft(text, ":.,- \t\n")
	}
	return text
}

func bulletRows(candidates []domain.MatchCandidate) string {
	var b strings.Builder
	b.WriteString("Esto es lo que sé al respecto:")
	for _, c := range candidates {
		b.WriteString("\n• ")
		b.WriteString(c.Row.Value)
	}
	return b.String()
}
