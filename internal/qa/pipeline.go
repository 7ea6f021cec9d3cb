// Package qa orchestrates the retrieval-to-answer pipeline: normalize the
// vehicle model, retrieve passages, filter for relevance, assemble the prompt
// and generate a cited answer.
package qa

import (
	"context"
	"strings"

	"github.com/wladywlady/t3-render/internal/observability"
	"github.com/wladywlady/t3-render/internal/prompt"
	"github.com/wladywlady/t3-render/internal/retrieval"
	"github.com/wladywlady/t3-render/internal/vehicle"
)

// Searcher retrieves normalized passages for a question.
type Searcher interface {
	Search(ctx context.Context, query string, slug vehicle.Slug) ([]retrieval.Passage, error)
}

// Generator produces a completion for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pipeline sequences the pipeline stages and converts stage failures into
// classified errors. It holds no per-request state; every value below lives
// only for the duration of one Answer call.
type Pipeline struct {
	searcher  Searcher
	generator Generator
	logger    *observability.Logger
}

// NewPipeline creates a pipeline over the given backends.
func NewPipeline(searcher Searcher, generator Generator, logger *observability.Logger) *Pipeline {
	return &Pipeline{
		searcher:  searcher,
		generator: generator,
		logger:    logger,
	}
}

// Request is the external request contract.
type Request struct {
	Model    string `json:"model"`
	Question string `json:"question"`
}

// ContextPassage echoes one filtered passage back to the caller for
// transparency. Its label matches the reference with the same index.
type ContextPassage struct {
	Label    string         `json:"label"`
	Text     string         `json:"text"`
	Metadata retrieval.Meta `json:"metadata"`
	Score    *float64       `json:"score,omitempty"`
}

// Response is the success payload: the answer, the references shown to the
// model and the passages backing them.
type Response struct {
	Answer     string             `json:"answer"`
	References []prompt.Reference `json:"references"`
	Context    []ContextPassage   `json:"context"`
}

// Answer runs the full pipeline for one request. Any returned error is a
// *qa.Error; there is no partial success.
func (p *Pipeline) Answer(ctx context.Context, req Request) (*Response, error) {
	fields := make(map[string][]string)
	if strings.TrimSpace(req.Model) == "" {
		fields["model"] = append(fields["model"], MsgModelRequired)
	}
	if strings.TrimSpace(req.Question) == "" {
		fields["question"] = append(fields["question"], MsgQuestionRequired)
	}
	if len(fields) > 0 {
		return nil, FieldErrors(fields)
	}

	slug, ok := vehicle.Normalize(req.Model)
	if !ok {
		return nil, ClientInputError(MsgUnknownModel)
	}

	question := strings.TrimSpace(req.Question)

	passages, err := p.searcher.Search(ctx, question, slug)
	if err != nil {
		p.logger.Error().Err(err).Str("model", slug.String()).Msg("Failed to retrieve passages from search backend")
		return nil, UpstreamError(MsgSearchUnavailable, err)
	}
	if len(passages) == 0 {
		return nil, NoContextError(MsgNoPassages)
	}

	relevant := retrieval.FilterRelevant(question, passages)
	if len(relevant) == 0 {
		return nil, NoContextError(MsgNoRelevantPassages)
	}

	payload := prompt.Build(question, relevant)

	answer, err := p.generator.Generate(ctx, payload.Prompt)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to generate completion")
		return nil, UpstreamError(MsgCompletionUnavailable, err)
	}

	contextEcho := make([]ContextPassage, len(relevant))
	for i, passage := range relevant {
		contextEcho[i] = ContextPassage{
			Label:    payload.References[i].Label,
			Text:     passage.Text,
			Metadata: passage.Meta,
			Score:    passage.Score,
		}
	}

	p.logger.Info().
		Str("model", slug.String()).
		Int("passages", len(passages)).
		Int("relevant", len(relevant)).
		Msg("Answered manual question")

	return &Response{
		Answer:     answer,
		References: payload.References,
		Context:    contextEcho,
	}, nil
}
