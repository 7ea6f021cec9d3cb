// Package prompt assembles the completion prompt and citation references from
// filtered passages.
package prompt

import (
	"fmt"
	"strings"

	"github.com/wladywlady/t3-render/internal/retrieval"
)

// defaultModelLabel is used when a passage carries no model metadata at all.
const defaultModelLabel = "Manual Tesla"

// emptyContextPlaceholder replaces the context block when no passages survive
// filtering.
const emptyContextPlaceholder = "No se entregó contexto relevante."

// Reference is a citation surfaced to the caller identifying which passage
// backed the answer.
type Reference struct {
	Label    string `json:"label"`
	Model    string `json:"model"`
	Document string `json:"document"`
	Pages    string `json:"pages,omitempty"`
}

// Payload couples the rendered prompt with the references it cites.
type Payload struct {
	Prompt     string
	References []Reference
}

// Build renders the completion prompt for the question over the given
// passages, labeling each passage R1..Rn in order. The returned references are
// exactly the ones shown to the model, independent of which ones it ends up
// citing.
func Build(question string, passages []retrieval.Passage) Payload {
	references := make([]Reference, 0, len(passages))
	blocks := make([]string, 0, len(passages))

	for i, passage := range passages {
		modelName := passage.Meta.ModelName
		if modelName == "" {
			modelName = passage.Meta.ModelSlug
		}
		if modelName == "" {
			modelName = defaultModelLabel
		}

		documentTitle := passage.Meta.DocumentTitle
		if documentTitle == "" {
			documentTitle = modelName
		}

		pages := pageRange(passage.Meta.PageStart, passage.Meta.PageEnd)

		ref := Reference{
			Label:    fmt.Sprintf("R%d", i+1),
			Model:    modelName,
			Document: documentTitle,
			Pages:    pages,
		}
		references = append(references, ref)

		heading := documentTitle
		if pages != "" {
			heading += " (" + pages + ")"
		}
		blocks = append(blocks, fmt.Sprintf("(%s) %s\n%s", ref.Label, heading, strings.TrimSpace(passage.Text)))
	}

	contextBlock := strings.Join(blocks, "\n\n")
	if contextBlock == "" {
		contextBlock = emptyContextPlaceholder
	}

	lines := []string{
		"Eres un asistente de soporte de Tesla.",
		"Responde de forma clara, amable y precisa usando únicamente la información de los fragmentos proporcionados.",
		"Incluye al final una sección de 'Referencias' listando las etiquetas de los fragmentos utilizados.",
		"Si la información es insuficiente, indica claramente que no puedes responder con los datos disponibles.",
		"",
		"Contexto:",
		contextBlock,
		"",
		"Pregunta: " + question,
	}

	return Payload{
		Prompt:     strings.Join(lines, "\n"),
		References: references,
	}
}

// pageRange renders the page bounds of a passage, e.g. "pág. 4" or
// "págs. 10-12". Empty when neither bound is present.
func pageRange(start, end *int) string {
	switch {
	case start != nil && end != nil:
		if *start == *end {
			return fmt.Sprintf("pág. %d", *start)
		}
		return fmt.Sprintf("págs. %d-%d", *start, *end)
	case start != nil:
		return fmt.Sprintf("pág. %d", *start)
	case end != nil:
		return fmt.Sprintf("pág. %d", *end)
	default:
		return ""
	}
}
