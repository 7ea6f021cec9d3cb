package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wladywlady/t3-render/internal/retrieval"
)

func intPtr(v int) *int {
	return &v
}

func TestBuild_LabelsAndReferences(t *testing.T) {
	passages := []retrieval.Passage{
		{
			Text: "La presión recomendada es 42 psi.",
			Meta: retrieval.Meta{
				ModelName:     "Model 3",
				DocumentTitle: "Manual del propietario Model 3",
				PageStart:     intPtr(10),
				PageEnd:       intPtr(12),
			},
		},
		{
			Text: "Revise los neumáticos mensualmente.",
			Meta: retrieval.Meta{
				ModelSlug: "model_3",
				PageStart: intPtr(4),
				PageEnd:   intPtr(4),
			},
		},
	}

	payload := Build("¿Cuál es la presión de los neumáticos?", passages)

	require.Len(t, payload.References, 2)

	assert.Equal(t, Reference{
		Label:    "R1",
		Model:    "Model 3",
		Document: "Manual del propietario Model 3",
		Pages:    "págs. 10-12",
	}, payload.References[0])

	// Without a model name the slug stands in, and without a title the model
	// label does.
	assert.Equal(t, Reference{
		Label:    "R2",
		Model:    "model_3",
		Document: "model_3",
		Pages:    "pág. 4",
	}, payload.References[1])

	assert.Contains(t, payload.Prompt, "(R1) Manual del propietario Model 3 (págs. 10-12)\nLa presión recomendada es 42 psi.")
	assert.Contains(t, payload.Prompt, "(R2) model_3 (pág. 4)\nRevise los neumáticos mensualmente.")
	assert.Contains(t, payload.Prompt, "Pregunta: ¿Cuál es la presión de los neumáticos?")
	assert.True(t, strings.HasPrefix(payload.Prompt, "Eres un asistente de soporte de Tesla."))
}

func TestBuild_DefaultModelLabel(t *testing.T) {
	passages := []retrieval.Passage{
		{Text: "Fragmento sin metadatos."},
	}

	payload := Build("pregunta", passages)

	require.Len(t, payload.References, 1)
	assert.Equal(t, "Manual Tesla", payload.References[0].Model)
	assert.Equal(t, "Manual Tesla", payload.References[0].Document)
	assert.Empty(t, payload.References[0].Pages)
	assert.Contains(t, payload.Prompt, "(R1) Manual Tesla\nFragmento sin metadatos.")
}

func TestBuild_EmptyContextPlaceholder(t *testing.T) {
	payload := Build("pregunta", nil)

	assert.Empty(t, payload.References)
	assert.Contains(t, payload.Prompt, "Contexto:\nNo se entregó contexto relevante.")
}

func TestBuild_TrimsPassageText(t *testing.T) {
	passages := []retrieval.Passage{
		{Text: "  con espacios  \n"},
	}

	payload := Build("pregunta", passages)

	assert.Contains(t, payload.Prompt, "(R1) Manual Tesla\ncon espacios")
	assert.NotContains(t, payload.Prompt, "con espacios  ")
}

func TestPageRange_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		start    *int
		end      *int
		expected string
	}{
		{"both equal", intPtr(7), intPtr(7), "pág. 7"},
		{"range", intPtr(10), intPtr(12), "págs. 10-12"},
		{"start only", intPtr(3), nil, "pág. 3"},
		{"end only", nil, intPtr(9), "pág. 9"},
		{"neither", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pageRange(tt.start, tt.end))
		})
	}
}
