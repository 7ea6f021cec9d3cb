package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestNormalizeScore_Ranges(t *testing.T) {
	tests := []struct {
		name     string
		score    *float64
		expected float64
	}{
		{"nil score", nil, 0},
		{"zero", floatPtr(0), 0},
		{"in range", floatPtr(0.2), 0.2},
		{"upper bound", floatPtr(1), 1},
		{"negative clamps to zero", floatPtr(-5), 0},
		{"distance above one", floatPtr(3), 0.25},
		{"nan", floatPtr(math.NaN()), 0},
		{"positive infinity", floatPtr(math.Inf(1)), 0},
		{"negative infinity", floatPtr(math.Inf(-1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NormalizeScore(tt.score), 1e-9)
		})
	}
}

func TestExtractTerms_StopwordsAndDiacritics(t *testing.T) {
	terms := ExtractTerms("¿Cuál es la presión de los neumáticos?")

	// Stop-words and short tokens are dropped, diacritics stripped.
	assert.Equal(t, []string{"presion", "neumaticos"}, terms)
}

func TestExtractTerms_Deduplicates(t *testing.T) {
	terms := ExtractTerms("frenos frenos FRENOS del freno")

	assert.Equal(t, []string{"frenos", "freno"}, terms)
}

func TestExtractTerms_AllStopwords(t *testing.T) {
	terms := ExtractTerms("¿Es el de la?")

	assert.Empty(t, terms)
}

func TestFilterRelevant_ScoreAndOverlap(t *testing.T) {
	question := "¿Cómo cambio la presión de los neumáticos?"

	passages := []Passage{
		{Text: "La presión recomendada de los neumáticos es 42 psi.", Score: floatPtr(0.8)},
		{Text: "Ajuste de los asientos delanteros del vehículo.", Score: floatPtr(0.9)},
		{Text: "Revise la presión de los neumáticos cada mes.", Score: floatPtr(0.1)},
		{Text: "Los neumáticos de invierno requieren otra presión.", Score: nil},
	}

	kept := FilterRelevant(question, passages)

	// Only the first passage clears both the score threshold and term overlap.
	assert.Len(t, kept, 1)
	assert.Equal(t, passages[0].Text, kept[0].Text)
}

func TestFilterRelevant_PreservesOrder(t *testing.T) {
	question := "frenos de emergencia"

	passages := []Passage{
		{Text: "Los frenos regenerativos recuperan energía.", Score: floatPtr(0.5)},
		{Text: "Nada relacionado en este fragmento.", Score: floatPtr(0.99)},
		{Text: "El freno de emergencia se activa automáticamente, los frenos responden.", Score: floatPtr(0.4)},
	}

	kept := FilterRelevant(question, passages)

	assert.Len(t, kept, 2)
	assert.Equal(t, passages[0].Text, kept[0].Text)
	assert.Equal(t, passages[2].Text, kept[1].Text)
}

func TestFilterRelevant_EmptyTermsMatchesEverything(t *testing.T) {
	// A question made only of stop-words and short tokens yields no terms, so
	// overlap is vacuously satisfied and only the score gate applies.
	passages := []Passage{
		{Text: "Contenido arbitrario del manual.", Score: floatPtr(0.5)},
		{Text: "Otro fragmento cualquiera.", Score: floatPtr(0.1)},
	}

	kept := FilterRelevant("¿Es el de la?", passages)

	assert.Len(t, kept, 1)
	assert.Equal(t, passages[0].Text, kept[0].Text)
}

func TestFilterRelevant_DistanceScores(t *testing.T) {
	// A distance of 3 normalizes to 0.25, below the threshold. A distance
	// slightly above 1 normalizes close to 0.5 and survives.
	passages := []Passage{
		{Text: "presion de neumaticos", Score: floatPtr(3)},
		{Text: "presion de neumaticos", Score: floatPtr(1.2)},
	}

	kept := FilterRelevant("presión de neumáticos", passages)

	assert.Len(t, kept, 1)
	assert.Equal(t, floatPtr(1.2), kept[0].Score)
}
