package parselabelfacts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"label-compliance/internal/models"
)

func facts(countries, states, ingredients, products []string) models.RegulationFacts {
	f := models.NewRegulationFacts("")
	if countries != nil {
		f.Countries = countries
	}
	if states != nil {
		f.States = states
	}
	if ingredients != nil {
		f.Ingredients = ingredients
	}
	if products != nil {
		f.Products = products
	}
	return f
}

func TestFormatQuestion(t *testing.T) {
	tests := []struct {
		name     string
		facts    models.RegulationFacts
		expected string
	}{
		{
			name:     "location and item",
			facts:    facts([]string{"Canada"}, nil, []string{"beef", "salt"}, nil),
			expected: "What are the rules and regulations for exporting beef to Canada?",
		},
		{
			name:     "country beats state",
			facts:    facts([]string{"UAE"}, []string{"Texas"}, nil, nil),
			expected: "What are the import/export rules and regulations for UAE?",
		},
		{
			name:     "state when no country",
			facts:    facts(nil, []string{"Texas"}, nil, []string{"snacks"}),
			expected: "What are the rules and regulations for exporting snacks to Texas?",
		},
		{
			name:     "ingredient beats product",
			facts:    facts(nil, nil, []string{"honey"}, []string{"juice"}),
			expected: "What are the rules and regulations for exporting honey?",
		},
		{
			name:     "neither",
			facts:    models.NewRegulationFacts("nothing useful"),
			expected: "What are the general food import/export rules and regulations?",
		},
	}

	formatter := NewQueryFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatter.FormatQuestion(tt.facts))
			// pure: repeated calls give the same string
			assert.Equal(t, formatter.FormatQuestion(tt.facts), formatter.FormatQuestion(tt.facts))
		})
	}
}
