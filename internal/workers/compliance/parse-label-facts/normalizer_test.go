package parselabelfacts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-compliance/internal/models"
)

func TestDefaultTable_Shape(t *testing.T) {
	table := DefaultTable()

	assert.Len(t, table.Countries, 21)
	assert.Len(t, table.States, 20)
	assert.Len(t, table.Ingredients, 12)
	assert.Len(t, table.Products, 10)
}

func TestExtractFacts(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	tests := []struct {
		name        string
		text        string
		countries   []string
		states      []string
		ingredients []string
		products    []string
	}{
		{
			name:        "label with destination and ingredients",
			text:        "Product Name: Beef Jerky\nDestination Country: Canada\nIngredients: Beef, Salt",
			countries:   []string{"Canada"},
			states:      []string{},
			ingredients: []string{"beef", "salt"},
			products:    []string{},
		},
		{
			name:        "no keywords",
			text:        "Lorem ipsum dolor sit amet",
			countries:   []string{},
			states:      []string{},
			ingredients: []string{},
			products:    []string{},
		},
		{
			name:        "aliases of one group are both kept in text order",
			text:        "Made in USA for the United States market",
			countries:   []string{"USA", "United States"},
			states:      []string{"IN"},
			ingredients: []string{},
			products:    []string{},
		},
		{
			name:        "case folds to the table spelling",
			text:        "EXPORT TO CANADA. contains MILK and Honey",
			countries:   []string{"Canada"},
			states:      []string{},
			ingredients: []string{"milk", "honey"},
			products:    []string{},
		},
		{
			name:        "group order wins over text order",
			text:        "salt, sugar, beef",
			countries:   []string{},
			states:      []string{},
			ingredients: []string{"beef", "sugar", "salt"},
			products:    []string{},
		},
		{
			name:        "same span can land in two categories",
			text:        "Dietary supplements from Texas",
			countries:   []string{},
			states:      []string{"Texas"},
			ingredients: []string{"supplements"},
			products:    []string{"dietary supplements"},
		},
		{
			name:        "multi word alias wins over its prefix",
			text:        "Cooked in olive oil",
			countries:   []string{},
			states:      []string{"IN"},
			ingredients: []string{"olive oil"},
			products:    []string{},
		},
		{
			name:        "no partial word matches",
			text:        "Canadian bacon, Indianapolis",
			countries:   []string{"Canadian"},
			states:      []string{},
			ingredients: []string{},
			products:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := normalizer.ExtractFacts(tt.text)

			assert.Equal(t, tt.countries, facts.Countries)
			assert.Equal(t, tt.states, facts.States)
			assert.Equal(t, tt.ingredients, facts.Ingredients)
			assert.Equal(t, tt.products, facts.Products)
			assert.Equal(t, tt.text, facts.OriginalText)
		})
	}
}

func TestExtractFacts_EmptyText(t *testing.T) {
	facts := NewDefaultNormalizer().ExtractFacts("")

	assert.Equal(t, models.NewRegulationFacts(""), facts)
}

func TestNormalizer_CustomTable(t *testing.T) {
	table, err := ParseTable([]byte(`
countries:
  - [Dubai, UAE]
ingredients:
  - [camel milk]
`))
	require.NoError(t, err)

	normalizer, err := NewNormalizer(table)
	require.NoError(t, err)

	facts := normalizer.ExtractFacts("Camel Milk chocolate bound for the uae")
	assert.Equal(t, []string{"UAE"}, facts.Countries)
	assert.Equal(t, []string{"camel milk"}, facts.Ingredients)
	assert.Empty(t, facts.States)
}

func TestNormalizer_SwapRejectsBrokenTable(t *testing.T) {
	normalizer := NewDefaultNormalizer()

	err := normalizer.Swap(MatchTable{Countries: [][]string{{"  "}}})
	require.Error(t, err)

	assert.Equal(t, []string{"Canada"}, normalizer.ExtractFacts("Canada").Countries)
}

func TestNormalizer_ConcurrentSwap(t *testing.T) {
	normalizer := NewDefaultNormalizer()
	alt := MatchTable{Countries: [][]string{{"Canada"}}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i == 0 {
					_ = normalizer.Swap(alt)
					_ = normalizer.Swap(DefaultTable())
					continue
				}
				assert.Equal(t, []string{"Canada"}, normalizer.ExtractFacts("to Canada").Countries)
			}
		}(i)
	}
	wg.Wait()
}
