package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const beefLabel = `Product Name: Beef Jerky
Destination Country: Canada
Ingredients: Beef, Salt, Sugar
Net Weight: 50g
Manufacturer: Prairie Meats Ltd.
Certification: USDA Organic`

func TestFields(t *testing.T) {
	assert.Equal(t, "Beef Jerky", ProductName(beefLabel))
	assert.Equal(t, "Canada", Destination(beefLabel))
	assert.Equal(t, "Beef, Salt, Sugar", Ingredients(beefLabel))
	assert.Equal(t, "50g", Weight(beefLabel))
	assert.Equal(t, "Prairie Meats Ltd.", Manufacturer(beefLabel))
}

func TestDestination(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"Export to: Japan", "Japan"},
		{"country: Mexico\nDestination: Peru", "Peru"},
		{"Sold in Dubai malls", "Dubai"},
		{"made for the united states market", "united states"},
		{"no destination here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, Destination(tt.text))
		})
	}
	assert.Empty(t, LabelledDestination("Sold in Dubai malls"))
}

func TestWeightAndManufacturerFallbacks(t *testing.T) {
	assert.Equal(t, "12 oz", Weight("Jar of honey, 12 oz"))
	assert.Equal(t, "1 kg", Weight("Weight: 1 kg"))
	assert.Equal(t, "Acme Foods", Manufacturer("Manufactured by: Acme Foods"))
	assert.Equal(t, "Grandma", Manufacturer("made by: Grandma"))
	assert.Empty(t, Manufacturer("nothing"))
}

func TestDetails(t *testing.T) {
	text := "Ingredients: Honey\n - Pollen\nClaims: Raw\nClaims: Raw\nNet Quantity: 250 g"
	assert.Equal(t, []string{
		"Ingredients: Honey\n - Pollen",
		"Claims: Raw",
		"Net Quantity: 250 g",
	}, Details(text))

	assert.Empty(t, Details("just words"))
}
