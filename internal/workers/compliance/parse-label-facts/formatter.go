package parselabelfacts

import (
	"fmt"

	"label-compliance/internal/models"
)

const fallbackQuestion = "What are the general food import/export rules and regulations?"

// QueryFormatter turns facts into the regulations question. It is stateless.
type QueryFormatter struct{}

func NewQueryFormatter() *QueryFormatter { return &QueryFormatter{} }

func (QueryFormatter) FormatQuestion(facts models.RegulationFacts) string {
	location := facts.Location()
	item := facts.Item()

	switch {
	case location != "" && item != "":
		return fmt.Sprintf("What are the rules and regulations for exporting %s to %s?", item, location)
	case location != "":
		return fmt.Sprintf("What are the import/export rules and regulations for %s?", location)
	case item != "":
		return fmt.Sprintf("What are the rules and regulations for exporting %s?", item)
	default:
		return fallbackQuestion
	}
}
