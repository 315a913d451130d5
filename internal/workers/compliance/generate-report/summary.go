package generatereport

import "label-compliance/internal/common/labels"

const notSpecified = "Not specified"

func SummarizeProduct(text string) ProductSummary {
	return ProductSummary{
		ProductName:  orNotSpecified(labels.ProductName(text)),
		Destination:  orNotSpecified(labels.LabelledDestination(text)),
		Ingredients:  orNotSpecified(labels.Ingredients(text)),
		Weight:       orNotSpecified(labels.Weight(text)),
		Manufacturer: orNotSpecified(labels.Manufacturer(text)),
	}
}

func orNotSpecified(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}
