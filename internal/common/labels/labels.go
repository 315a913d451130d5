// Package labels pulls labelled fields out of free-form label text.
package labels

import (
	"regexp"
	"strings"
)

type pattern struct {
	re    *regexp.Regexp
	group int
}

func p(expr string, group int) pattern {
	return pattern{re: regexp.MustCompile(`(?i)` + expr), group: group}
}

var (
	productPatterns = []pattern{
		p(`Product\s*(?:Name)?:\s*([^\n\r]+)`, 1),
		p(`Product:\s*([^\n\r]+)`, 1),
		p(`Name:\s*([^\n\r]+)`, 1),
	}

	destinationPatterns = []pattern{
		p(`Destination\s*(?:Country)?:\s*([^\n\r]+)`, 1),
		p(`Export\s*(?:to|Country):\s*([^\n\r]+)`, 1),
		p(`Country:\s*([^\n\r]+)`, 1),
	}

	knownDestination = p(`(?:Dubai|UAE|United Arab Emirates|Canada|USA|United States)`, 0)

	ingredientsPattern = p(`Ingredients?:\s*([^\n\r]+(?:\n\s*[-•]\s*[^\n\r]+)*)`, 1)

	detailPatterns = []pattern{
		ingredientsPattern,
		p(`Claims?:\s*([^\n\r]+)`, 1),
		p(`Net\s*(?:Weight|Quantity)?:\s*([^\n\r]+)`, 1),
		p(`Manufacturer:\s*([^\n\r]+)`, 1),
		p(`Certification:\s*([^\n\r]+)`, 1),
	}

	weightPatterns = []pattern{
		p(`Net\s*(?:Weight|Quantity)?:\s*([^\n\r]+)`, 1),
		p(`Weight:\s*([^\n\r]+)`, 1),
		p(`(\d+\s*(?:oz|g|kg|lb|lbs))`, 1),
	}

	manufacturerPatterns = []pattern{
		p(`Manufacturer:\s*([^\n\r]+)`, 1),
		p(`Manufactured\s*by:\s*([^\n\r]+)`, 1),
		p(`Made\s*by:\s*([^\n\r]+)`, 1),
	}
)

// firstMatch returns the trimmed capture of the first pattern that matches.
func firstMatch(text string, patterns ...pattern) string {
	for _, pt := range patterns {
		if m := pt.re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[pt.group])
		}
	}
	return ""
}

func ProductName(text string) string {
	return firstMatch(text, productPatterns...)
}

// Destination reads a labelled destination, then falls back to a known
// destination named anywhere in the text.
func Destination(text string) string {
	return firstMatch(text, append(destinationPatterns, knownDestination)...)
}

// LabelledDestination is Destination without the bare-name fallback.
func LabelledDestination(text string) string {
	return firstMatch(text, destinationPatterns...)
}

func Ingredients(text string) string {
	return firstMatch(text, ingredientsPattern)
}

func Weight(text string) string {
	return firstMatch(text, weightPatterns...)
}

func Manufacturer(text string) string {
	return firstMatch(text, manufacturerPatterns...)
}

// Details returns every ingredients, claims, net weight, manufacturer and
// certification line as written, deduplicated, in pattern order.
func Details(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, pt := range detailPatterns {
		for _, m := range pt.re.FindAllString(text, -1) {
			d := strings.TrimSpace(m)
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
