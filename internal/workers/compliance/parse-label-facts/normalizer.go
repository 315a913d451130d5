package parselabelfacts

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"label-compliance/internal/models"
)

//go:embed default_tables.yaml
var defaultTablesYAML []byte

// MatchTable lists alias groups per fact category, in scan order.
type MatchTable struct {
	Countries   [][]string `yaml:"countries"`
	States      [][]string `yaml:"states"`
	Ingredients [][]string `yaml:"ingredients"`
	Products    [][]string `yaml:"products"`
}

// ParseTable decodes a YAML match table.
func ParseTable(data []byte) (MatchTable, error) {
	var table MatchTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return MatchTable{}, fmt.Errorf("decode match table: %w", err)
	}
	return table, nil
}

// LoadTableFile reads a YAML match table from disk.
func LoadTableFile(path string) (MatchTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MatchTable{}, fmt.Errorf("read match table: %w", err)
	}
	return ParseTable(data)
}

// DefaultTable returns the built-in keyword lists.
func DefaultTable() MatchTable {
	table, err := ParseTable(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded match table is invalid: %v", err))
	}
	return table
}

type aliasGroup struct {
	re      *regexp.Regexp
	aliases []string
}

// canonical returns the table spelling of a matched span.
func (g aliasGroup) canonical(span string) string {
	for _, alias := range g.aliases {
		if strings.EqualFold(alias, span) {
			return alias
		}
	}
	return span
}

type compiledTable struct {
	countries   []aliasGroup
	states      []aliasGroup
	ingredients []aliasGroup
	products    []aliasGroup
}

func compileTable(table MatchTable) (*compiledTable, error) {
	var (
		ct  compiledTable
		err error
	)
	if ct.countries, err = compileGroups("countries", table.Countries); err != nil {
		return nil, err
	}
	if ct.states, err = compileGroups("states", table.States); err != nil {
		return nil, err
	}
	if ct.ingredients, err = compileGroups("ingredients", table.Ingredients); err != nil {
		return nil, err
	}
	if ct.products, err = compileGroups("products", table.Products); err != nil {
		return nil, err
	}
	return &ct, nil
}

func compileGroups(category string, groups [][]string) ([]aliasGroup, error) {
	compiled := make([]aliasGroup, 0, len(groups))
	for i, group := range groups {
		aliases := make([]string, 0, len(group))
		quoted := make([]string, 0, len(group))
		for _, alias := range group {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			aliases = append(aliases, alias)
			quoted = append(quoted, regexp.QuoteMeta(alias))
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("%s group %d has no aliases", category, i)
		}

		re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("%s group %d: %w", category, i, err)
		}
		compiled = append(compiled, aliasGroup{re: re, aliases: aliases})
	}
	return compiled, nil
}

// Normalizer mines RegulationFacts from raw label text. The match table can be
// swapped at runtime; concurrent ExtractFacts calls see either the old or the new table.
type Normalizer struct {
	table atomic.Pointer[compiledTable]
}

func NewNormalizer(table MatchTable) (*Normalizer, error) {
	n := &Normalizer{}
	if err := n.Swap(table); err != nil {
		return nil, err
	}
	return n, nil
}

// NewDefaultNormalizer uses the embedded table.
func NewDefaultNormalizer() *Normalizer {
	n, err := NewNormalizer(DefaultTable())
	if err != nil {
		panic(err)
	}
	return n
}

// Swap compiles table and replaces the active one. On error the active table is kept.
func (n *Normalizer) Swap(table MatchTable) error {
	compiled, err := compileTable(table)
	if err != nil {
		return err
	}
	n.table.Store(compiled)
	return nil
}

// ExtractFacts never fails; categories with no match are empty lists.
func (n *Normalizer) ExtractFacts(rawText string) models.RegulationFacts {
	facts := models.NewRegulationFacts(rawText)
	table := n.table.Load()
	if table == nil || rawText == "" {
		return facts
	}

	facts.Countries = scan(rawText, table.countries)
	facts.States = scan(rawText, table.states)
	facts.Ingredients = scan(rawText, table.ingredients)
	facts.Products = scan(rawText, table.products)
	return facts
}

// scan walks groups in table order and matches in text order, keeping the first
// occurrence of each distinct value.
func scan(text string, groups []aliasGroup) []string {
	found := []string{}
	seen := make(map[string]struct{})
	for _, group := range groups {
		for _, span := range group.re.FindAllString(text, -1) {
			value := group.canonical(strings.TrimSpace(span))
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			found = append(found, value)
		}
	}
	return found
}
