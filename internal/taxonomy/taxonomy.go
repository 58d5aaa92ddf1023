package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed default_taxonomy.toml
var defaultTaxonomy []byte

// Table is the immutable set of canonical fault/component phrases. It is
// loaded once at startup and passed by reference into the analyzer; request
// handling never mutates it.
type Table struct {
	phrases   []string
	index     map[string]int
	scanOrder []string
}

type taxonomyFile struct {
	Keywords []string `toml:"keywords"`
}

// New builds a table from canonical phrases in declaration order. Phrases are
// lower-cased and whitespace-collapsed; duplicates and empties are rejected.
func New(phrases []string) (*Table, error) {
	if len(phrases) == 0 {
		return nil, errors.New("taxonomy: at least one keyword required")
	}
	table := &Table{
		phrases: make([]string, 0, len(phrases)),
		index:   make(map[string]int, len(phrases)),
	}
	for _, phrase := range phrases {
		canonical := Normalize(phrase)
		if canonical == "" {
			return nil, errors.New("taxonomy: empty keyword")
		}
		if _, dup := table.index[canonical]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate keyword %q", canonical)
		}
		table.index[canonical] = len(table.phrases)
		table.phrases = append(table.phrases, canonical)
	}

	// Longest phrases scan first so a mention of "timing chain tensioner"
	// is attributed to the tensioner, not the chain. Equal lengths keep
	// declaration order, which is the documented tie-break.
	table.scanOrder = append([]string(nil), table.phrases...)
	sort.SliceStable(table.scanOrder, func(i, j int) bool {
		return len(table.scanOrder[i]) > len(table.scanOrder[j])
	})
	return table, nil
}

// Default returns the built-in taxonomy.
func Default() *Table {
	table, err := parse(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded default invalid: %v", err))
	}
	return table
}

// Load reads a taxonomy from a TOML file with a top-level keywords array.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Table, error) {
	var file taxonomyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("taxonomy: parse: %w", err)
	}
	return New(file.Keywords)
}

// Phrases returns the canonical phrases in declaration order.
func (t *Table) Phrases() []string {
	return append([]string(nil), t.phrases...)
}

// ScanOrder returns phrases longest-first for subsumption-aware scanning.
func (t *Table) ScanOrder() []string {
	return append([]string(nil), t.scanOrder...)
}

// DeclarationIndex returns the declaration position of a canonical phrase,
// or -1 when the phrase is not part of the taxonomy.
func (t *Table) DeclarationIndex(phrase string) int {
	if idx, ok := t.index[Normalize(phrase)]; ok {
		return idx
	}
	return -1
}

// Len returns the number of canonical phrases.
func (t *Table) Len() int {
	return len(t.phrases)
}

// Normalize lower-cases and whitespace-collapses text the way the analyzer
// normalizes evidence before scanning.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
