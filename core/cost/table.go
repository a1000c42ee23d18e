package cost

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/withceleste/celeste/core"
)

// Table maps provider/model pairs to their rate cards. A Table starts
// empty; rates are registered programmatically or loaded from a YAML
// document. Lookups against an unknown model return ok=false, which
// callers treat as "pricing unavailable" rather than an error.
type Table struct {
	mu    sync.RWMutex
	rates map[string]ModelCost
}

// NewTable returns an empty rate table.
func NewTable() *Table {
	return &Table{rates: make(map[string]ModelCost)}
}

// Register adds or replaces the rate card for a model.
func (t *Table) Register(provider core.Provider, modelID string, mc ModelCost) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[rateKey(provider, modelID)] = mc
}

// Lookup returns the rate card for a model, if one is registered.
func (t *Table) Lookup(provider core.Provider, modelID string) (ModelCost, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	mc, ok := t.rates[rateKey(provider, modelID)]
	return mc, ok
}

// Len returns the number of registered rate cards.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rates)
}

// rateDocument is the YAML shape of a pricing table:
//
//	rates:
//	  openai/gpt-4o:
//	    input_per_million: 2.5
//	    output_per_million: 10.0
//	  elevenlabs/eleven_multilingual_v2:
//	    per_character: 0.00003
type rateDocument struct {
	Rates map[string]ModelCost `yaml:"rates"`
}

// Load merges rate cards from a YAML document into the table. Keys are
// "provider/model-id"; later loads replace earlier entries for the same
// key.
func (t *Table) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading pricing table: %w", err)
	}

	var doc rateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing pricing table: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for key, mc := range doc.Rates {
		t.rates[key] = mc
	}
	return nil
}

// LoadFile merges rate cards from a YAML file into the table.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening pricing table %s: %w", path, err)
	}
	defer f.Close()
	return t.Load(f)
}

func rateKey(provider core.Provider, modelID string) string {
	return string(provider) + "/" + modelID
}
