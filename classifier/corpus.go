package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

var parsedCorpus = sync.OnceValue(func() []Example {
	var out []Example
	if err := yaml.Unmarshal(defaultCorpus, &out); err != nil {
		panic(fmt.Sprintf("classifier: embedded corpus: %v", err))
	}
	return out
})

// DefaultCorpus returns a copy of the built-in training corpus.
func DefaultCorpus() []Example {
	return append([]Example(nil), parsedCorpus()...)
}

// LoadCorpus reads a YAML list of {text, label} examples.
func LoadCorpus(path string) ([]Example, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: read corpus: %w", err)
	}
	var out []Example
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("classifier: decode corpus %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyCorpus
	}
	for i, ex := range out {
		if ex.Text == "" || ex.Label == "" {
			return nil, fmt.Errorf("classifier: corpus %s: example %d: text and label are required", path, i)
		}
	}
	return out, nil
}
