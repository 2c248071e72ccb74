package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Version is the only artifact format Load accepts.
const Version = 1

// Artifact is a trained vectorizer and model. It is immutable once loaded
// and safe to share between goroutines.
type Artifact struct {
	Version    int         `json:"version" validate:"eq=1"`
	TrainedAt  time.Time   `json:"trained_at"`
	Vectorizer *Vectorizer `json:"vectorizer" validate:"required"`
	Model      *Model      `json:"model" validate:"required"`
}

var ErrInvalidArtifact = errors.New("classifier: invalid artifact")

var validate = validator.New()

// Validate checks the version, the struct constraints and that the
// vocabulary, idf, weights and bias dimensions agree.
func (a *Artifact) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil", ErrInvalidArtifact)
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	dim := a.Vectorizer.Dim()
	for g, i := range a.Vectorizer.Vocabulary {
		if i < 0 || i >= dim {
			return fmt.Errorf("%w: n-gram %q has index %d outside [0, %d)", ErrInvalidArtifact, g, i, dim)
		}
	}
	m := a.Model
	if len(m.Weights) != len(m.Classes) || len(m.Bias) != len(m.Classes) {
		return fmt.Errorf("%w: %d classes, %d weight rows, %d biases",
			ErrInvalidArtifact, len(m.Classes), len(m.Weights), len(m.Bias))
	}
	for k, row := range m.Weights {
		if len(row) != dim {
			return fmt.Errorf("%w: weight row %d has %d columns, want %d", ErrInvalidArtifact, k, len(row), dim)
		}
	}
	return nil
}

// Load reads and validates an artifact written by Save.
func Load(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("classifier: decode %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Save writes a as indented JSON, creating parent directories.
func (a *Artifact) Save(path string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("classifier: encode artifact: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("classifier: %w", err)
		}
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("classifier: write artifact: %w", err)
	}
	return nil
}
