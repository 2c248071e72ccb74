// Package classifier is the statistical fallback used when no detection
// rule fires: a character n-gram TF-IDF vectorizer feeding a multinomial
// logistic regression.
//
// Training happens offline (Train, or the `mathsolver train` command) and
// produces an Artifact. The runtime loads the artifact once and classifies
// with it read-only.
package classifier

import (
	"github.com/njchilds90/mathsolver/normalize"
	"github.com/njchilds90/mathsolver/types"
)

// prepare puts text in the canonical form the detector sees. Training and
// prediction both go through it.
func prepare(text string) string { return normalize.Canonical(text) }

// Classifier predicts problem types from a loaded artifact.
type Classifier struct {
	a *Artifact
}

// New validates a and wraps it.
func New(a *Artifact) (*Classifier, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{a: a}, nil
}

// Classify returns the predicted problem type, or types.Unknown when the
// model's label is not a known type.
func (c *Classifier) Classify(expression string) types.ProblemType {
	label, _ := c.Predict(expression)
	return types.ParseProblemType(label)
}

// Predict returns the raw label and its probability.
func (c *Classifier) Predict(expression string) (string, float64) {
	vec := c.a.Vectorizer.Transform(prepare(expression))
	probs := c.a.Model.Probabilities(vec)
	best := 0
	for k := range probs {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return c.a.Model.Classes[best], probs[best]
}

// Artifact returns the wrapped artifact. Callers must not modify it.
func (c *Classifier) Artifact() *Artifact { return c.a }
