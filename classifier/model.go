package classifier

import "math"

// Model is a multinomial logistic regression: one weight row and one bias
// per class.
type Model struct {
	Classes []string    `json:"classes" validate:"required,min=2,dive,required"`
	Weights [][]float64 `json:"weights" validate:"required"`
	Bias    []float64   `json:"bias" validate:"required"`
}

func (m *Model) scores(vec []float64) []float64 {
	out := make([]float64, len(m.Classes))
	for k, row := range m.Weights {
		s := m.Bias[k]
		for i, x := range vec {
			if x != 0 {
				s += row[i] * x
			}
		}
		out[k] = s
	}
	return out
}

// Predict returns the class with the highest score. Ties go to the class
// listed first.
func (m *Model) Predict(vec []float64) string {
	s := m.scores(vec)
	best := 0
	for k := 1; k < len(s); k++ {
		if s[k] > s[best] {
			best = k
		}
	}
	return m.Classes[best]
}

// Probabilities returns the softmax of the class scores, in Classes order.
func (m *Model) Probabilities(vec []float64) []float64 {
	return softmax(m.scores(vec))
}

func softmax(s []float64) []float64 {
	peak := math.Inf(-1)
	for _, x := range s {
		peak = math.Max(peak, x)
	}
	var sum float64
	out := make([]float64, len(s))
	for i, x := range s {
		out[i] = math.Exp(x - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
