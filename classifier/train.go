package classifier

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Example is one labelled training text.
type Example struct {
	Text  string `yaml:"text" json:"text"`
	Label string `yaml:"label" json:"label"`
}

// TrainOptions controls vocabulary building and the optimizer.
type TrainOptions struct {
	NgramMin     int
	NgramMax     int
	MinDF        int     // minimum document count
	MaxDF        float64 // maximum document fraction
	C            float64 // inverse regularization strength
	Iterations   int
	LearningRate float64
	Now          func() time.Time
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		NgramMin:     1,
		NgramMax:     3,
		MinDF:        1,
		MaxDF:        0.95,
		C:            1,
		Iterations:   2000,
		LearningRate: 0.5,
		Now:          time.Now,
	}
}

var ErrEmptyCorpus = errors.New("classifier: empty corpus")

// Train fits a vectorizer and a class-balanced, L2-regularized softmax
// regression on corpus with full-batch gradient descent. The result is a
// deterministic function of corpus and opts, apart from TrainedAt.
func Train(corpus []Example, opts TrainOptions) (*Artifact, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}
	if opts.NgramMin < 1 || opts.NgramMax < opts.NgramMin {
		return nil, fmt.Errorf("classifier: bad n-gram range [%d, %d]", opts.NgramMin, opts.NgramMax)
	}
	if opts.C <= 0 || opts.Iterations <= 0 || opts.LearningRate <= 0 {
		return nil, errors.New("classifier: C, iterations and learning rate must be positive")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	docs := make([]string, len(corpus))
	counts := map[string]int{}
	for i, ex := range corpus {
		if ex.Text == "" || ex.Label == "" {
			return nil, fmt.Errorf("classifier: example %d: text and label are required", i)
		}
		docs[i] = prepare(ex.Text)
		counts[ex.Label]++
	}
	classes := make([]string, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	if len(classes) < 2 {
		return nil, fmt.Errorf("classifier: need at least 2 labels, got %d", len(classes))
	}
	index := make(map[string]int, len(classes))
	for k, c := range classes {
		index[c] = k
	}

	vz := fitVectorizer(docs, opts.NgramMin, opts.NgramMax, opts.MinDF, opts.MaxDF)
	if vz.Dim() == 0 {
		return nil, errors.New("classifier: vocabulary is empty")
	}

	n, k := len(corpus), len(classes)
	xs := make([][]float64, n)
	ys := make([]int, n)
	sw := make([]float64, n)
	for i, ex := range corpus {
		xs[i] = vz.Transform(docs[i])
		ys[i] = index[ex.Label]
		sw[i] = float64(n) / (float64(k) * float64(counts[ex.Label]))
	}

	m := &Model{
		Classes: classes,
		Weights: make([][]float64, k),
		Bias:    make([]float64, k),
	}
	for c := range m.Weights {
		m.Weights[c] = make([]float64, vz.Dim())
	}
	descend(m, xs, ys, sw, opts)

	return &Artifact{
		Version:    Version,
		TrainedAt:  opts.Now().UTC(),
		Vectorizer: vz,
		Model:      m,
	}, nil
}

// descend minimizes mean weighted cross-entropy plus ||W||²/(2Cn). The
// bias is not regularized.
func descend(m *Model, xs [][]float64, ys []int, sw []float64, opts TrainOptions) {
	n := float64(len(xs))
	dim := len(m.Weights[0])
	gw := make([][]float64, len(m.Classes))
	for c := range gw {
		gw[c] = make([]float64, dim)
	}
	gb := make([]float64, len(m.Classes))
	reg := 1 / (opts.C * n)

	for it := 0; it < opts.Iterations; it++ {
		for c := range gw {
			for j := range gw[c] {
				gw[c][j] = reg * m.Weights[c][j]
			}
			gb[c] = 0
		}
		for i, x := range xs {
			p := m.Probabilities(x)
			for c := range p {
				d := p[c]
				if c == ys[i] {
					d--
				}
				d *= sw[i] / n
				gb[c] += d
				for j, v := range x {
					if v != 0 {
						gw[c][j] += d * v
					}
				}
			}
		}
		for c := range gw {
			for j := range gw[c] {
				m.Weights[c][j] -= opts.LearningRate * gw[c][j]
			}
			m.Bias[c] -= opts.LearningRate * gb[c]
		}
	}
}

// Accuracy is the fraction of corpus the artifact labels correctly.
func Accuracy(a *Artifact, corpus []Example) float64 {
	if len(corpus) == 0 {
		return 0
	}
	hit := 0
	for _, ex := range corpus {
		if a.Model.Predict(a.Vectorizer.Transform(prepare(ex.Text))) == ex.Label {
			hit++
		}
	}
	return float64(hit) / float64(len(corpus))
}
