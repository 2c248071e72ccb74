package classifier

import (
	"math"
	"sort"
	"strings"
)

// Vectorizer maps text to an L2-normalized TF-IDF vector over padded
// character n-grams taken inside word boundaries.
type Vectorizer struct {
	NgramMin   int            `json:"ngram_min" validate:"gte=1"`
	NgramMax   int            `json:"ngram_max" validate:"gtefield=NgramMin"`
	Vocabulary map[string]int `json:"vocabulary" validate:"required,min=1"`
	IDF        []float64      `json:"idf" validate:"required,min=1"`
}

// Dim is the length of every vector Transform returns.
func (v *Vectorizer) Dim() int { return len(v.IDF) }

// Transform returns the TF-IDF vector of text. N-grams outside the
// vocabulary are ignored; text with no known n-gram maps to the zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, g := range charNgrams(strings.ToLower(text), v.NgramMin, v.NgramMax) {
		if i, ok := v.Vocabulary[g]; ok {
			vec[i]++
		}
	}
	for i := range vec {
		vec[i] *= v.IDF[i]
	}
	l2Normalize(vec)
	return vec
}

// charNgrams pads every whitespace-separated word with one space on each
// side and emits its n-grams for n in [lo, hi]. A padded word shorter than
// n contributes itself once.
func charNgrams(text string, lo, hi int) []string {
	var grams []string
	for _, word := range strings.Fields(text) {
		w := []rune(" " + word + " ")
		for n := lo; n <= hi; n++ {
			if len(w) <= n {
				grams = append(grams, string(w))
				continue
			}
			for off := 0; off+n <= len(w); off++ {
				grams = append(grams, string(w[off:off+n]))
			}
		}
	}
	return grams
}

func l2Normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// fitVectorizer builds the vocabulary of docs in sorted order, keeping
// n-grams whose document frequency is at least minDF documents and at most
// maxDF as a fraction of the corpus, and computes smoothed idf weights.
func fitVectorizer(docs []string, lo, hi int, minDF int, maxDF float64) *Vectorizer {
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]bool{}
		for _, g := range charNgrams(strings.ToLower(d), lo, hi) {
			if !seen[g] {
				seen[g] = true
				df[g]++
			}
		}
	}

	n := float64(len(docs))
	terms := make([]string, 0, len(df))
	for g, c := range df {
		if c >= minDF && float64(c) <= maxDF*n {
			terms = append(terms, g)
		}
	}
	sort.Strings(terms)

	v := &Vectorizer{
		NgramMin:   lo,
		NgramMax:   hi,
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	for i, g := range terms {
		v.Vocabulary[g] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[g]))) + 1
	}
	return v
}
