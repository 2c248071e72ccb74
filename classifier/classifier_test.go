package classifier_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathsolver/classifier"
	"github.com/njchilds90/mathsolver/types"
)

var fixed = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func toyCorpus() []classifier.Example {
	return []classifier.Example{
		{Text: "aaa", Label: "algebra"},
		{Text: "aa a", Label: "algebra"},
		{Text: "bbb", Label: "limits"},
		{Text: "bb b", Label: "limits"},
	}
}

func train(t *testing.T, corpus []classifier.Example) *classifier.Artifact {
	t.Helper()
	opts := classifier.DefaultTrainOptions()
	opts.Now = fixed
	a, err := classifier.Train(corpus, opts)
	require.NoError(t, err)
	return a
}

// ============================================================
// Vectorizer
// ============================================================

func TestTransform_UnitLength(t *testing.T) {
	a := train(t, classifier.DefaultCorpus())
	vec := a.Vectorizer.Transform("x^2 + 5*x + 6 = 0")
	require.Len(t, vec, a.Vectorizer.Dim())
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTransform_UnknownTextIsZero(t *testing.T) {
	a := train(t, toyCorpus())
	for _, x := range a.Vectorizer.Transform("zzz") {
		assert.Zero(t, x)
	}
}

func TestTrain_DropsUbiquitousNgrams(t *testing.T) {
	// the padding space occurs in every document
	a := train(t, toyCorpus())
	assert.NotContains(t, a.Vectorizer.Vocabulary, " ")
	assert.Contains(t, a.Vectorizer.Vocabulary, "aa")
}

// ============================================================
// Training
// ============================================================

func TestTrain_SeparableCorpus(t *testing.T) {
	a := train(t, toyCorpus())
	assert.Equal(t, 1.0, classifier.Accuracy(a, toyCorpus()))
	assert.Equal(t, []string{"algebra", "limits"}, a.Model.Classes)
}

func TestTrain_DefaultCorpus(t *testing.T) {
	corpus := classifier.DefaultCorpus()
	require.Len(t, corpus, 25)
	a := train(t, corpus)
	assert.Greater(t, classifier.Accuracy(a, corpus), 0.5)
	assert.Equal(t, []string{"algebra", "calculus", "limits", "trigonometry"}, a.Model.Classes)
}

func TestTrain_Deterministic(t *testing.T) {
	a := train(t, toyCorpus())
	b := train(t, toyCorpus())
	assert.Empty(t, cmp.Diff(a, b))
}

func TestTrain_Errors(t *testing.T) {
	opts := classifier.DefaultTrainOptions()

	_, err := classifier.Train(nil, opts)
	assert.ErrorIs(t, err, classifier.ErrEmptyCorpus)

	_, err = classifier.Train([]classifier.Example{{Text: "a", Label: "x"}, {Text: "b", Label: "x"}}, opts)
	assert.Error(t, err, "single label")

	_, err = classifier.Train([]classifier.Example{{Text: "", Label: "x"}}, opts)
	assert.Error(t, err)

	bad := opts
	bad.NgramMax = 0
	_, err = classifier.Train(toyCorpus(), bad)
	assert.Error(t, err)
}

func TestDefaultCorpus_ReturnsCopy(t *testing.T) {
	c := classifier.DefaultCorpus()
	c[0].Label = "changed"
	assert.Equal(t, "algebra", classifier.DefaultCorpus()[0].Label)
}

func TestLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- text: \"x = 1\"\n  label: algebra\n"), 0o644))
	c, err := classifier.LoadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, []classifier.Example{{Text: "x = 1", Label: "algebra"}}, c)

	require.NoError(t, os.WriteFile(path, []byte("- text: \"x\"\n"), 0o644))
	_, err = classifier.LoadCorpus(path)
	assert.Error(t, err)

	_, err = classifier.LoadCorpus(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// ============================================================
// Classifier
// ============================================================

func TestClassify(t *testing.T) {
	c, err := classifier.New(train(t, toyCorpus()))
	require.NoError(t, err)
	assert.Equal(t, types.Algebra, c.Classify("aaa"))
	assert.Equal(t, types.Limits, c.Classify("BBB"))

	label, p := c.Predict("bbb")
	assert.Equal(t, "limits", label)
	assert.Greater(t, p, 0.5)
}

func TestPredict_CanonicalText(t *testing.T) {
	c, err := classifier.New(train(t, classifier.DefaultCorpus()))
	require.NoError(t, err)
	want, wantP := c.Predict("2*x+3=7")
	got, gotP := c.Predict("2x + 3 = 7")
	assert.Equal(t, want, got)
	assert.InDelta(t, wantP, gotP, 1e-12)

	got, gotP = c.Predict("  2X   +3= 7 ")
	assert.Equal(t, want, got)
	assert.InDelta(t, wantP, gotP, 1e-12)
}

func TestAccuracy_MatchesPredict(t *testing.T) {
	corpus := []classifier.Example{
		{Text: "AAA", Label: "algebra"},
		{Text: "aa  A", Label: "algebra"},
		{Text: "BBB", Label: "limits"},
		{Text: "bb B", Label: "limits"},
	}
	a := train(t, corpus)
	assert.Equal(t, 1.0, classifier.Accuracy(a, toyCorpus()))
}

func TestClassify_UnknownLabel(t *testing.T) {
	corpus := []classifier.Example{
		{Text: "aaa", Label: "geometry"},
		{Text: "bbb", Label: "limits"},
	}
	c, err := classifier.New(train(t, corpus))
	require.NoError(t, err)
	assert.Equal(t, types.Unknown, c.Classify("aaa"))
}

func TestClassify_Concurrent(t *testing.T) {
	c, err := classifier.New(train(t, toyCorpus()))
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, types.Algebra, c.Classify("aa"))
			}
		}()
	}
	wg.Wait()
}

// ============================================================
// Artifact
// ============================================================

func TestArtifact_SaveLoad(t *testing.T) {
	a := train(t, classifier.DefaultCorpus())
	path := filepath.Join(t.TempDir(), "models", "classifier.json")
	require.NoError(t, a.Save(path))

	loaded, err := classifier.Load(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, loaded))

	for _, ex := range classifier.DefaultCorpus() {
		want := a.Model.Predict(a.Vectorizer.Transform(ex.Text))
		got := loaded.Model.Predict(loaded.Vectorizer.Transform(ex.Text))
		assert.Equal(t, want, got, ex.Text)
	}
}

func TestArtifact_Invalid(t *testing.T) {
	a := train(t, toyCorpus())

	v2 := *a
	v2.Version = 2
	assert.ErrorIs(t, v2.Validate(), classifier.ErrInvalidArtifact)

	short := *a
	m := *a.Model
	m.Weights = [][]float64{m.Weights[0][:1], m.Weights[1]}
	short.Model = &m
	assert.ErrorIs(t, short.Validate(), classifier.ErrInvalidArtifact)

	_, err := classifier.New(nil)
	assert.ErrorIs(t, err, classifier.ErrInvalidArtifact)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := classifier.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 1}`), 0o644))
	_, err = classifier.Load(path)
	assert.ErrorIs(t, err, classifier.ErrInvalidArtifact)
}
