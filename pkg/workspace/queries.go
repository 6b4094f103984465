package workspace

import (
	"context"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/CTAG07/Trickchain/pkg/analytics"
	"github.com/CTAG07/Trickchain/pkg/corpus"
	"github.com/CTAG07/Trickchain/pkg/markov"
)

// cached returns the result stored under key for the current corpus, or
// builds it and stores it. Results built for a corpus that was replaced
// while building are returned but not stored.
func cached[T any](w *Workspace, key cacheKey, build func(sel *Selection) T) (T, error) {
	var zero T

	w.mu.RLock()
	sel := w.selected
	if sel == nil {
		w.mu.RUnlock()
		return zero, ErrNoSelection
	}
	key.corpus = sel.Corpus.ID
	if v, ok := w.cache[key]; ok {
		w.mu.RUnlock()
		return v.(T), nil
	}
	w.mu.RUnlock()

	v := build(sel)

	w.mu.Lock()
	if w.selected != nil && w.selected.Corpus.ID == key.corpus {
		if len(w.cache) >= maxCacheEntries {
			clear(w.cache)
		}
		w.cache[key] = v
	}
	w.mu.Unlock()
	return v, nil
}

// GenerateRequest holds the parameters of one generation request. Zero
// values select the defaults of the markov package; a zero Seed draws a
// fresh one.
type GenerateRequest struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	MaxLength   int      `json:"maxLength"`
	MaxAttempts int      `json:"maxAttempts"`
	Seed        uint64   `json:"seed"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopK        int      `json:"topK"`
}

// Generation is the outcome of a generation request.
type Generation struct {
	markov.Result
	Display string `json:"display"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Seed    uint64 `json:"seed"`
	Warning string `json:"warning,omitempty"`
}

func (r GenerateRequest) options() []markov.GenerateOption {
	opts := []markov.GenerateOption{markov.WithStart(r.Start), markov.WithEnd(r.End)}
	if r.MaxLength != 0 {
		opts = append(opts, markov.WithMaxLength(r.MaxLength))
	}
	if r.MaxAttempts != 0 {
		opts = append(opts, markov.WithMaxAttempts(r.MaxAttempts))
	}
	if r.Temperature != nil {
		opts = append(opts, markov.WithTemperature(*r.Temperature))
	}
	if r.TopK > 0 {
		opts = append(opts, markov.WithTopK(r.TopK))
	}
	return opts
}

// Generate samples one sequence from the current model. Every request gets
// its own Generator seeded from req.Seed, so a request is reproducible by
// repeating it with the seed reported in the Generation. When no sequence is
// found the error is markov.ErrGenerationExhausted and the Generation still
// carries the seed and attempt count.
func (w *Workspace) Generate(ctx context.Context, req GenerateRequest) (Generation, error) {
	sel, err := w.Current()
	if err != nil {
		return Generation{}, err
	}
	if req.Seed == 0 {
		req.Seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(req.Seed, req.Seed))
	return w.generate(ctx, sel.Model, rng, req)
}

// GenerateRandom picks one start uniformly from the known states and one end
// from presetEnds, then samples a sequence between the two. Preset ends the
// model does not know are skipped; if none is known the end is left open.
func (w *Workspace) GenerateRandom(ctx context.Context, presetEnds []string, req GenerateRequest) (Generation, error) {
	sel, err := w.Current()
	if err != nil {
		return Generation{}, err
	}
	if req.Seed == 0 {
		req.Seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(req.Seed, req.Seed))

	req.Start = ""
	if states := sel.Model.States(); len(states) > 0 {
		req.Start = states[rng.IntN(len(states))]
	}
	ends := slices.DeleteFunc(slices.Clone(presetEnds), func(token string) bool {
		return !sel.Model.HasState(token)
	})
	req.End = ""
	if len(ends) > 0 {
		req.End = ends[rng.IntN(len(ends))]
	}
	return w.generate(ctx, sel.Model, rng, req)
}

func (w *Workspace) generate(ctx context.Context, m *markov.Model, rng *rand.Rand, req GenerateRequest) (Generation, error) {
	w.mu.RLock()
	logger := w.logger
	w.mu.RUnlock()

	gen := markov.NewGenerator(m, rng)
	gen.SetLogger(logger)

	result, err := gen.Generate(ctx, req.options()...)
	out := Generation{Result: result, Display: result.String(), Start: req.Start, End: req.End, Seed: req.Seed}
	if result.StartFallback {
		out.Warning = "start token " + req.Start + " is not a known trick, random starts were used"
	}
	return out, err
}

// Frequency returns the token frequency table of the current corpus.
func (w *Workspace) Frequency(order analytics.Order, topN int) ([]analytics.TokenCount, error) {
	return cached(w, cacheKey{query: "frequency", a: int(order), b: topN}, func(sel *Selection) []analytics.TokenCount {
		return analytics.TokenFrequency(sel.Corpus, order, topN)
	})
}

// Graph returns the transition network of the current corpus.
func (w *Workspace) Graph(minCount int) (*analytics.TransitionGraph, error) {
	return cached(w, cacheKey{query: "graph", a: minCount}, func(sel *Selection) *analytics.TransitionGraph {
		return analytics.BuildTransitionGraph(sel.Corpus, minCount)
	})
}

// Hubs ranks the tokens of the transition network by PageRank with the
// given damping factor.
func (w *Workspace) Hubs(minCount, topN int, damping float64) ([]analytics.Hub, error) {
	return cached(w, cacheKey{query: "hubs", a: minCount, b: topN, f: damping}, func(sel *Selection) []analytics.Hub {
		return analytics.BuildTransitionGraph(sel.Corpus, minCount).Hubs(damping, topN)
	})
}

// Explore returns the neighbours and occurrences of token in the current corpus.
func (w *Workspace) Explore(token string) (analytics.FocusContext, error) {
	sel, err := w.Current()
	if err != nil {
		return analytics.FocusContext{}, err
	}
	return analytics.ExploreToken(sel.Corpus, token), nil
}

// Orders returns the labelled training sequences of the current corpus.
func (w *Workspace) Orders() ([]corpus.Sequence, error) {
	sel, err := w.Current()
	if err != nil {
		return nil, err
	}
	return sel.Corpus.Sequences(), nil
}

// Vocabulary lists the legal start anchors and every known state of the
// current model.
func (w *Workspace) Vocabulary() (vocabulary, states []string, err error) {
	sel, err := w.Current()
	if err != nil {
		return nil, nil, err
	}
	return sel.Model.Vocabulary(), sel.Model.States(), nil
}

// Stats returns the statistics of the current model.
func (w *Workspace) Stats() (markov.ModelStats, error) {
	sel, err := w.Current()
	if err != nil {
		return markov.ModelStats{}, err
	}
	return sel.Model.Stats(), nil
}

// Prune replaces the current model with a copy that drops links seen at
// most minFreq times. The corpus, and with it every corpus-derived result,
// is unaffected. Selecting the corpus again restores the full model.
func (w *Workspace) Prune(ctx context.Context, minFreq int) (markov.ModelStats, error) {
	w.mu.Lock()
	if w.selected == nil {
		w.mu.Unlock()
		return markov.ModelStats{}, ErrNoSelection
	}
	before := w.selected.Model.Stats()
	pruned := *w.selected
	pruned.Model = w.selected.Model.Prune(minFreq)
	w.selected = &pruned
	logger := w.logger
	w.mu.Unlock()

	after := pruned.Model.Stats()
	logger.InfoContext(ctx, "Pruned model",
		"min_freq", minFreq,
		"chains_before", before.TotalChains,
		"chains_after", after.TotalChains,
	)
	return after, nil
}

// ExportModel writes the current model as JSON.
func (w *Workspace) ExportModel(out io.Writer) error {
	sel, err := w.Current()
	if err != nil {
		return err
	}
	return sel.Model.ExportModel(out, sel.Corpus.Name)
}
