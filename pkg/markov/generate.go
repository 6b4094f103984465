package markov

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
)

const (
	// DefaultMaxLength is the maximum number of tokens generated when no
	// WithMaxLength option is given.
	DefaultMaxLength = 15
	// DefaultMaxAttempts is the number of walks tried when no
	// WithMaxAttempts option is given.
	DefaultMaxAttempts = 200
	// DisplaySeparator joins generated tokens for display.
	DisplaySeparator = " → "
)

var (
	// ErrGenerationExhausted is returned when no walk satisfied the end
	// constraint within the attempt budget. It is an ordinary negative result.
	ErrGenerationExhausted = errors.New("no sequence found")
	// ErrInvalidLength is returned for a maximum length below 1.
	ErrInvalidLength = errors.New("maximum length must be at least 1")
	// ErrInvalidAttempts is returned for an attempt budget below 1.
	ErrInvalidAttempts = errors.New("maximum attempts must be at least 1")
)

// generateOptions is used by the generate functions to configure default options.
type generateOptions struct {
	start       string
	end         string
	maxLength   int
	maxAttempts int
	temperature float64
	topK        int
}

func defaultGenerateOptions() *generateOptions {
	return &generateOptions{
		maxLength:   DefaultMaxLength,
		maxAttempts: DefaultMaxAttempts,
		temperature: 1.0,
		topK:        0,
	}
}

// GenerateOption is a function that configures generation parameters.
type GenerateOption func(*generateOptions)

// WithStart anchors every walk at token. If token is not a known state the
// Generator falls back to a random start and reports it in the Result.
func WithStart(token string) GenerateOption {
	return func(o *generateOptions) { o.start = token }
}

// WithEnd only accepts sequences whose last token is exactly token.
// An empty token accepts any sequence.
func WithEnd(token string) GenerateOption {
	return func(o *generateOptions) { o.end = token }
}

// WithMaxLength sets the maximum number of tokens, start token included.
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// WithMaxAttempts sets how many walks are tried before giving up.
func WithMaxAttempts(n int) GenerateOption {
	return func(o *generateOptions) { o.maxAttempts = n }
}

// WithTemperature adjusts the randomness of the token selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 increase randomness (making less frequent tokens more likely).
// Values < 1.0 decrease randomness (making more frequent tokens even more likely).
// A value of 0 or less results in deterministic selection (always choosing the most frequent token).
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the token selection pool to the top `k` most frequent tokens
// at each step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// Result is a successfully generated sequence.
type Result struct {
	Tokens []string `json:"tokens"`
	// Attempts is the number of walks made, the accepted one included.
	Attempts int `json:"attempts"`
	// StartFallback is set when a start token was requested but is not a
	// known state, so the walks started from random states instead.
	StartFallback bool `json:"start_fallback"`
}

// String joins the tokens with DisplaySeparator.
func (r Result) String() string {
	return Join(r.Tokens)
}

// Join renders a sequence for display.
func Join(tokens []string) string {
	return strings.Join(tokens, DisplaySeparator)
}

// Generate samples a sequence by rejection sampling. Each attempt picks an
// initial state, either the requested start or a state drawn uniformly from
// all distinct states (not weighted by how often they occur), walks the chain
// from it, truncates the result to the maximum length and accepts it if it
// ends on the requested end token. The first accepted sequence is returned;
// if none is accepted the error is ErrGenerationExhausted and the Result
// still carries the attempt count and fallback flag.
func (g *Generator) Generate(ctx context.Context, opts ...GenerateOption) (Result, error) {
	options := defaultGenerateOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.maxLength < 1 {
		return Result{}, ErrInvalidLength
	}
	if options.maxAttempts < 1 {
		return Result{}, ErrInvalidAttempts
	}

	anchored := options.start != "" && g.model.HasState(options.start)
	result := Result{StartFallback: options.start != "" && !anchored}
	if result.StartFallback {
		g.logger.WarnContext(ctx, "Start token is not a known state, falling back to random starts",
			slog.String("start", options.start),
		)
	}

	if g.model.Empty() {
		g.logger.InfoContext(ctx, "Generation impossible on an empty model")
		return result, ErrGenerationExhausted
	}

	for result.Attempts < options.maxAttempts {
		result.Attempts++

		state := options.start
		if !anchored {
			state = g.model.states[g.rng.IntN(len(g.model.states))]
		}

		seq := g.walk(state, options)
		if options.end == "" || seq[len(seq)-1] == options.end {
			result.Tokens = seq
			g.logger.DebugContext(ctx, "Generation accepted",
				slog.String("start", state),
				slog.Int("attempts", result.Attempts),
				slog.Int("generated_length", len(seq)),
			)
			return result, nil
		}
		g.logger.DebugContext(ctx, "Generation rejected",
			slog.String("start", state),
			slog.String("last", seq[len(seq)-1]),
			slog.String("want_end", options.end),
			slog.Int("attempt", result.Attempts),
		)
	}

	g.logger.InfoContext(ctx, "Generation exhausted its attempts",
		slog.String("start", options.start),
		slog.String("end", options.end),
		slog.Int("max_length", options.maxLength),
		slog.Int("max_attempts", options.maxAttempts),
	)
	return result, ErrGenerationExhausted
}

// walk produces the initial state followed by at most maxLength-1 successors.
func (g *Generator) walk(state string, options *generateOptions) []string {
	seq := make([]string, 1, options.maxLength)
	seq[0] = state
	if len(seq) >= options.maxLength {
		return seq
	}
	for token := range g.successors(state, options) {
		seq = append(seq, token)
		if len(seq) >= options.maxLength {
			break
		}
	}
	return seq
}

// Walk returns an iterator over a random walk that continues from state. The
// state itself is not yielded. The walk ends naturally when End-Of-Chain is
// drawn or when a token without successors is reached; callers bound its
// length by breaking out of the loop. Only the temperature and top-K options
// apply.
func (g *Generator) Walk(state string, opts ...GenerateOption) iter.Seq[string] {
	options := defaultGenerateOptions()
	for _, opt := range opts {
		opt(options)
	}
	return g.successors(state, options)
}

func (g *Generator) successors(state string, options *generateOptions) iter.Seq[string] {
	return func(yield func(string) bool) {
		current := state
		for {
			choices, ok := g.model.chains[current]
			if !ok || len(choices) == 0 { // Dead end in chain
				return
			}
			next := chooseNextToken(g.rng, choices, g.model.totals[current], options)
			if next.EOC {
				return
			}
			if !yield(next.Text) {
				return
			}
			current = next.Text
		}
	}
}

// chooseNextToken abstracts the token selection logic from the walk.
// choices belongs to the model and is never reordered in place.
func chooseNextToken(rng *rand.Rand, choices []ChainToken, totalFreq int, options *generateOptions) ChainToken {
	// topK filtering
	if options.topK > 0 && options.topK < len(choices) {
		choices = slices.Clone(choices)
		slices.SortStableFunc(choices, func(a, b ChainToken) int {
			return b.Freq - a.Freq
		})
		choices = choices[:options.topK]
		totalFreq = 0
		for _, choice := range choices {
			totalFreq += choice.Freq
		}
	}

	// temperature selection
	if options.temperature <= 0 { // Deterministic
		best := choices[0]
		for _, choice := range choices[1:] {
			if choice.Freq > best.Freq {
				best = choice
			}
		}
		return best
	}

	if options.temperature == 1.0 { // Standard weighted random
		randChoice := rng.IntN(totalFreq)
		for _, choice := range choices {
			randChoice -= choice.Freq
			if randChoice < 0 {
				return choice
			}
		}
		return choices[len(choices)-1]
	}

	// Temperature-based sampling
	logProbabilities := make([]float64, len(choices))
	maxLogProb := math.Inf(-1)
	for i, choice := range choices {
		lp := math.Log(float64(choice.Freq)) / options.temperature
		logProbabilities[i] = lp
		if lp > maxLogProb {
			maxLogProb = lp
		}
	}
	var totalWeight float64
	weights := make([]float64, len(choices))
	for i, lp := range logProbabilities {
		w := math.Exp(lp - maxLogProb)
		weights[i] = w
		totalWeight += w
	}
	randChoice := rng.Float64() * totalWeight
	for i, choice := range choices {
		randChoice -= weights[i]
		if randChoice < 0 {
			return choice
		}
	}
	return choices[len(choices)-1]
}
