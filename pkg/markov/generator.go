package markov

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

// Generator samples sequences from a single Model. It owns its random source,
// so a Generator must not be shared between goroutines; create one per
// request instead, they are cheap.
type Generator struct {
	model  *Model
	rng    *rand.Rand
	logger *slog.Logger
}

// NewGenerator creates a Generator over model that draws all randomness from
// rng. If rng is nil, a PCG source seeded from the global generator is used.
func NewGenerator(model *Model, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{
		model:  model,
		rng:    rng,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewSeededGenerator creates a Generator whose output is fully determined by seed.
func NewSeededGenerator(model *Model, seed uint64) *Generator {
	return NewGenerator(model, rand.New(rand.NewPCG(seed, seed)))
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Model returns the model the Generator samples from.
func (g *Generator) Model() *Model {
	return g.model
}
