// Package workspace holds the corpus and model a host is currently working
// with. A Workspace builds the model once per corpus selection, serves
// generation and analytics queries against it, and caches derived results
// under the identity of the selected corpus.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/CTAG07/Trickchain/pkg/corpus"
	"github.com/CTAG07/Trickchain/pkg/markov"
	"github.com/CTAG07/Trickchain/pkg/store"
	"github.com/google/uuid"
)

var (
	// ErrUnknownCorpus is returned when a corpus name is neither in the
	// manifest nor in the store.
	ErrUnknownCorpus = errors.New("unknown corpus")
	// ErrNoSelection is returned by queries made before any corpus was selected.
	ErrNoSelection = errors.New("no corpus selected")
	// ErrManifestCorpus is returned when trying to overwrite or remove a
	// corpus that is defined by the manifest.
	ErrManifestCorpus = errors.New("corpus is defined by the manifest")
)

// maxCacheEntries bounds the derived-result cache. The cache is simply
// cleared once it is full.
const maxCacheEntries = 128

// Corpus sources.
const (
	SourceManifest = "manifest"
	SourceStore    = "store"
)

// Selection is the corpus currently worked with together with its model.
type Selection struct {
	Corpus *corpus.Corpus
	Model  *markov.Model
	Source string
}

// Summary describes the current selection.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	Source    string    `json:"source"`
	Sequences int       `json:"sequences"`
	Tokens    int       `json:"tokens"`
	States    int       `json:"states"`
}

// CorpusEntry is one selectable corpus.
type CorpusEntry struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Source   string `json:"source"`
	Selected bool   `json:"selected"`
}

type cacheKey struct {
	corpus uuid.UUID
	query  string
	a, b   int
	f      float64
}

// Workspace is safe for concurrent use. Queries share the selection
// read-only; selecting another corpus replaces it wholesale.
type Workspace struct {
	mu       sync.RWMutex
	manifest *corpus.Manifest
	store    *store.Store
	selected *Selection
	cache    map[cacheKey]any
	logger   *slog.Logger
}

// New creates a Workspace over the given corpus sources. Either may be nil.
func New(manifest *corpus.Manifest, st *store.Store) *Workspace {
	return &Workspace{
		manifest: manifest,
		store:    st,
		cache:    make(map[cacheKey]any),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Workspace and the generators it creates.
// By default, all logs are discarded.
func (w *Workspace) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.mu.Lock()
		w.logger = logger
		w.mu.Unlock()
	}
}

// Select makes the named corpus current. Manifest variants take precedence
// over stored corpora. The corpus is read and its model built before the
// previous selection is replaced, so a failed selection leaves the
// workspace unchanged.
func (w *Workspace) Select(ctx context.Context, name string) (Summary, error) {
	sel, err := w.open(ctx, name)
	if err != nil {
		return Summary{}, err
	}

	w.mu.Lock()
	w.replace(sel)
	logger := w.logger
	w.mu.Unlock()

	summary := summarize(sel)
	logger.InfoContext(ctx, "Selected corpus",
		slog.String("name", summary.Name),
		slog.String("source", summary.Source),
		slog.Int("sequences", summary.Sequences),
		slog.Int("states", summary.States),
	)
	return summary, nil
}

// SelectDefault selects the manifest default, or the first stored corpus
// when there is no manifest. Having nothing to select is not an error.
func (w *Workspace) SelectDefault(ctx context.Context) (Summary, error) {
	if w.manifest != nil && w.manifest.Default != "" {
		return w.Select(ctx, w.manifest.Default)
	}
	if w.store != nil {
		infos, err := w.store.GetCorpusInfos(ctx)
		if err != nil {
			return Summary{}, err
		}
		if len(infos) > 0 {
			return w.Select(ctx, infos[0].Name)
		}
	}
	return Summary{}, nil
}

func (w *Workspace) open(ctx context.Context, name string) (*Selection, error) {
	if w.manifest != nil {
		if _, ok := w.manifest.Entry(name); ok {
			c, err := w.manifest.Open(name)
			if err != nil {
				return nil, err
			}
			return &Selection{Corpus: c, Model: markov.BuildModel(c), Source: SourceManifest}, nil
		}
	}
	if w.store == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorpus, name)
	}

	c, err := w.store.LoadCorpus(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorpus, name)
	}
	if err != nil {
		return nil, err
	}
	m, err := w.store.LoadModel(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Selection{Corpus: c, Model: m, Source: SourceStore}, nil
}

// replace swaps in a new selection and drops every cached result. The
// caller must hold the write lock.
func (w *Workspace) replace(sel *Selection) {
	w.selected = sel
	clear(w.cache)
}

// Current returns the current selection.
func (w *Workspace) Current() (Selection, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.selected == nil {
		return Selection{}, ErrNoSelection
	}
	return *w.selected, nil
}

// Summary describes the current selection.
func (w *Workspace) Summary() (Summary, error) {
	sel, err := w.Current()
	if err != nil {
		return Summary{}, err
	}
	return summarize(&sel), nil
}

func summarize(sel *Selection) Summary {
	return Summary{
		ID:        sel.Corpus.ID,
		Name:      sel.Corpus.Name,
		Language:  sel.Corpus.Language,
		Source:    sel.Source,
		Sequences: sel.Corpus.Len(),
		Tokens:    sel.Corpus.TokenCount(),
		States:    len(sel.Model.States()),
	}
}

// Corpora lists the manifest variants followed by the stored corpora.
func (w *Workspace) Corpora(ctx context.Context) ([]CorpusEntry, error) {
	current := ""
	if sel, err := w.Current(); err == nil {
		current = sel.Corpus.Name
	}

	var entries []CorpusEntry
	if w.manifest != nil {
		for _, e := range w.manifest.Corpora {
			entries = append(entries, CorpusEntry{Name: e.Name, Language: e.Language, Source: SourceManifest, Selected: e.Name == current})
		}
	}
	if w.store != nil {
		infos, err := w.store.GetCorpusInfos(ctx)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			entries = append(entries, CorpusEntry{Name: info.Name, Language: info.Language, Source: SourceStore, Selected: info.Name == current})
		}
	}
	return entries, nil
}

// Upload tokenizes text, attaches labels when given, trains a model and
// stores both under name. If the stored corpus of that name is the current
// selection it is replaced by the new one.
func (w *Workspace) Upload(ctx context.Context, name, language, text string, labels []string) (store.CorpusInfo, error) {
	if w.store == nil {
		return store.CorpusInfo{}, errors.New("no corpus store configured")
	}
	if name == "" {
		return store.CorpusInfo{}, errors.New("corpus name is required")
	}
	if w.manifest != nil {
		if _, ok := w.manifest.Entry(name); ok {
			return store.CorpusInfo{}, fmt.Errorf("%w: %q", ErrManifestCorpus, name)
		}
	}

	c := corpus.Load(text).Named(name, language)
	if len(labels) > 0 {
		var err error
		if c, err = c.WithLabels(labels); err != nil {
			return store.CorpusInfo{}, err
		}
	}
	m := markov.BuildModel(c)

	info, err := w.store.SaveCorpus(ctx, c, m)
	if err != nil {
		return store.CorpusInfo{}, err
	}

	w.mu.Lock()
	if w.selected != nil && w.selected.Source == SourceStore && w.selected.Corpus.Name == name {
		w.replace(&Selection{Corpus: c, Model: m, Source: SourceStore})
	}
	w.mu.Unlock()
	return info, nil
}

// Remove deletes a stored corpus. Removing the current selection leaves the
// workspace without one.
func (w *Workspace) Remove(ctx context.Context, name string) error {
	if w.manifest != nil {
		if _, ok := w.manifest.Entry(name); ok {
			return fmt.Errorf("%w: %q", ErrManifestCorpus, name)
		}
	}
	if w.store == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCorpus, name)
	}
	if err := w.store.RemoveCorpus(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrUnknownCorpus, name)
		}
		return err
	}

	w.mu.Lock()
	if w.selected != nil && w.selected.Source == SourceStore && w.selected.Corpus.Name == name {
		w.selected = nil
		clear(w.cache)
	}
	w.mu.Unlock()
	return nil
}
