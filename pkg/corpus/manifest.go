package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes the corpus variants a host can switch between, such as
// one corpus per display language.
type Manifest struct {
	Default string          `yaml:"default"`
	Corpora []ManifestEntry `yaml:"corpora"`

	dir string
}

// ManifestEntry is a single corpus variant. File is resolved relative to the
// manifest. Labels must line up one-to-one with the non-blank lines of File.
type ManifestEntry struct {
	Name     string   `yaml:"name"`
	Language string   `yaml:"language"`
	File     string   `yaml:"file"`
	Labels   []string `yaml:"labels"`
}

// LoadManifest reads and validates a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err = yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)

	seen := make(map[string]struct{}, len(m.Corpora))
	for _, entry := range m.Corpora {
		if entry.Name == "" || entry.File == "" {
			return nil, fmt.Errorf("manifest %s: every corpus needs a name and a file", path)
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("manifest %s: duplicate corpus name %q", path, entry.Name)
		}
		seen[entry.Name] = struct{}{}
	}
	if m.Default == "" && len(m.Corpora) > 0 {
		m.Default = m.Corpora[0].Name
	}
	if _, ok := m.Entry(m.Default); !ok && len(m.Corpora) > 0 {
		return nil, fmt.Errorf("manifest %s: default corpus %q is not listed", path, m.Default)
	}
	return &m, nil
}

// Entry looks up a corpus variant by name.
func (m *Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, entry := range m.Corpora {
		if entry.Name == name {
			return entry, true
		}
	}
	return ManifestEntry{}, false
}

// Open reads, tokenizes and labels the named corpus variant. Entries without
// labels produce an unlabelled corpus; entries whose labels do not match the
// line count fail with a *LabelMismatchError.
func (m *Manifest) Open(name string) (*Corpus, error) {
	entry, ok := m.Entry(name)
	if !ok {
		return nil, fmt.Errorf("corpus %q is not in the manifest", name)
	}

	path := entry.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %q: %w", name, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	text, err := ReadText(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %q: %w", name, err)
	}

	c := Load(text).Named(entry.Name, entry.Language)
	if len(entry.Labels) == 0 {
		return c, nil
	}
	return c.WithLabels(entry.Labels)
}
