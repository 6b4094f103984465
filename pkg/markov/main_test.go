package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

// scenarioCorpus is the two-combo corpus used throughout the tests.
const scenarioCorpus = "A B C\nA B D\n"

// setupTestModel builds a model from text and a seeded generator over it.
func setupTestModel(t *testing.T, text string, seed uint64) (*Model, *Generator) {
	t.Helper()
	m := BuildModel(corpus.Load(text))
	return m, NewSeededGenerator(m, seed)
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
// Every source line becomes one sequence of whitespace separated tokens.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = strings.Repeat("ThumbAround Sonic Charge FL\nSonic Charge 22Sp\n", 500)
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}

func corpusFromText(text string) *corpus.Corpus {
	return corpus.Load(text)
}
