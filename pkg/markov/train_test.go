package markov

import (
	"reflect"
	"testing"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

func TestBuildModel(t *testing.T) {
	m, _ := setupTestModel(t, scenarioCorpus, 1)

	if got := m.States(); !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("States() got = %q", got)
	}
	if got := m.Vocabulary(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Vocabulary() got = %q, want only first-position tokens", got)
	}
	if m.StartFrequency("A") != 2 {
		t.Errorf("expected A to start 2 combos, got %d", m.StartFrequency("A"))
	}

	testCases := []struct {
		state     string
		expected  []ChainToken
		totalFreq int
	}{
		{state: "A", expected: []ChainToken{{Text: "B", Freq: 2}}, totalFreq: 2},
		{state: "B", expected: []ChainToken{{Text: "C", Freq: 1}, {Text: "D", Freq: 1}}, totalFreq: 2},
		{state: "C", expected: []ChainToken{{Freq: 1, EOC: true}}, totalFreq: 1},
		{state: "D", expected: []ChainToken{{Freq: 1, EOC: true}}, totalFreq: 1},
		{state: "Z", expected: nil, totalFreq: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.state, func(t *testing.T) {
			tokens, total := m.NextTokens(tc.state)
			if total != tc.totalFreq {
				t.Errorf("expected total frequency %d, got %d", tc.totalFreq, total)
			}
			if !reflect.DeepEqual(tokens, tc.expected) {
				t.Errorf("expected tokens %+v, got %+v", tc.expected, tokens)
			}
		})
	}
}

func TestBuildModelEndCountsAlongsideLinks(t *testing.T) {
	// B ends the second combo and continues the first one.
	m, _ := setupTestModel(t, "A B C\nA B\n", 1)

	tokens, total := m.NextTokens("B")
	expected := []ChainToken{{Text: "C", Freq: 1}, {Freq: 1, EOC: true}}
	if !reflect.DeepEqual(tokens, expected) || total != 2 {
		t.Errorf("expected %+v (total 2), got %+v (total %d)", expected, tokens, total)
	}
}

func TestBuildModelIsIdempotent(t *testing.T) {
	c := corpus.Load("A B C A\nB A C\nC C B A D\n")
	first := BuildModel(c)
	second := BuildModel(c)
	if !reflect.DeepEqual(first, second) {
		t.Error("building twice from the same corpus produced different models")
	}
}

func TestBuildModelEmptyCorpus(t *testing.T) {
	m := BuildModel(corpus.Load("\n \n"))
	if !m.Empty() {
		t.Error("expected an empty model")
	}
	if len(m.States()) != 0 || len(m.Vocabulary()) != 0 {
		t.Error("expected no states and no vocabulary")
	}
}

func TestNextTokensReturnsCopy(t *testing.T) {
	m, _ := setupTestModel(t, scenarioCorpus, 1)
	tokens, _ := m.NextTokens("B")
	tokens[0].Freq = 100

	again, _ := m.NextTokens("B")
	if again[0].Freq != 1 {
		t.Error("NextTokens() exposed the model's internal slice")
	}
}

func BenchmarkBuildModel(b *testing.B) {
	c := corpus.Load(createBenchmarkCorpus())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildModel(c)
	}
}
