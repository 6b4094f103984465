package markov

import (
	"context"
	"reflect"
	"slices"
	"testing"
)

func TestPrune(t *testing.T) {
	m, _ := setupTestModel(t, scenarioCorpus, 1)
	// Link A -> B has freq 2. Every other link, End-Of-Chain included, has freq 1.

	pruned := m.Prune(1)

	if got := pruned.States(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("expected only A to remain a state, got %q", got)
	}
	if tokens, _ := pruned.NextTokens("A"); !reflect.DeepEqual(tokens, []ChainToken{{Text: "B", Freq: 2}}) {
		t.Errorf("unexpected successors of A: %+v", tokens)
	}
	if tokens, total := pruned.NextTokens("B"); tokens != nil || total != 0 {
		t.Errorf("B should have no successors left, got %+v", tokens)
	}
	if got := pruned.Vocabulary(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Vocabulary() got = %q", got)
	}

	// The original model is untouched.
	if len(m.States()) != 4 {
		t.Errorf("Prune() modified the receiver: %q", m.States())
	}

	// A walk through a pruned state ends naturally.
	res, err := NewSeededGenerator(pruned, 1).Generate(context.Background(), WithStart("A"), WithMaxLength(10))
	if err != nil {
		t.Fatalf("Generate on pruned model failed: %v", err)
	}
	if !slices.Equal(res.Tokens, []string{"A", "B"}) {
		t.Errorf("got %q, want [A B]", res.Tokens)
	}
}

func TestPruneEverything(t *testing.T) {
	m, _ := setupTestModel(t, scenarioCorpus, 1)
	pruned := m.Prune(10)
	if !pruned.Empty() || len(pruned.Vocabulary()) != 0 {
		t.Errorf("expected an empty model, got states %q", pruned.States())
	}
}

func TestPruneZeroKeepsModel(t *testing.T) {
	m, _ := setupTestModel(t, scenarioCorpus, 1)
	if !reflect.DeepEqual(m.Prune(0), m) {
		t.Error("pruning at 0 should keep every link")
	}
}
