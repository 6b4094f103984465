package analytics

import (
	"reflect"
	"testing"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

func TestExploreTokenScenario(t *testing.T) {
	c, err := corpus.Load(scenarioCorpus).WithLabels([]string{"KTH", "WhiteTiger"})
	if err != nil {
		t.Fatal(err)
	}

	fc := ExploreToken(c, "B")
	if !reflect.DeepEqual(fc.Predecessors, []TokenCount{{Token: "A", Count: 2}}) {
		t.Errorf("Predecessors got = %+v", fc.Predecessors)
	}
	if !reflect.DeepEqual(fc.Successors, []TokenCount{{Token: "C", Count: 1}, {Token: "D", Count: 1}}) {
		t.Errorf("Successors got = %+v", fc.Successors)
	}
	expected := []Occurrence{
		{Index: 0, Label: "KTH", Tokens: []string{"A", "B", "C"}, Positions: []int{1}},
		{Index: 1, Label: "WhiteTiger", Tokens: []string{"A", "B", "D"}, Positions: []int{1}},
	}
	if !reflect.DeepEqual(fc.Occurrences, expected) {
		t.Errorf("Occurrences got = %+v", fc.Occurrences)
	}
	if fc.Count != 2 || fc.Token != "B" {
		t.Errorf("unexpected header: %+v", fc)
	}
}

func TestExploreTokenEdges(t *testing.T) {
	c := corpus.Load("X A X\nA\nB C\n")

	fc := ExploreToken(c, "X")
	if !reflect.DeepEqual(fc.Predecessors, []TokenCount{{Token: "A", Count: 1}}) {
		t.Errorf("Predecessors got = %+v", fc.Predecessors)
	}
	if !reflect.DeepEqual(fc.Successors, []TokenCount{{Token: "A", Count: 1}}) {
		t.Errorf("Successors got = %+v", fc.Successors)
	}
	if len(fc.Occurrences) != 1 || !reflect.DeepEqual(fc.Occurrences[0].Positions, []int{0, 2}) {
		t.Errorf("Occurrences got = %+v", fc.Occurrences)
	}

	fc = ExploreToken(c, "missing")
	if fc.Count != 0 || len(fc.Predecessors) != 0 || len(fc.Successors) != 0 || len(fc.Occurrences) != 0 {
		t.Errorf("expected an empty context, got %+v", fc)
	}
}
