package analytics

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

func TestBuildTransitionGraphScenario(t *testing.T) {
	g := BuildTransitionGraph(corpus.Load(scenarioCorpus), 1)

	expectedNodes := []Node{{Token: "A", Count: 2}, {Token: "B", Count: 2}, {Token: "C", Count: 1}, {Token: "D", Count: 1}}
	if got := g.Nodes(); !reflect.DeepEqual(got, expectedNodes) {
		t.Errorf("Nodes() got = %+v", got)
	}
	expectedEdges := []Edge{{From: "A", To: "B", Weight: 2}, {From: "B", To: "C", Weight: 1}, {From: "B", To: "D", Weight: 1}}
	if got := g.Edges(); !reflect.DeepEqual(got, expectedEdges) {
		t.Errorf("Edges() got = %+v", got)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Errorf("expected 4 nodes and 3 edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	if g.Weight("A", "B") != 2 || g.Weight("B", "A") != 0 {
		t.Error("Weight() returned unexpected values")
	}
}

func TestBuildTransitionGraphThreshold(t *testing.T) {
	c := corpus.Load(scenarioCorpus)

	g := BuildTransitionGraph(c, 2)
	if got := g.Nodes(); !reflect.DeepEqual(got, []Node{{Token: "A", Count: 2}, {Token: "B", Count: 2}}) {
		t.Errorf("Nodes() got = %+v", got)
	}
	if got := g.Edges(); !reflect.DeepEqual(got, []Edge{{From: "A", To: "B", Weight: 2}}) {
		t.Errorf("Edges() got = %+v", got)
	}

	if g = BuildTransitionGraph(c, 3); g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("expected an empty graph, got %d nodes and %d edges", g.NodeCount(), g.EdgeCount())
	}
}

// A frequent edge into a rare token is dropped along with the token.
func TestBuildTransitionGraphPrunesRareHubs(t *testing.T) {
	c := corpus.Load("A Hub B\nA Hub C\nA B\nA B\nC C\n")
	freq := Frequencies(c)

	for minCount := 0; minCount <= 5; minCount++ {
		g := BuildTransitionGraph(c, minCount)
		for _, n := range g.Nodes() {
			if freq[n.Token] < minCount {
				t.Errorf("minCount %d: node %q has frequency %d", minCount, n.Token, freq[n.Token])
			}
		}
		for _, e := range g.Edges() {
			if freq[e.From] < minCount || freq[e.To] < minCount {
				t.Errorf("minCount %d: edge %+v has an endpoint below the threshold", minCount, e)
			}
		}
	}

	g := BuildTransitionGraph(c, 3)
	if g.HasNode("Hub") || g.Weight("A", "Hub") != 0 {
		t.Error("expected Hub and its edges to be pruned")
	}
	if g.Weight("A", "B") != 2 {
		t.Errorf("expected A -> B with weight 2, got %d", g.Weight("A", "B"))
	}
}

func TestTransitionGraphSelfLoops(t *testing.T) {
	g := BuildTransitionGraph(corpus.Load("A A B\n"), 1)
	if g.Weight("A", "A") != 1 {
		t.Errorf("expected self transition A -> A, got weight %d", g.Weight("A", "A"))
	}

	dg := g.Directed()
	if dg.Nodes().Len() != 2 {
		t.Errorf("expected 2 gonum nodes, got %d", dg.Nodes().Len())
	}
	if dg.Edges().Len() != 1 {
		t.Errorf("expected the self loop to be left out of the gonum graph, got %d edges", dg.Edges().Len())
	}
}

func TestSuccessors(t *testing.T) {
	g := BuildTransitionGraph(corpus.Load("A B\nA B\nA C\nA D\nA D\n"), 1)
	expected := []Edge{{From: "A", To: "B", Weight: 2}, {From: "A", To: "D", Weight: 2}, {From: "A", To: "C", Weight: 1}}
	if got := g.Successors("A"); !reflect.DeepEqual(got, expected) {
		t.Errorf("Successors(A) got = %+v", got)
	}
	if got := g.Successors("Z"); len(got) != 0 {
		t.Errorf("expected no successors for an unknown token, got %+v", got)
	}
}

func TestTransitionGraphJSON(t *testing.T) {
	data, err := json.Marshal(BuildTransitionGraph(corpus.Load(scenarioCorpus), 2))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"min_count":2,"nodes":[{"token":"A","count":2},{"token":"B","count":2}],"edges":[{"from":"A","to":"B","weight":2}]}`
	if string(data) != expected {
		t.Errorf("got %s, want %s", data, expected)
	}
}

func TestMarshalDOT(t *testing.T) {
	data, err := BuildTransitionGraph(corpus.Load("ソニック チャージ\nA A\n"), 1).MarshalDOT("transitions")
	if err != nil {
		t.Fatalf("MarshalDOT failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"digraph", "transitions", "ソニック", "チャージ", "weight=1", "self_loops=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output is missing %q:\n%s", want, out)
		}
	}
}

func TestHubs(t *testing.T) {
	g := BuildTransitionGraph(corpus.Load(scenarioCorpus), 1)
	hubs := g.Hubs(DefaultDamping, 0)
	if len(hubs) != 4 {
		t.Fatalf("expected 4 hubs, got %d", len(hubs))
	}

	var sum float64
	for _, h := range hubs {
		sum += h.Rank
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("ranks should sum to 1, got %f", sum)
	}
	// A has no incoming transitions, so it ranks last.
	if last := hubs[len(hubs)-1]; last.Token != "A" || last.Count != 2 {
		t.Errorf("expected A to rank last, got %+v", last)
	}

	if top := g.Hubs(DefaultDamping, 1); len(top) != 1 || top[0].Token != hubs[0].Token {
		t.Errorf("Hubs(top 1) got = %+v", top)
	}
	if empty := BuildTransitionGraph(corpus.Load(""), 1).Hubs(DefaultDamping, 0); empty != nil {
		t.Errorf("expected no hubs on an empty graph, got %+v", empty)
	}
}
