package markov

import (
	"slices"
	"testing"
)

func TestHasState(t *testing.T) {
	m, _ := setupTestModel(t, scenarioCorpus, 1)

	for _, state := range []string{"A", "B", "C", "D"} {
		if !m.HasState(state) {
			t.Errorf("expected %q to be a state", state)
		}
	}
	for _, token := range []string{"", "a", "Z", EOCTokenText} {
		if m.HasState(token) {
			t.Errorf("did not expect %q to be a state", token)
		}
	}
}

func TestChainTokenString(t *testing.T) {
	if s := (ChainToken{Text: "Sonic", Freq: 3}).String(); s != "Sonic" {
		t.Errorf("expected Sonic, got %q", s)
	}
	if s := (ChainToken{Freq: 3, EOC: true}).String(); s != EOCTokenText {
		t.Errorf("expected %q, got %q", EOCTokenText, s)
	}
}

func TestWalk(t *testing.T) {
	_, g := setupTestModel(t, "A B C\n", 7)

	got := slices.Collect(g.Walk("A"))
	if !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("Walk(A) got = %q, want [B C]", got)
	}

	if got = slices.Collect(g.Walk("C")); len(got) != 0 {
		t.Errorf("Walk(C) should end immediately, got %q", got)
	}
	if got = slices.Collect(g.Walk("unknown")); len(got) != 0 {
		t.Errorf("Walk(unknown) should end immediately, got %q", got)
	}
}
