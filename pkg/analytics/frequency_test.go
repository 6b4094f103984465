package analytics

import (
	"reflect"
	"testing"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

const scenarioCorpus = "A B C\nA B D\n"

func TestTokenFrequency(t *testing.T) {
	c := corpus.Load("Sonic Charge FL\nSonic FL\nCharge Sonic 22Sp\n")

	testCases := []struct {
		name     string
		order    Order
		topN     int
		expected []TokenCount
	}{
		{
			name:  "Descending",
			order: Descending,
			expected: []TokenCount{
				{Token: "Sonic", Count: 3}, {Token: "Charge", Count: 2}, {Token: "FL", Count: 2}, {Token: "22Sp", Count: 1},
			},
		},
		{
			name:  "Ascending",
			order: Ascending,
			expected: []TokenCount{
				{Token: "22Sp", Count: 1}, {Token: "Charge", Count: 2}, {Token: "FL", Count: 2}, {Token: "Sonic", Count: 3},
			},
		},
		{
			name:     "Top two",
			order:    Descending,
			topN:     2,
			expected: []TokenCount{{Token: "Sonic", Count: 3}, {Token: "Charge", Count: 2}},
		},
		{
			name:     "Top larger than table",
			order:    Ascending,
			topN:     10,
			expected: []TokenCount{{Token: "22Sp", Count: 1}, {Token: "Charge", Count: 2}, {Token: "FL", Count: 2}, {Token: "Sonic", Count: 3}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TokenFrequency(c, tc.order, tc.topN)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %+v, want %+v", got, tc.expected)
			}
		})
	}
}

func TestFrequenciesSumToTokenCount(t *testing.T) {
	for _, text := range []string{"", scenarioCorpus, "A A A\nB　A\n  C  \n", "x y z x y z\nz\n"} {
		c := corpus.Load(text)
		var sum int
		for _, entry := range TokenFrequency(c, Descending, 0) {
			sum += entry.Count
		}
		if sum != c.TokenCount() {
			t.Errorf("corpus %q: counts sum to %d, want %d", text, sum, c.TokenCount())
		}
	}
}

func TestParseOrder(t *testing.T) {
	testCases := map[string]Order{
		"":            Descending,
		"desc":        Descending,
		"High-to-Low": Descending,
		"asc":         Ascending,
		"low-to-high": Ascending,
	}
	for input, expected := range testCases {
		got, err := ParseOrder(input)
		if err != nil || got != expected {
			t.Errorf("ParseOrder(%q) got = %v, %v; want %v", input, got, err, expected)
		}
	}
	if _, err := ParseOrder("sideways"); err == nil {
		t.Error("expected an error for an unknown order")
	}
	if Ascending.String() != "asc" || Descending.String() != "desc" {
		t.Error("unexpected Order.String() values")
	}
}
