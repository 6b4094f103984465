package corpus

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultTokenizerLines(t *testing.T) {
	tok := NewDefaultTokenizer()

	text := "  A B C  \n\n \t \r\nA B D\r\n"
	got := tok.Lines(text)
	want := []string{"A B C", "A B D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() got = %q, want %q", got, want)
	}
}

func TestDefaultTokenizerTokens(t *testing.T) {
	tok := NewDefaultTokenizer()

	testCases := []struct {
		name string
		line string
		want []string
	}{
		{name: "Single spaces", line: "ThumbAround Sonic FL", want: []string{"ThumbAround", "Sonic", "FL"}},
		{name: "Runs of spaces", line: "A    B  C", want: []string{"A", "B", "C"}},
		{name: "Full-width space", line: "ソニック　ノーマル　　チャージ", want: []string{"ソニック", "ノーマル", "チャージ"}},
		{name: "Mixed separators", line: "A 　 B", want: []string{"A", "B"}},
		{name: "Surrounding whitespace", line: "\t A B \t", want: []string{"A", "B"}},
		{name: "Case and punctuation kept", line: "neoSA23 NeoSA23 2BackSA33.", want: []string{"neoSA23", "NeoSA23", "2BackSA33."}},
		{name: "Blank", line: "   ", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tok.Tokens(tc.line)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokens(%q) got = %q, want %q", tc.line, got, tc.want)
			}
		})
	}
}

func TestWithSeparatorRegex(t *testing.T) {
	tok := NewDefaultTokenizer(WithSeparatorRegex(`\s*>\s*`), WithSeparator(" > "))

	got := tok.Tokens("A > B>C")
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() got = %q, want %q", got, want)
	}
	if tok.Separator() != " > " {
		t.Errorf("Separator() got = %q, want %q", tok.Separator(), " > ")
	}
}

func TestReadText(t *testing.T) {
	long := strings.Repeat("X ", 100000)
	text, err := ReadText(strings.NewReader("A B\n" + long + "\n"))
	if err != nil {
		t.Fatalf("ReadText() failed: %v", err)
	}
	c := Load(text)
	if c.Len() != 2 {
		t.Fatalf("expected 2 sequences, got %d", c.Len())
	}
	if n := len(c.Sequence(1).Tokens); n != 100000 {
		t.Errorf("expected 100000 tokens in the long line, got %d", n)
	}
}
