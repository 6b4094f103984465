package corpus

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Tokenizer is the contract for splitting corpus text into combos and combos
// into tricks. It allows the rest of the module to stay independent of the
// concrete notation.
type Tokenizer interface {
	// Lines splits raw text into trimmed, non-blank lines.
	Lines(text string) []string
	// Tokens splits a single trimmed line into its tokens.
	Tokens(line string) []string
	// Separator returns the string used to join tokens back into a line.
	Separator() string
}

// DefaultTokenizer is the default implementation of the Tokenizer interface.
// It splits on newlines and on runs of ASCII or full-width (U+3000) spaces.
// Its behavior can be customized with functional options.
type DefaultTokenizer struct {
	separator      string
	separatorRegex *regexp.Regexp
}

// Option is a function that configures a DefaultTokenizer.
type Option func(*DefaultTokenizer)

// WithSeparator sets the string used for joining tokens back into a line.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *DefaultTokenizer) {
		t.separator = sep
	}
}

// WithSeparatorRegex sets the regex used to split a line into tokens.
// Default: `[ \x{3000}]+`
func WithSeparatorRegex(expr string) Option {
	return func(t *DefaultTokenizer) {
		t.separatorRegex = regexp.MustCompile(expr)
	}
}

// NewDefaultTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewDefaultTokenizer(opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{
		separator: " ",
		// One or more ASCII spaces or ideographic (full-width) spaces.
		separatorRegex: regexp.MustCompile(`[ \x{3000}]+`),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Lines returns every line of text that is not blank after trimming, trimmed.
func (t *DefaultTokenizer) Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Tokens splits a line on runs of separator characters. The line is trimmed
// first so that no empty tokens are produced at either end.
func (t *DefaultTokenizer) Tokens(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var tokens []string
	for _, tok := range t.separatorRegex.Split(line, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Separator returns the configured separator string.
func (t *DefaultTokenizer) Separator() string {
	return t.separator
}

// ReadText reads a whole corpus from r. Lines longer than the default
// bufio.Scanner limit are supported up to maxLineBytes.
func ReadText(r io.Reader) (string, error) {
	const maxLineBytes = 1 << 20

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var sb strings.Builder
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
