/*
Package corpus turns raw trick notation into the ordered, tokenized training
sequences consumed by the markov and analytics packages.

A corpus is newline-delimited text: every non-blank line is one combo, and the
tricks inside a line are separated by runs of ASCII or full-width spaces.
Tokens are matched byte-for-byte; no case folding or normalization is applied.
Lines can be paired with an ordered list of external labels (the spinner who
performed the combo), and a YAML manifest can describe several corpus variants
that a host application switches between.
*/
package corpus
