// Package analytics derives exploratory views from a tokenized corpus: token
// frequencies, the filtered transition network between tricks and the
// neighbourhood of a single trick. Every function is a pure, read-only pass
// over the corpus and can be recomputed per query.
package analytics
