/*
Package markov builds first-order Markov models from tokenized trick corpora
and samples new combos from them.

A Model records, for every trick, how often each other trick followed it and
how often a combo ended on it. Generation is rejection sampling: a Generator
repeatedly walks the chain from an anchored or uniformly drawn start state,
truncates the walk to the requested length and accepts it only if it ends on
the requested trick. All randomness comes from an explicitly injected
math/rand/v2 source, so a fixed seed reproduces a run exactly.

Models can be pruned, summarized and exported to or imported from JSON.
*/
package markov
