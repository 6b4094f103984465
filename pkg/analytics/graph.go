package analytics

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/CTAG07/Trickchain/pkg/corpus"
)

// DefaultDamping is the PageRank damping factor used by Hubs.
const DefaultDamping = 0.85

// Node is a token kept in a transition network, with its total frequency.
type Node struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Edge is an ordered, weighted transition between two nodes.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// TransitionGraph is a directed weighted graph of token transitions. It holds
// only tokens whose total frequency reaches MinCount, and only edges whose
// two endpoints are both kept. Self transitions are kept as edges.
type TransitionGraph struct {
	MinCount int

	nodes map[string]int
	adj   map[string]map[string]int
	edges int
}

// BuildTransitionGraph counts token frequencies and adjacent pairs in a
// single pass over c and keeps the nodes with a total frequency of at least
// minCount. A rare token is pruned together with all of its edges, even the
// frequent ones.
func BuildTransitionGraph(c *corpus.Corpus, minCount int) *TransitionGraph {
	freq := make(map[string]int)
	pairs := make(map[string]map[string]int)
	for _, seq := range c.Sequences() {
		for i, token := range seq.Tokens {
			freq[token]++
			if i == 0 {
				continue
			}
			prev := seq.Tokens[i-1]
			next, ok := pairs[prev]
			if !ok {
				next = make(map[string]int)
				pairs[prev] = next
			}
			next[token]++
		}
	}

	g := &TransitionGraph{
		MinCount: minCount,
		nodes:    make(map[string]int),
		adj:      make(map[string]map[string]int),
	}
	for token, count := range freq {
		if count >= minCount {
			g.nodes[token] = count
		}
	}
	for from, next := range pairs {
		if _, ok := g.nodes[from]; !ok {
			continue
		}
		for to, weight := range next {
			if _, ok := g.nodes[to]; !ok {
				continue
			}
			if g.adj[from] == nil {
				g.adj[from] = make(map[string]int)
			}
			g.adj[from][to] = weight
			g.edges++
		}
	}
	return g
}

// HasNode reports whether token is a node of the graph.
func (g *TransitionGraph) HasNode(token string) bool {
	_, ok := g.nodes[token]
	return ok
}

// Weight returns the weight of the edge from -> to, or 0 if there is none.
func (g *TransitionGraph) Weight(from, to string) int {
	return g.adj[from][to]
}

// NodeCount returns the number of nodes.
func (g *TransitionGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *TransitionGraph) EdgeCount() int {
	return g.edges
}

// Nodes returns the nodes sorted by token.
func (g *TransitionGraph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for token, count := range g.nodes {
		nodes = append(nodes, Node{Token: token, Count: count})
	}
	slices.SortFunc(nodes, func(a, b Node) int { return cmp.Compare(a.Token, b.Token) })
	return nodes
}

// Edges returns the edges sorted by source, then target.
func (g *TransitionGraph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for from, next := range g.adj {
		for to, weight := range next {
			edges = append(edges, Edge{From: from, To: to, Weight: weight})
		}
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return edges
}

// Successors returns the outgoing edges of token sorted by descending weight.
func (g *TransitionGraph) Successors(token string) []Edge {
	var edges []Edge
	for to, weight := range g.adj[token] {
		edges = append(edges, Edge{From: token, To: to, Weight: weight})
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return edges
}

// MarshalJSON renders the graph as sorted node and edge lists.
func (g *TransitionGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MinCount int    `json:"min_count"`
		Nodes    []Node `json:"nodes"`
		Edges    []Edge `json:"edges"`
	}{
		MinCount: g.MinCount,
		Nodes:    g.Nodes(),
		Edges:    g.Edges(),
	})
}

// trickNode is the gonum representation of a Node.
type trickNode struct {
	id    int64
	token string
	count int
	loops int
}

func (n trickNode) ID() int64     { return n.id }
func (n trickNode) DOTID() string { return n.token }

func (n trickNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "count", Value: strconv.Itoa(n.count)}}
	if n.loops > 0 {
		attrs = append(attrs, encoding.Attribute{Key: "self_loops", Value: strconv.Itoa(n.loops)})
	}
	return attrs
}

// transitionEdge is the gonum representation of an Edge.
type transitionEdge struct {
	from, to trickNode
	weight   int
}

func (e transitionEdge) From() graph.Node { return e.from }
func (e transitionEdge) To() graph.Node   { return e.to }
func (e transitionEdge) Weight() float64  { return float64(e.weight) }

func (e transitionEdge) ReversedEdge() graph.Edge {
	return transitionEdge{from: e.to, to: e.from, weight: e.weight}
}

func (e transitionEdge) Attributes() []encoding.Attribute {
	w := strconv.Itoa(e.weight)
	return []encoding.Attribute{{Key: "weight", Value: w}, {Key: "label", Value: w}}
}

// Directed converts the network into a gonum weighted directed graph. Simple
// graphs cannot hold self loops, so those are carried as a node attribute
// instead of an edge.
func (g *TransitionGraph) Directed() *simple.WeightedDirectedGraph {
	dg := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	byToken := make(map[string]trickNode, len(g.nodes))
	for i, n := range g.Nodes() {
		node := trickNode{id: int64(i), token: n.Token, count: n.Count, loops: g.adj[n.Token][n.Token]}
		byToken[n.Token] = node
		dg.AddNode(node)
	}
	for _, e := range g.Edges() {
		if e.From == e.To {
			continue
		}
		dg.SetWeightedEdge(transitionEdge{from: byToken[e.From], to: byToken[e.To], weight: e.Weight})
	}
	return dg
}

// MarshalDOT renders the network in Graphviz DOT format.
func (g *TransitionGraph) MarshalDOT(name string) ([]byte, error) {
	return dot.Marshal(g.Directed(), name, "", "\t")
}

// Hub is a node ranked by its weighted PageRank in the network.
type Hub struct {
	Token string  `json:"token"`
	Count int     `json:"count"`
	Rank  float64 `json:"rank"`
}

// Hubs ranks the nodes by edge-weighted PageRank, highest first, ties broken
// by token. A positive topN keeps only the first topN hubs.
func (g *TransitionGraph) Hubs(damping float64, topN int) []Hub {
	if len(g.nodes) == 0 {
		return nil
	}
	dg := g.Directed()
	ranks := network.PageRank(dg, damping, 1e-8)

	hubs := make([]Hub, 0, len(ranks))
	nodes := dg.Nodes()
	for nodes.Next() {
		n := nodes.Node().(trickNode)
		hubs = append(hubs, Hub{Token: n.token, Count: n.count, Rank: ranks[n.id]})
	}
	slices.SortFunc(hubs, func(a, b Hub) int {
		// PageRank iterates in map order, so equal ranks can differ in the last bits.
		if c := cmp.Compare(roundRank(b.Rank), roundRank(a.Rank)); c != 0 {
			return c
		}
		return cmp.Compare(a.Token, b.Token)
	})
	if topN > 0 && topN < len(hubs) {
		hubs = hubs[:topN]
	}
	return hubs
}

func roundRank(r float64) float64 {
	return math.Round(r*1e9) / 1e9
}
