package net

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph returns the topology as a directed graph. Node ids equal component
// ids and every Next pointer becomes an edge.
func (t *Topology) Graph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for _, c := range t.components {
		g.AddNode(simple.Node(c.ID))
	}
	for _, c := range t.components {
		if c.Next != None {
			g.SetEdge(simple.Edge{F: simple.Node(c.ID), T: simple.Node(c.Next)})
		}
	}
	return g
}

// Order returns every component id: the head chain first, then the
// components outside it in topological order with ties broken by id.
func (t *Topology) Order() ([]ComponentID, error) {
	sorted, err := topo.SortStabilized(t.Graph(), byID)
	if err != nil {
		return nil, errors.Wrap(ErrCycleDetected, err.Error())
	}

	chain := t.Chain()
	onChain := make(map[ComponentID]bool, len(chain))
	for _, id := range chain {
		onChain[id] = true
	}

	order := make([]ComponentID, 0, len(sorted))
	order = append(order, chain...)
	for _, n := range sorted {
		if id := ComponentID(n.ID()); !onChain[id] {
			order = append(order, id)
		}
	}
	return order, nil
}

// Detached returns the components that are not reachable from the head.
func (t *Topology) Detached() []ComponentID {
	onChain := make(map[ComponentID]bool)
	for _, id := range t.Chain() {
		onChain[id] = true
	}
	var ids []ComponentID
	for _, c := range t.components {
		if !onChain[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
