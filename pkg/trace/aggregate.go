// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"cmp"
	"slices"
)

// Aggregate merges the calls to the same function under each node into one
// node, recursively. Merged nodes sum their self costs and pool their
// children. Children end up ordered by descending total cost, ties keeping
// the order of first appearance.
//
// The input tree is not modified.
func Aggregate(root *Node) *Node {
	n, _ := aggregate([]*Node{root})
	return n
}

type ranked struct {
	node  *Node
	total int64
}

func aggregate(group []*Node) (*Node, int64) {
	merged := &Node{FuncID: group[0].FuncID}
	var pooled []*Node
	for _, n := range group {
		merged.Cost += n.Cost
		pooled = append(pooled, n.Children...)
	}

	total := merged.Cost
	children := make([]ranked, 0, len(pooled))
	for _, g := range groupByFunc(pooled) {
		child, childTotal := aggregate(g)
		children = append(children, ranked{node: child, total: childTotal})
		total += childTotal
	}

	slices.SortStableFunc(children, func(a, b ranked) int {
		return cmp.Compare(b.total, a.total)
	})

	if len(children) > 0 {
		merged.Children = make([]*Node, len(children))
		for i, c := range children {
			merged.Children[i] = c.node
		}
	}
	return merged, total
}

// groupByFunc groups nodes by function id, in order of first appearance.
func groupByFunc(nodes []*Node) [][]*Node {
	index := make(map[int32]int)
	var groups [][]*Node
	for _, n := range nodes {
		i, ok := index[n.FuncID]
		if !ok {
			i = len(groups)
			index[n.FuncID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], n)
	}
	return groups
}
