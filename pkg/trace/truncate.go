// SPDX-License-Identifier: Apache-2.0

package trace

// Each node of a rendered profile costs roughly as much payload as one log
// entry.
const bytesPerNode = entrySize

// DefaultPayloadCeiling is the largest profile payload handed to a
// renderer.
const DefaultPayloadCeiling = 2 << 20

// MaxNodesForPayload returns the node budget fitting in a payload of the
// given size.
func MaxNodesForPayload(payloadBytes int) int {
	return max(payloadBytes/bytesPerNode, 1)
}

// levelCounts returns the number of nodes at each depth of the tree.
func levelCounts(root *Node) []int {
	var counts []int
	level := []*Node{root}
	for len(level) > 0 {
		counts = append(counts, len(level))
		var next []*Node
		for _, n := range level {
			next = append(next, n.Children...)
		}
		level = next
	}
	return counts
}

// Truncate bounds the tree to at most maxNodes nodes. It keeps every level
// up to the deepest one whose cumulative node count fits the budget; nodes
// on that last level lose their children but keep their own cost. The root
// is always kept. The returned flag reports whether anything was cut.
//
// The input tree is not modified.
func Truncate(root *Node, maxNodes int) (*Node, bool) {
	counts := levelCounts(root)

	depth, cumulative := 0, 0
	for d, c := range counts {
		if cumulative+c > maxNodes {
			break
		}
		cumulative += c
		depth = d
	}
	if depth == len(counts)-1 {
		return root, false
	}

	return copyToDepth(root, depth), true
}

func copyToDepth(n *Node, depth int) *Node {
	out := &Node{FuncID: n.FuncID, Cost: n.Cost}
	if depth == 0 || len(n.Children) == 0 {
		return out
	}
	out.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		out.Children[i] = copyToDepth(c, depth-1)
	}
	return out
}
