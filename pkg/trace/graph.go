// SPDX-License-Identifier: Apache-2.0

package trace

import "fmt"

// Node is a call in the reconstructed call tree.
type Node struct {
	FuncID int32 `json:"func_id"`

	// Cost of the call excluding its descendants (self cost)
	Cost int64 `json:"cost"`

	// Calls made by this call, in call order
	Children []*Node `json:"children,omitempty"`
}

// TotalCost returns the cost of the call including its descendants.
func (n *Node) TotalCost() int64 {
	total := n.Cost
	for _, c := range n.Children {
		total += c.TotalCost()
	}
	return total
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	count := 1
	for _, c := range n.Children {
		count += c.Count()
	}
	return count
}

// CorrectOverhead removes the cost of the tracing probes from the logged
// counters. benchInstructions is the instruction count of the same
// benchmark measured without tracing.
//
// The difference between the last logged counter and benchInstructions is
// spread evenly over the entries; every counter is lowered by the overhead
// accumulated up to its position, with positions past the midpoint capped
// at the midpoint. Corrected counters never decrease.
func CorrectOverhead(entries []Entry, benchInstructions uint64) []Entry {
	n := len(entries)
	if n == 0 {
		return nil
	}

	corrected := make([]Entry, n)
	copy(corrected, entries)

	rawTotal := entries[n-1].Counter
	if rawTotal <= int64(benchInstructions) {
		return corrected
	}
	overhead := (rawTotal - int64(benchInstructions)) / int64(n)

	mid := n / 2
	prev := int64(0)
	for i := range corrected {
		c := corrected[i].Counter - overhead*int64(min(i, mid))
		c = max(c, prev)
		corrected[i].Counter = c
		prev = c
	}
	return corrected
}

// bracket wraps entries in the sentinel call covering the whole trace.
func bracket(entries []Entry, totalElapsed int64) []Entry {
	tokens := make([]Entry, 0, len(entries)+2)
	tokens = append(tokens, Entry{FuncID: SentinelStart, Counter: 0})
	tokens = append(tokens, entries...)
	tokens = append(tokens, Entry{FuncID: SentinelEnd, Counter: totalElapsed})
	return tokens
}

type frame struct {
	node       *Node
	start      int64
	childTotal int64
}

// Build reconstructs the call tree from a well-nested token sequence whose
// first token opens the call covering all the others and whose last token
// closes it.
//
// The walk keeps an explicit stack of open calls and a cursor into tokens
// instead of recursing per call, so input depth does not bound the
// goroutine stack.
func Build(tokens []Entry) (*Node, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyTrace
	}
	if tokens[0].IsExit() {
		return nil, UnbalancedTraceError{Index: 0, Reason: "trace starts with an exit"}
	}

	root := &Node{FuncID: tokens[0].FuncID}
	stack := []frame{{node: root, start: tokens[0].Counter}}

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if len(stack) == 0 {
			return nil, UnbalancedTraceError{Index: i, Reason: "entries after the root call returned"}
		}
		top := &stack[len(stack)-1]

		if !tok.IsExit() {
			child := &Node{FuncID: tok.FuncID}
			top.node.Children = append(top.node.Children, child)
			stack = append(stack, frame{node: child, start: tok.Counter})
			continue
		}

		if want := ExitID(top.node.FuncID); tok.FuncID != want {
			return nil, UnbalancedTraceError{Index: i, Expected: want, Found: tok.FuncID}
		}

		total := tok.Counter - top.start
		cost := total - top.childTotal
		if total < 0 || cost < 0 {
			return nil, NegativeCostError{Index: i, FuncID: top.node.FuncID, Cost: min(total, cost)}
		}
		top.node.Cost = cost

		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].childTotal += total
		}
	}

	if len(stack) != 0 {
		top := stack[len(stack)-1]
		return nil, UnbalancedTraceError{
			Index:  len(tokens),
			Reason: fmt.Sprintf("call to function %d never returns", top.node.FuncID),
		}
	}
	return root, nil
}
