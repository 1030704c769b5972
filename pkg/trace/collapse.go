// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

var frameEscaper = strings.NewReplacer(";", ":", "\n", " ")

// Collapse renders the tree in stack-collapse format: one line per node,
// the ";"-joined names of its call path followed by its self cost.
//
// Lines follow a depth-first walk, so a renderer that keeps input order
// reads left to right in call order (or by descending cost for an
// aggregated tree). Consecutive sibling calls to the same function are
// separated by a zero-cost line for their parent so the renderer does not
// fuse them into one frame.
func Collapse(root *Node, names NameTable) []string {
	var lines []string
	var walk func(n *Node, path string)
	walk = func(n *Node, path string) {
		lines = append(lines, path+" "+strconv.FormatInt(n.Cost, 10))
		for i, c := range n.Children {
			if i > 0 && n.Children[i-1].FuncID == c.FuncID {
				lines = append(lines, path+" 0")
			}
			walk(c, path+";"+frameEscaper.Replace(names.Name(c.FuncID)))
		}
	}
	walk(root, frameEscaper.Replace(names.Name(root.FuncID)))
	return lines
}

// WriteCollapsed writes the collapsed lines of the tree to w.
func WriteCollapsed(w io.Writer, root *Node, names NameTable) error {
	bw := bufio.NewWriter(w)
	for _, line := range Collapse(root, names) {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
