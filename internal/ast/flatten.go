package ast

// FlatNode is one node from a flattened forest, carrying the index of its
// parent in the same slice (-1 for roots) so store.ReplaceCodeTree can
// assign database ids in a single depth-first pass.
type FlatNode struct {
	Node      *Node
	ParentIdx int
	Depth     int
}

// Flatten converts a forest of Node trees into depth-first order. Root
// nodes have Depth 0 and ParentIdx -1; every other node's Depth is
// parent.Depth+1.
func Flatten(forest []*Node) []FlatNode {
	var out []FlatNode
	var walk func(n *Node, parentIdx, depth int)
	walk = func(n *Node, parentIdx, depth int) {
		idx := len(out)
		out = append(out, FlatNode{Node: n, ParentIdx: parentIdx, Depth: depth})
		for _, child := range n.Children {
			walk(child, idx, depth+1)
		}
	}
	for _, root := range forest {
		walk(root, -1, 0)
	}
	return out
}
