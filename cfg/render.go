package cfg

import "github.com/m1gwings/treedrawer/tree"

// Render draws g as ASCII art for debug output, following Entry's
// out-edges into a spanning tree (a join point is only expanded once;
// later arrivals render as a childless leaf naming the vertex they
// rejoin, since a CFG is a graph and treedrawer only draws trees).
// Intended for manual inspection of a pass's effect on control flow, not
// machine parsing.
func (g *Graph) Render() string {
	if g.Entry == nil {
		return ""
	}
	root := g.renderVertex(g.Entry, "", make(map[*Vertex]bool, len(g.Vertices)))
	return root.String()
}

func (g *Graph) renderVertex(v *Vertex, viaLabel string, visited map[*Vertex]bool) *tree.Tree {
	node := tree.NewTree(tree.NodeString(edgeLabel(viaLabel, v)))
	if visited[v] {
		return node
	}
	visited[v] = true
	for _, e := range v.Out {
		graft(node, g.renderVertex(e.To, e.Label.String(), visited))
	}
	return node
}

// graft re-parents child under parent, since a treedrawer node is owned
// by a single parent (grounded on the pumped-fn-pumped-go graph debug
// extension's addTreeAsChild).
func graft(parent *tree.Tree, child *tree.Tree) {
	grafted := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		graft(grafted, grandchild)
	}
}

func edgeLabel(viaLabel string, v *Vertex) string {
	if viaLabel == "" || viaLabel == Unconditional.String() {
		return vertexLabel(v)
	}
	return viaLabel + " -> " + vertexLabel(v)
}

func vertexLabel(v *Vertex) string {
	switch {
	case v == nil:
		return "<nil>"
	case v.Node == nil:
		return vertexSinkLabel(v)
	default:
		return v.Node.String()
	}
}

// vertexSinkLabel names newGraph's two pre-allocated nil-node vertices;
// every other vertex carries a real AST node.
func vertexSinkLabel(v *Vertex) string {
	switch v.ID {
	case 0:
		return "exit"
	case 1:
		return "exception-exit"
	default:
		return "empty"
	}
}
