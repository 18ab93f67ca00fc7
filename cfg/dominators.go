package cfg

// buildDominators computes immediate dominators over the forward graph
// from Entry using the standard iterative (Cooper/Harvey/Kennedy)
// algorithm, processing vertices in reverse-postorder until the idom
// map stops changing. Cheap and deterministic for the modest vertex
// counts a single function body produces (§4.2 "Dominates").
func (g *Graph) buildDominators() {
	if g.domBuilt {
		return
	}
	g.domBuilt = true
	if g.Entry == nil {
		return
	}

	rpo := g.ReversePostorder()
	order := make(map[*Vertex]int, len(rpo))
	for i, v := range rpo {
		order[v] = i
	}

	idom := map[*Vertex]*Vertex{g.Entry: g.Entry}
	changed := true
	for changed {
		changed = false
		for _, v := range rpo {
			if v == g.Entry {
				continue
			}
			var newIdom *Vertex
			for _, e := range v.In {
				pred := e.From
				if _, ok := idom[pred]; !ok {
					continue
				}
				if newIdom == nil {
					newIdom = pred
					continue
				}
				newIdom = intersect(idom, order, newIdom, pred)
			}
			if newIdom == nil {
				continue
			}
			if idom[v] != newIdom {
				idom[v] = newIdom
				changed = true
			}
		}
	}
	g.idom = idom
}

func intersect(idom map[*Vertex]*Vertex, order map[*Vertex]int, a, b *Vertex) *Vertex {
	for a != b {
		for order[a] > order[b] {
			a = idom[a]
		}
		for order[b] > order[a] {
			b = idom[b]
		}
	}
	return a
}

// Dominates reports whether a dominates b: every path from Entry to b
// passes through a. Used by reference.WellDefined to decide whether a
// read is guaranteed to observe a given write (§4.5).
func (g *Graph) Dominates(a, b *Vertex) bool {
	g.buildDominators()
	if a == b {
		return true
	}
	cur, ok := g.idom[b]
	if !ok {
		return false
	}
	for {
		if cur == a {
			return true
		}
		parent, ok := g.idom[cur]
		if !ok || parent == cur {
			return false
		}
		cur = parent
	}
}
