// Package verify implements the change verifier of §4.10: a
// snapshot-and-audit mechanism enforcing the contract "passes must
// report what they change."
package verify

import (
	"encoding/binary"
	"hash"

	"github.com/minio/highwayhash"

	"github.com/viant/ecmaopt/ast"
)

// hashKey is a fixed 32-byte key, same idiom as the teacher's own
// content-hash helper (inspector/graph/hash.go): this is a structural
// fingerprint, not a security boundary, so a literal key is fine.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Snapshot records, for every scope root reachable from an AST root at
// the moment it was taken, its change stamp, child count, and a
// structural content digest (§4.10 "Snapshot", plus SPEC_FULL.md's
// digest addition so same-child-count reorderings are also caught).
type Snapshot struct {
	roots      map[*ast.Node]bool
	stamp      map[*ast.Node]uint64
	count      map[*ast.Node]int
	digest     map[*ast.Node]uint64
	reachable  map[*ast.Node]bool // every node visited, scope root or not
}

// TakeSnapshot walks root and captures every scope root's current
// bookkeeping fields, plus reachability for every node (scope root or
// not — needed to audit a deletion report against any node kind, since
// ast.Node.Detach reports deletions of statement and function nodes
// alike, not just scope roots).
func TakeSnapshot(root *ast.Node) *Snapshot {
	s := &Snapshot{
		roots:     map[*ast.Node]bool{},
		stamp:     map[*ast.Node]uint64{},
		count:     map[*ast.Node]int{},
		digest:    map[*ast.Node]uint64{},
		reachable: map[*ast.Node]bool{},
	}
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		s.reachable[n] = true
		if n.Kind.IsScopeRoot() {
			s.roots[n] = true
			s.stamp[n] = n.ChangeStamp
			s.count[n] = len(n.Children)
			s.digest[n] = structuralDigest(n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return s
}

// Reachable reports whether n was visited while taking this snapshot.
func (s *Snapshot) Reachable(n *ast.Node) bool { return s.reachable[n] }

func structuralDigest(n *ast.Node) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed, correctly-sized literal; New64 only ever
		// errors on key length, so this is unreachable in practice.
		panic(err)
	}
	encodeStructure(h, n)
	return h.Sum64()
}

func encodeStructure(h hash.Hash, n *ast.Node) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n.Kind))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(n.Name))
	for _, c := range n.Children {
		if c.Kind.IsScopeRoot() {
			// a nested scope root's own contents are covered by its own
			// snapshot entry
			binary.LittleEndian.PutUint64(buf[:], uint64(c.Kind))
			_, _ = h.Write(buf[:])
			_, _ = h.Write([]byte(c.Name))
			continue
		}
		encodeStructure(h, c)
	}
}
