// Package patch compiles a whole patch: it binds every node of every chain,
// wires references between chains, and reports feedback loops.
//
// A compile pass is all-or-nothing. Either every descriptor binds and every
// reference resolves, or Compile returns a *CompileError and no Result.
package patch

import (
	"github.com/roach88/patchbind/internal/param"
)

// Chain is a named, ordered list of node descriptors. Signal flows from
// each node to the next; references elsewhere in the patch name chains.
//
// Aux chains are only reachable by reference and are not sent to the output.
type Chain struct {
	Name  string
	Aux   bool
	Nodes []param.Descriptor
}

// Patch is the unit of compilation.
type Patch struct {
	Chains []Chain
}

// NodeCount returns the number of descriptors across all chains.
func (p Patch) NodeCount() int {
	n := 0
	for _, c := range p.Chains {
		n += len(c.Nodes)
	}
	return n
}

// CanonicalJSON returns the canonical encoding of the patch that Hash digests.
func (p Patch) CanonicalJSON() ([]byte, error) {
	chains := make([]any, len(p.Chains))
	for i, c := range p.Chains {
		chains[i] = map[string]any{
			"name":  c.Name,
			"aux":   c.Aux,
			"nodes": c.Nodes,
		}
	}
	return param.MarshalCanonical(map[string]any{"chains": chains})
}

// Hash returns the content hash of the patch.
//
// Chains are hashed in declaration order; reordering chains changes the hash.
func (p Patch) Hash() (string, error) {
	data, err := p.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return param.HashWithDomain(param.DomainPatch, data), nil
}
