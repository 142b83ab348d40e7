// Package binder turns node descriptors into constructed dsp nodes.
//
// Each node type has exactly one binding rule, registered in a single table
// indexed by NodeType. A rule declares the kinds of its positional slots;
// Bind checks arity and kinds against that declaration before anything is
// constructed, so a failed bind never yields a partial node.
//
// Alongside the node, binding extracts the node's reference list: the
// ordered upstream names the graph builder wires into input ports. A
// reference given where a literal number is expected is captured in the
// list and the node is built immediately with the type's neutral default
// from Defaults.
package binder
