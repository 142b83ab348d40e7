// Package harness runs conformance scenarios against the patch compiler.
//
// A scenario names a patch file, the environment to compile it in, and a
// list of assertions about the outcome:
//
//	name: lfo-cutoff
//	description: an aux LFO modulates the lead filter
//	patch: ../patches/lfo.yaml
//	env:
//	  sample_rate: 48000
//	  samples:
//	    "808": { channels: 1, frames: 4 }
//	assertions:
//	  - type: compiles
//	  - type: edge
//	    from: lfo
//	    to: lead
//	    node: 1
//
// Rejected patches are not execution errors. Their compile errors are
// recorded on the Result as failures so that "rejects" assertions can
// match them.
//
// RunWithGolden snapshots the compiled topology as canonical JSON. The
// patch hash is left out of snapshots so that goldens survive changes to
// the hash domain.
package harness
