// Package oracle holds the small per-variant normalization rules needed to
// reproduce another implementation's tie-break order bit-for-bit, kept out
// of the kernels themselves so the core package's ordering convention
// (ascending agent id wins ties) never has to special-case a foreign tool.
package oracle

import "fmt"

// InvertAgentForAutomerge remaps a 0-based replica index onto the agent id
// space RGA's kernel needs to reproduce Automerge's actor-id ordering.
// Automerge breaks ties on descending actor id; this package's RGA kernel
// always breaks ties on ascending agent id, so feeding it agent ids in
// reverse rank order ("255 - i" rendered as two hex digits) makes the two
// orderings coincide without the kernel knowing Automerge exists.
func InvertAgentForAutomerge(i int) (string, error) {
	if i < 0 || i > 255 {
		return "", fmt.Errorf("oracle: replica index %d out of range for agent inversion (want 0-255)", i)
	}
	return fmt.Sprintf("%02x", 255-i), nil
}

// NormalizeForSync9 is the identity mapping: Sync9's split-marker kernel
// already ties-break on agent id directly, so no remapping is needed for
// interop. It exists so callers that loop over all five variants can treat
// agent-id normalization uniformly.
func NormalizeForSync9(agent string) string {
	return agent
}

// ForFugue is the identity mapping for the tree-backed variant; Fugue's
// sibling order is resolved by tree structure (left/right child slots) and,
// where siblings still tie, by comparing agent ids directly in the kernel,
// so no normalization applies.
func ForFugue(agent string) string {
	return agent
}
