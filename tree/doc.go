// Package tree implements the reasoning tree: the single source of truth for
// node structure, scores and visit statistics shared by all search strategies.
//
// The tree grows monotonically. Nodes are created, never deleted; branches
// pruned from a strategy's active frontier remain in the tree so that callers
// can inspect abandoned alternatives and so that aggregate statistics stay
// consistent across a session. Scores and visits are only mutated through
// store operations invoked by the strategy owning a node's scoring semantics;
// the store itself never invents values.
package tree
