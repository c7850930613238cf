// Package reasoner implements the orchestration layer for ReasonMesh.
//
// The Reasoner is the single entry point for reasoning steps: it validates
// incoming requests before any state changes, resolves the strategy instance
// bound to the target session's tree, delegates the step, and returns the
// decision together with the session's aggregate tree statistics.
//
// The strategy set is closed (beam search, MCTS, external model); requests
// naming no strategy fall back to a configurable default. Steps within one
// session are strictly serialized because each step's decision depends on
// the tree state the previous step produced.
package reasoner
