// Package strategy defines the contract every reasoning strategy satisfies:
// consume one step request plus access to the shared reasoning tree, mutate
// the tree according to the strategy's search algorithm, and return a
// decision (the node created or selected, its score, and assembled context
// for the next step).
//
// Concrete search strategies live in the subpackages beam, mcts and external.
// The set of strategies is closed: dispatch happens over Type in the reasoner
// factory, so adding a strategy means adding a Type constant and an
// implementation, not patching a lookup table at runtime.
package strategy
