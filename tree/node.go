package tree

// Node is one accepted reasoning step at a specific position in a chain.
//
// ID is assigned at creation and immutable. Depth is the distance from the
// root (the root has depth 0). ParentID is empty for the root; every other
// node has exactly one parent. Children preserves creation order.
//
// Score semantics depend on the strategy that owns the node: Beam Search
// stores the cumulative path score, MCTS the running mean of simulated
// rewards. Visits is only meaningful for MCTS nodes and stays 0 for nodes
// never simulated through. StrategyTag records the owning strategy so that
// differently scored nodes are not silently mixed into the same statistics.
type Node struct {
	ID          string   `json:"id"`
	Thought     string   `json:"thought"`
	Depth       int      `json:"depth"`
	ParentID    string   `json:"parentId,omitempty"`
	Children    []string `json:"children"`
	Score       float64  `json:"score"`
	Visits      int      `json:"visits"`
	StrategyTag string   `json:"strategyTag"`
	Terminal    bool     `json:"isTerminal"`
}

// IsRoot reports whether the node is the tree root.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }
