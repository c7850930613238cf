package tree

// Stats summarizes a reasoning tree. AverageScore is the mean score over all
// nodes; BranchingFactor the mean number of children over non-leaf nodes.
// StrategyMetrics breaks the same aggregates down per strategy tag so that
// nodes with different scoring semantics stay separable.
type Stats struct {
	TotalNodes      int                        `json:"totalNodes"`
	AverageScore    float64                    `json:"averageScore"`
	MaxDepth        int                        `json:"maxDepth"`
	BranchingFactor float64                    `json:"branchingFactor"`
	StrategyMetrics map[string]StrategyMetrics `json:"strategyMetrics"`
}

// StrategyMetrics aggregates the nodes owned by one strategy tag.
type StrategyMetrics struct {
	Nodes         int     `json:"nodes"`
	AverageScore  float64 `json:"averageScore"`
	TotalVisits   int     `json:"totalVisits"`
	TerminalNodes int     `json:"terminalNodes"`
}
