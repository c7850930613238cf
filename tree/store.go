package tree

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store owns a single reasoning tree. It is safe for concurrent access; every
// operation is one short critical section so that backpropagating strategies
// can express their updates as an ordered sequence of per-node calls without
// ever observing a partially-updated node.
//
// Aggregate statistics (node count, score sum, max depth, branching factor,
// per-strategy metrics) are maintained incrementally on every mutation, so
// Stats is O(1) and cheap enough to call on every step.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*Node
	rootID string

	totalNodes int
	scoreSum   float64
	maxDepth   int
	childEdges int
	parents    int
	byTag      map[string]*tagAggregate
}

type tagAggregate struct {
	nodes    int
	scoreSum float64
	visitSum int
	terminal int
}

// NewStore creates an empty reasoning tree.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
		byTag: make(map[string]*tagAggregate),
	}
}

// CreateNode adds a node for the given thought under parentID and returns the
// new node's id. An empty parentID creates the root; creating a second root
// fails with ErrDuplicateRoot, an unknown parent with ErrInvalidParent.
func (s *Store) CreateNode(parentID, thought, strategyTag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *Node
	depth := 0
	if parentID == "" {
		if s.rootID != "" {
			return "", ErrDuplicateRoot
		}
	} else {
		var ok bool
		parent, ok = s.nodes[parentID]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidParent, parentID)
		}
		depth = parent.Depth + 1
	}

	node := &Node{
		ID:          uuid.NewString(),
		Thought:     thought,
		Depth:       depth,
		ParentID:    parentID,
		StrategyTag: strategyTag,
	}
	s.nodes[node.ID] = node
	if parent == nil {
		s.rootID = node.ID
	} else {
		if len(parent.Children) == 0 {
			s.parents++
		}
		parent.Children = append(parent.Children, node.ID)
		s.childEdges++
	}

	s.totalNodes++
	if depth > s.maxDepth {
		s.maxDepth = depth
	}
	s.tagAggregateLocked(strategyTag).nodes++

	return node.ID, nil
}

// GetNode returns a copy of the node with the given id.
func (s *Store) GetNode(id string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyNode(node), nil
}

// Root returns a copy of the root node and whether one exists yet.
func (s *Store) Root() (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rootID == "" {
		return Node{}, false
	}
	return copyNode(s.nodes[s.rootID]), true
}

// Children returns copies of the node's children in creation order.
func (s *Store) Children(id string) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	children := make([]Node, 0, len(node.Children))
	for _, childID := range node.Children {
		children = append(children, copyNode(s.nodes[childID]))
	}
	return children, nil
}

// PathToRoot returns the nodes from the root down to the given node, i.e. the
// current reasoning path ending at id.
func (s *Store) PathToRoot(id string) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pathToRootLocked(id)
}

func (s *Store) pathToRootLocked(id string) ([]Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var reversed []Node
	for node != nil {
		reversed = append(reversed, copyNode(node))
		if node.ParentID == "" {
			break
		}
		node = s.nodes[node.ParentID]
	}
	path := make([]Node, len(reversed))
	for i, n := range reversed {
		path[len(path)-1-i] = n
	}
	return path, nil
}

// SiblingPaths returns, for each ancestor of the node at each depth, the
// alternative branches not taken: every sibling of a path node, followed down
// its best-scoring descendants to a leaf. Branches are ordered by depth, then
// by the sibling's creation order.
func (s *Store) SiblingPaths(id string) ([][]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.pathToRootLocked(id)
	if err != nil {
		return nil, err
	}

	var branches [][]Node
	for _, step := range path {
		if step.ParentID == "" {
			continue
		}
		parent := s.nodes[step.ParentID]
		for _, siblingID := range parent.Children {
			if siblingID == step.ID {
				continue
			}
			branches = append(branches, s.bestDescentLocked(siblingID))
		}
	}
	return branches, nil
}

// bestDescentLocked walks from id down the highest-scoring child (earlier
// creation order wins ties) until a leaf, returning the visited nodes.
func (s *Store) bestDescentLocked(id string) []Node {
	var branch []Node
	node := s.nodes[id]
	for {
		branch = append(branch, copyNode(node))
		if len(node.Children) == 0 {
			return branch
		}
		best := s.nodes[node.Children[0]]
		for _, childID := range node.Children[1:] {
			if child := s.nodes[childID]; child.Score > best.Score {
				best = child
			}
		}
		node = best
	}
}

// UpdateScore replaces the node's score, keeping running aggregates in sync.
func (s *Store) UpdateScore(id string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delta := score - node.Score
	node.Score = score
	s.scoreSum += delta
	s.tagAggregateLocked(node.StrategyTag).scoreSum += delta
	return nil
}

// IncrementVisits adds one visit to the node.
func (s *Store) IncrementVisits(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	node.Visits++
	s.tagAggregateLocked(node.StrategyTag).visitSum++
	return nil
}

// RecordReward is the backpropagation primitive: it increments the node's
// visit count and folds the reward into the node's score as a running mean,
// atomically, so concurrent simulations never observe a visit count without
// its matching score update.
func (s *Store) RecordReward(id string, reward float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	node.Visits++
	old := node.Score
	node.Score += (reward - node.Score) / float64(node.Visits)
	delta := node.Score - old
	s.scoreSum += delta
	agg := s.tagAggregateLocked(node.StrategyTag)
	agg.scoreSum += delta
	agg.visitSum++
	return nil
}

// MarkTerminal flags the node as the end of a completed reasoning chain.
func (s *Store) MarkTerminal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !node.Terminal {
		node.Terminal = true
		s.tagAggregateLocked(node.StrategyTag).terminal++
	}
	return nil
}

// Stats returns the maintained aggregates. It never mutates the tree, so two
// calls with no intervening mutation yield identical results.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalNodes:      s.totalNodes,
		MaxDepth:        s.maxDepth,
		StrategyMetrics: make(map[string]StrategyMetrics, len(s.byTag)),
	}
	if s.totalNodes > 0 {
		stats.AverageScore = s.scoreSum / float64(s.totalNodes)
	}
	if s.parents > 0 {
		stats.BranchingFactor = float64(s.childEdges) / float64(s.parents)
	}
	for tag, agg := range s.byTag {
		m := StrategyMetrics{
			Nodes:         agg.nodes,
			TotalVisits:   agg.visitSum,
			TerminalNodes: agg.terminal,
		}
		if agg.nodes > 0 {
			m.AverageScore = agg.scoreSum / float64(agg.nodes)
		}
		stats.StrategyMetrics[tag] = m
	}
	return stats
}

func (s *Store) tagAggregateLocked(tag string) *tagAggregate {
	agg, ok := s.byTag[tag]
	if !ok {
		agg = &tagAggregate{}
		s.byTag[tag] = agg
	}
	return agg
}

func copyNode(n *Node) Node {
	clone := *n
	clone.Children = append([]string(nil), n.Children...)
	return clone
}
