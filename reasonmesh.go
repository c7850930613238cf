// Package reasonmesh provides a high-level façade over the reasoning engine
// (tree store, search strategies, reasoner & logging) enabling rapid
// construction of reasoning tools. Most applications interact with this
// package by:
//  1. Creating a ReasonMesh via New() (optionally overriding the evaluator,
//     the model completer or the logger)
//  2. Submitting reasoning steps via ProcessThought
//  3. Reading aggregate tree statistics via Stats
//
// The façade delegates orchestration to reasoner.Reasoner while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; MCP deployments typically expose the same
// reasoner through the server package instead.
package reasonmesh

import (
	"context"

	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/reasoner"
	"github.com/hupe1980/reasonmesh/scoring"
	"github.com/hupe1980/reasonmesh/session"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/strategy/external"
	"github.com/hupe1980/reasonmesh/tree"
)

// Options configures the ReasonMesh instance.
type Options struct {
	// SessionStore owns the per-session trees (defaults to in-memory).
	SessionStore *session.InMemoryStore

	// Evaluator scores thoughts for the search strategies.
	Evaluator scoring.Evaluator

	// Completer backs the external strategy; nil disables it.
	Completer external.Completer

	// DefaultStrategy is used when a step names no strategy.
	DefaultStrategy strategy.Type

	// MaxParallelSimulations bounds concurrency within one MCTS macro-step.
	MaxParallelSimulations int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ReasonMesh is the high-level façade aggregating the reasoner and its services.
type ReasonMesh struct {
	opts Options
	rsn  *reasoner.Reasoner
}

// New creates a new ReasonMesh instance with optional overrides. Any unset
// service is initialized with an in-memory or heuristic default.
func New(optFns ...func(o *Options)) *ReasonMesh {
	opts := Options{
		SessionStore:           session.NewInMemoryStore(),
		Evaluator:              scoring.NewHeuristic(),
		DefaultStrategy:        strategy.TypeBeamSearch,
		MaxParallelSimulations: 1,
		Logger:                 logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	rsn := reasoner.New(func(o *reasoner.Options) {
		o.SessionStore = opts.SessionStore
		o.Evaluator = opts.Evaluator
		o.Completer = opts.Completer
		o.DefaultStrategy = opts.DefaultStrategy
		o.MaxParallelSimulations = opts.MaxParallelSimulations
		o.Logger = opts.Logger
	})

	return &ReasonMesh{opts: opts, rsn: rsn}
}

// Reasoner exposes the underlying reasoner for wiring into tools and servers.
func (m *ReasonMesh) Reasoner() *reasoner.Reasoner { return m.rsn }

// ProcessThought runs one reasoning step in the default session.
func (m *ReasonMesh) ProcessThought(ctx context.Context, req reasoner.Request) (*reasoner.Response, error) {
	return m.rsn.ProcessThought(ctx, reasoner.DefaultSessionID, req)
}

// ProcessThoughtInSession runs one reasoning step in the named session.
func (m *ReasonMesh) ProcessThoughtInSession(ctx context.Context, sessionID string, req reasoner.Request) (*reasoner.Response, error) {
	return m.rsn.ProcessThought(ctx, sessionID, req)
}

// Stats returns the default session's aggregate tree statistics.
func (m *ReasonMesh) Stats() tree.Stats {
	return m.rsn.GetStats(reasoner.DefaultSessionID)
}

// StatsForSession returns the named session's aggregate tree statistics.
func (m *ReasonMesh) StatsForSession(sessionID string) tree.Stats {
	return m.rsn.GetStats(sessionID)
}
