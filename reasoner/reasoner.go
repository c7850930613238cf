package reasoner

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/reasonmesh/internal/util"
	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/scoring"
	"github.com/hupe1980/reasonmesh/session"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/strategy/beam"
	"github.com/hupe1980/reasonmesh/strategy/external"
	"github.com/hupe1980/reasonmesh/strategy/mcts"
	"github.com/hupe1980/reasonmesh/tree"
)

// DefaultSessionID is used when the caller does not maintain its own
// session identifiers.
const DefaultSessionID = "default"

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// SessionStore owns the per-session trees and strategy instances.
	SessionStore *session.InMemoryStore
	// Evaluator scores thoughts for the search strategies.
	Evaluator scoring.Evaluator
	// Completer backs the external strategy. Leaving it nil disables the
	// external strategy.
	Completer external.Completer
	// DefaultStrategy is used when a request names no strategy.
	DefaultStrategy strategy.Type
	// MaxParallelSimulations bounds concurrency within one MCTS macro-step.
	MaxParallelSimulations int
	// Logging services.
	Logger logging.Logger
}

// Request is one reasoning step as submitted by the caller.
type Request struct {
	Thought           string `json:"thought"`
	ThoughtNumber     int    `json:"thoughtNumber"`
	TotalThoughts     int    `json:"totalThoughts"`
	NextThoughtNeeded bool   `json:"nextThoughtNeeded"`
	StrategyType      string `json:"strategyType,omitempty"`
	BeamWidth         int    `json:"beamWidth,omitempty"`
	NumSimulations    int    `json:"numSimulations,omitempty"`
}

// Response combines the strategy's decision with the session's aggregate
// tree statistics.
type Response struct {
	strategy.Decision
	Stats tree.Stats `json:"stats"`
}

// Reasoner orchestrates reasoning steps: it validates the request, resolves
// the strategy instance bound to the session's tree, delegates the step and
// reads the aggregate statistics back. Public methods are safe for
// concurrent use; steps within one session run strictly sequentially.
type Reasoner struct {
	sessions        *session.InMemoryStore
	evaluator       scoring.Evaluator
	completer       external.Completer
	defaultStrategy strategy.Type
	maxParallel     int
	logger          logging.Logger
}

// New constructs a Reasoner with optional overrides.
func New(optFns ...func(o *Options)) *Reasoner {
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

	return &Reasoner{
		sessions:        opts.SessionStore,
		evaluator:       opts.Evaluator,
		completer:       opts.Completer,
		defaultStrategy: opts.DefaultStrategy,
		maxParallel:     opts.MaxParallelSimulations,
		logger:          opts.Logger,
	}
}

// ProcessThought runs one reasoning step in the given session and returns
// the decision together with the session's tree statistics.
func (r *Reasoner) ProcessThought(ctx context.Context, sessionID string, req Request) (*Response, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	// Validation happens before any session or tree mutation.
	strategyType, err := r.validate(req)
	if err != nil {
		return nil, err
	}

	sess := r.sessions.Get(sessionID)

	var dec strategy.Decision
	start := time.Now()
	err = sess.Serialize(func() error {
		st, err := r.resolve(sess, strategyType)
		if err != nil {
			return err
		}
		var stepErr error
		dec, stepErr = st.Step(ctx, strategy.Request{
			Thought:           req.Thought,
			ThoughtNumber:     req.ThoughtNumber,
			TotalThoughts:     req.TotalThoughts,
			NextThoughtNeeded: req.NextThoughtNeeded,
			BeamWidth:         req.BeamWidth,
			NumSimulations:    req.NumSimulations,
		})
		return stepErr
	})
	if err != nil {
		return nil, err
	}

	logging.LogStrategyStep(r.logger, sessionID, string(dec.StrategyUsed), dec.NodeID,
		len(dec.Context.CurrentPath)-1, dec.Score, time.Since(start))

	return &Response{Decision: dec, Stats: sess.Tree.Stats()}, nil
}

// GetStats returns the aggregate statistics of a session's tree without
// processing a thought.
func (r *Reasoner) GetStats(sessionID string) tree.Stats {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	return r.sessions.Get(sessionID).Tree.Stats()
}

// validate checks the request against the input contract. It returns the
// resolved strategy type on success and a ValidationError otherwise.
func (r *Reasoner) validate(req Request) (strategy.Type, error) {
	if req.Thought == "" {
		return "", &util.ValidationError{Field: "thought", Value: req.Thought, Message: "thought must not be empty"}
	}
	if req.ThoughtNumber < 1 {
		return "", &util.ValidationError{Field: "thoughtNumber", Value: req.ThoughtNumber, Message: "thoughtNumber must be >= 1"}
	}
	if req.TotalThoughts < 1 {
		return "", &util.ValidationError{Field: "totalThoughts", Value: req.TotalThoughts, Message: "totalThoughts must be >= 1"}
	}

	if req.StrategyType == "" {
		return r.defaultStrategy, nil
	}
	t, err := strategy.ParseType(req.StrategyType)
	if err != nil {
		return "", &util.ValidationError{Field: "strategyType", Value: req.StrategyType, Message: err.Error()}
	}
	return t, nil
}

// resolve returns the session's strategy instance for the type, creating
// and binding it on first use. The strategy set is closed: adding a new
// strategy means adding a case here together with its implementation.
func (r *Reasoner) resolve(sess *session.Session, t strategy.Type) (strategy.Strategy, error) {
	if st, ok := sess.Strategy(t); ok {
		return st, nil
	}

	var st strategy.Strategy
	switch t {
	case strategy.TypeBeamSearch:
		st = beam.New(sess.Tree, func(o *beam.Options) {
			o.Evaluator = r.evaluator
			o.Logger = r.logger
		})
	case strategy.TypeMCTS:
		st = mcts.New(sess.Tree, func(o *mcts.Options) {
			o.Evaluator = r.evaluator
			o.Logger = r.logger
			o.MaxParallel = r.maxParallel
		})
	case strategy.TypeExternal:
		if r.completer == nil {
			return nil, fmt.Errorf("external strategy requested but no completer is configured")
		}
		st = external.New(sess.Tree, r.completer, func(o *external.Options) {
			o.Logger = r.logger
		})
	default:
		return nil, fmt.Errorf("unsupported strategy type: %s", t)
	}

	sess.BindStrategy(st)
	return st, nil
}
