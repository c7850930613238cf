// Package external implements the strategy contract by delegating the
// thought to a hosted language model instead of searching the tree. Every
// step produces a single terminal node with score 1; the model's completion
// rides along on the decision. Network and timeout failures are classified
// so that the boundary can report them as structured results instead of
// crashing.
package external

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/tree"
)

// DefaultTimeout bounds one completion call.
const DefaultTimeout = 10 * time.Minute

// Completer is the single-call surface a model provider must expose.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Options configure the external strategy.
type Options struct {
	// Logger receives call diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Timeout bounds each completion call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Model labels the provider in call diagnostics. Defaults to "external".
	Model string
}

// Strategy delegates reasoning to a Completer. It keeps the chain linear:
// each accepted thought becomes a terminal child of the previous one.
type Strategy struct {
	store     *tree.Store
	completer Completer
	logger    logging.Logger
	timeout   time.Duration
	model     string
	currentID string
}

// New creates an external strategy bound to the given tree and provider.
func New(store *tree.Store, completer Completer, optFns ...func(o *Options)) *Strategy {
	opts := Options{
		Logger:  logging.NoOpLogger{},
		Timeout: DefaultTimeout,
		Model:   "external",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Strategy{
		store:     store,
		completer: completer,
		logger:    opts.Logger,
		timeout:   opts.Timeout,
		model:     opts.Model,
	}
}

// Type implements strategy.Strategy.
func (s *Strategy) Type() strategy.Type { return strategy.TypeExternal }

// Step implements strategy.Strategy. The completion call runs before any
// tree mutation, so a failed call leaves the tree untouched.
func (s *Strategy) Step(ctx context.Context, req strategy.Request) (strategy.Decision, error) {
	prompt, err := s.buildPrompt(req)
	if err != nil {
		return strategy.Decision{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	completion, err := s.completer.Complete(callCtx, prompt)
	logging.LogLLMCall(s.logger, s.model, time.Since(start), err)
	if err != nil {
		classified := Classify(err)
		s.logger.Error("external.complete failed", "code", classified.Code, "error", err)
		return strategy.Decision{}, classified
	}

	id, err := s.store.CreateNode(s.currentID, req.Thought, string(s.Type()))
	if err != nil {
		return strategy.Decision{}, err
	}
	if err := s.store.UpdateScore(id, 1.0); err != nil {
		return strategy.Decision{}, err
	}
	if err := s.store.MarkTerminal(id); err != nil {
		return strategy.Decision{}, err
	}
	s.currentID = id

	rc, err := strategy.BuildContext(s.store, id, 1.0)
	if err != nil {
		return strategy.Decision{}, err
	}
	return strategy.Decision{
		NodeID:       id,
		Score:        1.0,
		StrategyUsed: s.Type(),
		Context:      rc,
		Completion:   completion,
	}, nil
}

// buildPrompt renders the chain so far plus the new thought for the model.
func (s *Strategy) buildPrompt(req strategy.Request) (string, error) {
	var b strings.Builder
	if s.currentID != "" {
		path, err := s.store.PathToRoot(s.currentID)
		if err != nil {
			return "", err
		}
		b.WriteString("Reasoning so far:\n")
		for i, n := range path {
			fmt.Fprintf(&b, "%d. %s\n", i+1, n.Thought)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Current thought (%d of %d): %s\n\n", req.ThoughtNumber, req.TotalThoughts, req.Thought)
	if req.NextThoughtNeeded {
		b.WriteString("Evaluate this reasoning step and suggest how to continue.")
	} else {
		b.WriteString("Evaluate this concluding step and summarize the reasoning chain.")
	}
	return b.String(), nil
}
