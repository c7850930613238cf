package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/reasonmesh/internal/util"
	"github.com/hupe1980/reasonmesh/logging"
	"github.com/hupe1980/reasonmesh/reasoner"
	"github.com/hupe1980/reasonmesh/strategy"
	"github.com/hupe1980/reasonmesh/strategy/external"
)

// ReasonerToolName is the routing name of the reasoning step tool.
const ReasonerToolName = "reasoner"

// StatsToolName is the routing name of the statistics tool.
const StatsToolName = "reasoner_stats"

// ReasonerToolOptions configure the reasoner tool adapter.
type ReasonerToolOptions struct {
	Logger logging.Logger
}

// ReasonerTool adapts the Reasoner to the Tool interface. It is a thin
// coercion layer: loosely typed JSON arguments are converted and bounded
// here, everything semantic happens in the reasoner and its strategies.
type ReasonerTool struct {
	rsn    *reasoner.Reasoner
	logger logging.Logger
}

// NewReasonerTool constructs the reasoning step tool.
func NewReasonerTool(rsn *reasoner.Reasoner, optFns ...func(o *ReasonerToolOptions)) *ReasonerTool {
	opts := ReasonerToolOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ReasonerTool{rsn: rsn, logger: opts.Logger}
}

// Name implements Tool.
func (t *ReasonerTool) Name() string { return ReasonerToolName }

// Description implements Tool.
func (t *ReasonerTool) Description() string {
	return "Process one reasoning step with a tree search strategy (beam search or MCTS) and return the decision plus tree statistics"
}

// Parameters implements Tool.
func (t *ReasonerTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"thought":           map[string]interface{}{"type": "string", "description": "The reasoning step to process"},
			"thoughtNumber":     map[string]interface{}{"type": "integer", "description": "Position of this thought in the chain, starting at 1"},
			"totalThoughts":     map[string]interface{}{"type": "integer", "description": "Expected total number of thoughts"},
			"nextThoughtNeeded": map[string]interface{}{"type": "boolean", "description": "Whether another thought will follow"},
			"strategyType":      map[string]interface{}{"type": "string", "description": "Reasoning strategy: beam_search, mcts or external"},
			"beamWidth":         map[string]interface{}{"type": "integer", "description": "Number of beam paths to keep (1-10, default 3)"},
			"numSimulations":    map[string]interface{}{"type": "integer", "description": "MCTS simulations per step (1-150, default 50)"},
			"sessionId":         map[string]interface{}{"type": "string", "description": "Session identifier; omit to use the default session"},
		},
		"required": []string{"thought", "thoughtNumber", "totalThoughts", "nextThoughtNeeded"},
	}
}

// Call implements Tool. External model failures are expected and routine:
// they are reported as a structured failure result, never as a raw error.
func (t *ReasonerTool) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		t.logger.Warn("tool.call.validation_failed", "tool", t.Name(), "error", err.Error())
		return nil, &ToolError{
			Tool:    t.Name(),
			Message: err.Error(),
			Code:    CodeValidation,
			Details: err,
		}
	}

	req, sessionID, err := coerceRequest(args)
	if err != nil {
		t.logger.Warn("tool.call.validation_failed", "tool", t.Name(), "error", err.Error())
		return nil, &ToolError{
			Tool:    t.Name(),
			Message: err.Error(),
			Code:    CodeValidation,
			Details: err,
		}
	}

	start := time.Now()
	resp, err := t.rsn.ProcessThought(ctx, sessionID, req)
	logging.LogToolCall(t.logger, t.Name(), time.Since(start), err)
	if err != nil {
		var exErr *external.Error
		if errors.As(err, &exErr) {
			t.logger.Error("tool.call.external_failed", "tool", t.Name(), "code", exErr.Code)
			return map[string]interface{}{
				"status": "failed",
				"error": map[string]interface{}{
					"code":    exErr.Code,
					"message": exErr.Message,
				},
			}, nil
		}

		var verr *util.ValidationError
		if errors.As(err, &verr) {
			return nil, &ToolError{
				Tool:    t.Name(),
				Message: fmt.Sprintf("parameter validation failed: %v", verr),
				Code:    CodeValidation,
				Details: verr,
			}
		}

		return nil, &ToolError{
			Tool:    t.Name(),
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	return resp, nil
}

// coerceRequest converts loosely typed JSON arguments into a reasoner
// request. Numbers arrive as float64 from JSON decoding and inputs may come
// from hosts that stringify everything, so conversion is deliberately loose;
// range checks stay strict.
func coerceRequest(args map[string]interface{}) (reasoner.Request, string, error) {
	var req reasoner.Request

	thought, ok := util.ToString(args["thought"])
	if !ok || thought == "" {
		return req, "", &util.ValidationError{Field: "thought", Value: args["thought"], Message: "thought must be a non-empty string"}
	}
	req.Thought = thought

	number, ok := util.ToInt(args["thoughtNumber"])
	if !ok {
		return req, "", &util.ValidationError{Field: "thoughtNumber", Value: args["thoughtNumber"], Message: "thoughtNumber must be an integer"}
	}
	req.ThoughtNumber = number

	total, ok := util.ToInt(args["totalThoughts"])
	if !ok {
		return req, "", &util.ValidationError{Field: "totalThoughts", Value: args["totalThoughts"], Message: "totalThoughts must be an integer"}
	}
	req.TotalThoughts = total

	next, ok := util.ToBool(args["nextThoughtNeeded"])
	if !ok {
		return req, "", &util.ValidationError{Field: "nextThoughtNeeded", Value: args["nextThoughtNeeded"], Message: "nextThoughtNeeded must be a boolean"}
	}
	req.NextThoughtNeeded = next

	if v, present := args["strategyType"]; present {
		s, ok := util.ToString(v)
		if !ok {
			return req, "", &util.ValidationError{Field: "strategyType", Value: v, Message: "strategyType must be a string"}
		}
		req.StrategyType = s
	}

	if v, present := args["beamWidth"]; present {
		bw, ok := util.ToInt(v)
		if !ok {
			return req, "", &util.ValidationError{Field: "beamWidth", Value: v, Message: "beamWidth must be an integer"}
		}
		req.BeamWidth = util.ClampInt(bw, strategy.MinBeamWidth, strategy.MaxBeamWidth)
	}

	if v, present := args["numSimulations"]; present {
		sims, ok := util.ToInt(v)
		if !ok {
			return req, "", &util.ValidationError{Field: "numSimulations", Value: v, Message: "numSimulations must be an integer"}
		}
		req.NumSimulations = util.ClampInt(sims, strategy.MinSimulations, strategy.MaxSimulations)
	}

	sessionID, _ := util.ToString(args["sessionId"])
	return req, sessionID, nil
}

// StatsTool exposes a session's aggregate tree statistics.
type StatsTool struct {
	rsn *reasoner.Reasoner
}

// NewStatsTool constructs the statistics tool.
func NewStatsTool(rsn *reasoner.Reasoner) *StatsTool {
	return &StatsTool{rsn: rsn}
}

// Name implements Tool.
func (t *StatsTool) Name() string { return StatsToolName }

// Description implements Tool.
func (t *StatsTool) Description() string {
	return "Return aggregate statistics of the reasoning tree (node count, average score, depth, branching, per-strategy metrics)"
}

// Parameters implements Tool.
func (t *StatsTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"sessionId": map[string]interface{}{"type": "string", "description": "Session identifier; omit to use the default session"},
		},
	}
}

// Call implements Tool.
func (t *StatsTool) Call(_ context.Context, args map[string]interface{}) (interface{}, error) {
	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		return nil, &ToolError{
			Tool:    t.Name(),
			Message: err.Error(),
			Code:    CodeValidation,
			Details: err,
		}
	}
	sessionID, _ := util.ToString(args["sessionId"])
	return t.rsn.GetStats(sessionID), nil
}
