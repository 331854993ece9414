// Package engine orchestrates one batch: it walks a graph's execution order
// sequentially, dispatches asset actions to their registered executors, and
// passes game actions through as typed markers for the downstream
// world-state interpreter. One failing action never blocks the rest of the
// batch.
package engine

import (
	"context"
	"time"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/cost"
	"github.com/vk/scriptforge/internal/ctxlog"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/graph"
	"github.com/vk/scriptforge/internal/registry"
)

// GameMarker names a game action for the external interpreter. The engine
// does not execute game semantics itself; it only emits the marker.
type GameMarker struct {
	Type   action.Type   `json:"type"`
	Action action.Action `json:"action"`
}

// ExecutedAction records one node's execution in the batch report.
type ExecutedAction struct {
	ID   string      `json:"id"`
	Type action.Type `json:"type"`
	// Kind is "asset", "game", or "reason".
	Kind   string      `json:"kind"`
	Marker *GameMarker `json:"marker,omitempty"`
}

// BatchError attributes one execution failure to its action.
type BatchError struct {
	ActionID string      `json:"action_id"`
	Type     action.Type `json:"type"`
	Message  string      `json:"message"`
	// Retryable reports whether a later batch might succeed for this
	// action without changes to the script.
	Retryable bool `json:"retryable"`
}

// BatchResult is the report for one engine run. A batch is successful only
// when no action failed; a failed batch still carries every asset that did
// generate, so callers can proceed with partial results.
type BatchResult struct {
	Success         bool                             `json:"success"`
	AssetsGenerated []executor.AssetResult           `json:"assets_generated"`
	ActionsExecuted []ExecutedAction                 `json:"actions_executed"`
	Errors          []BatchError                     `json:"errors"`
	TotalCost       float64                          `json:"total_cost"`
	CostBreakdown   map[string]map[string]cost.Entry `json:"cost_breakdown"`
	ExecutionTimeMs int64                            `json:"execution_time_ms"`
}

// Engine executes parsed graphs. It is safe to reuse across batches; all
// per-batch state lives in the execution context and local status map.
type Engine struct {
	registry *registry.Registry
	execCtx  *executor.Context
}

// New returns an engine dispatching to the given registry with the shared
// execution context.
func New(reg *registry.Registry, execCtx *executor.Context) *Engine {
	return &Engine{registry: reg, execCtx: execCtx}
}

// Execute walks the graph's execution order once, strictly sequentially.
// Errors are collected per node and never abort the walk.
func (e *Engine) Execute(ctx context.Context, g *graph.Graph) *BatchResult {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	result := &BatchResult{
		AssetsGenerated: []executor.AssetResult{},
		ActionsExecuted: []ExecutedAction{},
		Errors:          []BatchError{},
	}
	statuses := make(map[string]graph.Status, len(g.Nodes))
	for id, node := range g.Nodes {
		statuses[id] = node.Status
	}

	logger.Info("Starting batch execution.", "nodes", len(g.ExecutionOrder))
	for _, id := range g.ExecutionOrder {
		node := g.Nodes[id]
		statuses[id] = graph.StatusExecuting

		switch {
		case node.Action.Type == action.TypeReason:
			// Annotation only: executed, no side effect.
			statuses[id] = graph.StatusCompleted
			result.ActionsExecuted = append(result.ActionsExecuted, ExecutedAction{
				ID: id, Type: node.Action.Type, Kind: "reason",
			})

		case node.Action.Type.IsAsset():
			if err := e.executeAsset(ctx, node, result); err != nil {
				logger.Error("Asset action failed.", "action", id, "error", err)
				statuses[id] = graph.StatusFailed
				result.Errors = append(result.Errors, BatchError{
					ActionID:  id,
					Type:      node.Action.Type,
					Message:   err.Error(),
					Retryable: !executor.IsPermanent(err),
				})
				continue
			}
			statuses[id] = graph.StatusCompleted

		default:
			// Game actions need live game state and player input; emit a
			// typed marker for the downstream interpreter instead.
			statuses[id] = graph.StatusCompleted
			result.ActionsExecuted = append(result.ActionsExecuted, ExecutedAction{
				ID:   id,
				Type: node.Action.Type,
				Kind: "game",
				Marker: &GameMarker{
					Type:   node.Action.Type,
					Action: node.Action,
				},
			})
		}
	}

	result.Success = len(result.Errors) == 0
	result.TotalCost = e.execCtx.Costs.Total()
	result.CostBreakdown = e.execCtx.Costs.Breakdown()
	result.ExecutionTimeMs = time.Since(start).Milliseconds()

	logger.Info("Batch execution finished.",
		"success", result.Success,
		"assets", len(result.AssetsGenerated),
		"errors", len(result.Errors),
		"total_cost", result.TotalCost)
	return result
}

// executeAsset dispatches one asset action to its registered executor and
// records the tagged result.
func (e *Engine) executeAsset(ctx context.Context, node *graph.Node, result *BatchResult) error {
	logger := ctxlog.FromContext(ctx).With("action", node.ID)

	exec, ok := e.registry.Get(string(node.Action.Type))
	if !ok {
		return executor.Permanent(errNoExecutor(node.Action.Type))
	}

	logger.Debug("Dispatching asset action.")
	res, err := exec.Execute(ctx, &node.Action, e.execCtx)
	if err != nil {
		return err
	}

	// Cutscene results carry their assembled definition object so the
	// front end can play them without another resolution pass.
	if res.Definition != nil {
		logger.Debug("Attached assembled cutscene definition.")
	}

	result.AssetsGenerated = append(result.AssetsGenerated, *res)
	result.ActionsExecuted = append(result.ActionsExecuted, ExecutedAction{
		ID: node.ID, Type: node.Action.Type, Kind: "asset",
	})
	return nil
}
