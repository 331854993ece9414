package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/cache"
	"github.com/vk/scriptforge/internal/cost"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/graph"
	"github.com/vk/scriptforge/internal/ratelimit"
	"github.com/vk/scriptforge/internal/registry"
	"github.com/vk/scriptforge/internal/store"
)

// scriptedExec returns canned results or errors per action ID, bypassing the
// shared pipeline so engine behavior is tested in isolation.
type scriptedExec struct {
	results map[string]*executor.AssetResult
	errs    map[string]error
	costs   *cost.Ledger
}

func (s *scriptedExec) Validate(*action.Action) error { return nil }

func (s *scriptedExec) EstimateCost(*action.Action) executor.CostEstimate {
	return executor.CostEstimate{}
}

func (s *scriptedExec) Execute(_ context.Context, a *action.Action, _ *executor.Context) (*executor.AssetResult, error) {
	if err, ok := s.errs[a.ID]; ok {
		return nil, err
	}
	res, ok := s.results[a.ID]
	if !ok {
		return nil, errors.New("unscripted action " + a.ID)
	}
	if s.costs != nil {
		s.costs.Record(res.Kind, res.Model, res.Units, res.Cost)
	}
	return res, nil
}

func testExecContext() *executor.Context {
	return &executor.Context{
		APIKey:   "test-key",
		Store:    store.NewMemory(),
		Cache:    cache.NewMemory(),
		Limiter:  ratelimit.New(nil),
		Costs:    cost.NewLedger(),
		Retry:    executor.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		CacheTTL: time.Minute,
	}
}

func buildGraph(t *testing.T, actions []action.Action) *graph.Graph {
	t.Helper()
	g, errs := graph.Build(context.Background(), &action.Document{Actions: actions})
	require.Empty(t, errs)
	return g
}

func TestExecuteMixedBatch(t *testing.T) {
	g := buildGraph(t, []action.Action{
		{Type: action.TypeReason, Reason: "setup"},
		{Type: action.TypeAssetImage, ID: "bg", Prompt: "p"},
		{Type: action.TypeShowModal, ID: "modal", Title: "t", ImageID: "bg"},
	})

	ec := testExecContext()
	exec := &scriptedExec{
		results: map[string]*executor.AssetResult{
			"bg": {ID: "bg", Kind: "image", URL: "asset://bg", Model: "flux-pro", Units: 1, Cost: 0.05},
		},
		costs: ec.Costs,
	}
	reg := registry.New()
	reg.Register("asset_image", exec)

	res := New(reg, ec).Execute(context.Background(), g)

	require.True(t, res.Success)
	assert.Empty(t, res.Errors)
	require.Len(t, res.AssetsGenerated, 1)
	assert.Equal(t, "asset://bg", res.AssetsGenerated[0].URL)
	assert.Equal(t, 0.05, res.TotalCost)
	assert.Equal(t, 1, res.CostBreakdown["image"]["flux-pro"].Units)

	require.Len(t, res.ActionsExecuted, 3)
	assert.Equal(t, "reason", res.ActionsExecuted[0].Kind)
	assert.Equal(t, "asset", res.ActionsExecuted[1].Kind)
	assert.Equal(t, "game", res.ActionsExecuted[2].Kind)
}

func TestExecuteEmitsGameMarkers(t *testing.T) {
	g := buildGraph(t, []action.Action{
		{Type: action.TypeAddFeature, ID: "flag", Target: "world.fog", Value: true},
	})

	res := New(registry.New(), testExecContext()).Execute(context.Background(), g)

	require.True(t, res.Success)
	require.Len(t, res.ActionsExecuted, 1)
	marker := res.ActionsExecuted[0].Marker
	require.NotNil(t, marker)
	assert.Equal(t, action.TypeAddFeature, marker.Type)
	assert.Equal(t, "world.fog", marker.Action.Target)
	assert.Empty(t, res.AssetsGenerated, "game actions generate no assets")
}

func TestExecuteContinuesPastFailures(t *testing.T) {
	g := buildGraph(t, []action.Action{
		{Type: action.TypeAssetImage, ID: "a", Prompt: "p"},
		{Type: action.TypeAssetImage, ID: "b", Prompt: "p"},
		{Type: action.TypeAssetImage, ID: "c", Prompt: "p"},
	})

	ec := testExecContext()
	exec := &scriptedExec{
		results: map[string]*executor.AssetResult{
			"a": {ID: "a", Kind: "image", URL: "asset://a"},
			"c": {ID: "c", Kind: "image", URL: "asset://c"},
		},
		errs: map[string]error{
			"b": errors.New("provider down"),
		},
	}
	reg := registry.New()
	reg.Register("asset_image", exec)

	res := New(reg, ec).Execute(context.Background(), g)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "b", res.Errors[0].ActionID)
	assert.Equal(t, "provider down", res.Errors[0].Message)
	assert.True(t, res.Errors[0].Retryable)

	// The failure did not stop a or c.
	require.Len(t, res.AssetsGenerated, 2)
	assert.Equal(t, "a", res.AssetsGenerated[0].ID)
	assert.Equal(t, "c", res.AssetsGenerated[1].ID)
}

func TestExecuteMarksPermanentFailuresNotRetryable(t *testing.T) {
	g := buildGraph(t, []action.Action{
		{Type: action.TypeAssetImage, ID: "a", Prompt: "p"},
	})

	exec := &scriptedExec{
		errs: map[string]error{
			"a": executor.Permanent(errors.New("prompt rejected")),
		},
	}
	reg := registry.New()
	reg.Register("asset_image", exec)

	res := New(reg, testExecContext()).Execute(context.Background(), g)

	require.Len(t, res.Errors, 1)
	assert.False(t, res.Errors[0].Retryable)
}

func TestExecuteMissingExecutor(t *testing.T) {
	g := buildGraph(t, []action.Action{
		{Type: action.TypeAssetImage, ID: "a", Prompt: "p"},
	})

	res := New(registry.New(), testExecContext()).Execute(context.Background(), g)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `no executor registered for action type "asset_image"`)
	assert.False(t, res.Errors[0].Retryable, "missing executors cannot heal between batches")
}

func TestExecuteEmptyGraph(t *testing.T) {
	g := buildGraph(t, nil)
	res := New(registry.New(), testExecContext()).Execute(context.Background(), g)

	assert.True(t, res.Success)
	assert.Empty(t, res.AssetsGenerated)
	assert.Empty(t, res.ActionsExecuted)
	assert.Zero(t, res.TotalCost)
}
