package cutscene

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/cache"
	"github.com/vk/scriptforge/internal/cost"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/ratelimit"
	"github.com/vk/scriptforge/internal/store"
)

func execContext(t *testing.T) (*executor.Context, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return &executor.Context{
		APIKey:   "test-key",
		Store:    mem,
		Cache:    cache.NewMemory(),
		Limiter:  ratelimit.New(nil),
		Costs:    cost.NewLedger(),
		Retry:    executor.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		CacheTTL: time.Minute,
	}, mem
}

func storeAsset(t *testing.T, mem *store.Memory, id, kind string, duration float64) {
	t.Helper()
	_, err := mem.Store(context.Background(), []byte(id), store.Metadata{
		ID: id, Kind: kind, DurationSec: duration,
	})
	require.NoError(t, err)
}

func cutsceneAction(shots ...action.Shot) *action.Action {
	return &action.Action{Type: action.TypeAssetCutscene, ID: "cs", Shots: shots}
}

func TestValidate(t *testing.T) {
	e := New()

	t.Run("accepts well-formed shots", func(t *testing.T) {
		a := cutsceneAction(
			action.Shot{ImageID: "i", SubtitleID: "s", Duration: 5, Animation: "pan_left"},
		)
		assert.NoError(t, e.Validate(a))
	})

	t.Run("requires at least one shot", func(t *testing.T) {
		assert.ErrorContains(t, e.Validate(cutsceneAction()), "at least one shot")
	})

	t.Run("rejects bad durations and animations", func(t *testing.T) {
		a := cutsceneAction(
			action.Shot{ImageID: "i", SubtitleID: "s", Duration: 0, Animation: "spin"},
		)
		err := e.Validate(a)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shot 0 duration must be positive")
		assert.Contains(t, err.Error(), `shot 0 has invalid animation "spin"`)
	})
}

func TestExecuteAssemblesDefinition(t *testing.T) {
	e := New()
	ec, mem := execContext(t)
	storeAsset(t, mem, "i1", "image", 0)
	storeAsset(t, mem, "i2", "image", 0)
	storeAsset(t, mem, "s1", "audio", 4.5)
	storeAsset(t, mem, "s2", "audio", 3.0)

	a := cutsceneAction(
		action.Shot{ImageID: "i1", SubtitleID: "s1", Duration: 6, Animation: "pan_left"},
		action.Shot{ImageID: "i2", SubtitleID: "s2", Duration: 4, Animation: "fade"},
	)

	res, err := e.Execute(context.Background(), a, ec)
	require.NoError(t, err)

	assert.Equal(t, "cutscene", res.Kind)
	assert.Equal(t, "asset://cs", res.URL)
	assert.Equal(t, 2, res.Units)
	assert.Zero(t, res.Cost, "assembly is free")
	assert.Equal(t, 10.0, res.DurationSec)

	def, ok := res.Definition.(*Definition)
	require.True(t, ok)
	require.Len(t, def.Shots, 2)
	assert.Equal(t, "asset://i1", def.Shots[0].ImageURL)
	assert.Equal(t, "asset://s1", def.Shots[0].SubtitleURL)
	assert.Equal(t, 0.0, def.Shots[0].StartsAtSec)
	assert.Equal(t, 6.0, def.Shots[1].StartsAtSec)
	assert.Equal(t, 4.5, def.Shots[0].AudioDuration)
	assert.Empty(t, def.Warnings)

	// The definition itself is persisted for the front end.
	assert.True(t, mem.Exists("cs"))
}

func TestExecuteNamesEveryMissingAsset(t *testing.T) {
	e := New()
	ec, mem := execContext(t)
	storeAsset(t, mem, "i1", "image", 0)

	a := cutsceneAction(
		action.Shot{ImageID: "i1", SubtitleID: "s1", Duration: 5, Animation: "none"},
		action.Shot{ImageID: "i2", SubtitleID: "s2", Duration: 5, Animation: "none"},
	)

	_, err := e.Execute(context.Background(), a, ec)
	require.Error(t, err)
	assert.True(t, executor.IsPermanent(err), "missing assets cannot appear by retrying")
	assert.ErrorContains(t, err, `cutscene "cs" references missing assets: s1, i2, s2`)
}

func TestPacingWarnings(t *testing.T) {
	e := New()
	ec, mem := execContext(t)
	storeAsset(t, mem, "i", "image", 0)
	storeAsset(t, mem, "s", "audio", 8.0)

	a := cutsceneAction(
		// Too short, and its audio outlasts it.
		action.Shot{ImageID: "i", SubtitleID: "s", Duration: 1, Animation: "none"},
		// Too long, and over 3x the shortest shot.
		action.Shot{ImageID: "i", SubtitleID: "s", Duration: 31, Animation: "none"},
	)

	res, err := e.Execute(context.Background(), a, ec)
	require.NoError(t, err, "pacing problems warn, never fail")

	def := res.Definition.(*Definition)
	require.Len(t, def.Warnings, 4)
	assert.Contains(t, def.Warnings[0], "shot 0 is shorter than 2s")
	assert.Contains(t, def.Warnings[1], "shot 0 audio (8.0s) outlasts the shot (1.0s)")
	assert.Contains(t, def.Warnings[2], "shot 1 is longer than 30s")
	assert.Contains(t, def.Warnings[3], "uneven pacing")
}

func TestEstimateCostIsZero(t *testing.T) {
	est := New().EstimateCost(cutsceneAction())
	assert.Equal(t, executor.CostEstimate{Currency: "USD"}, est)
}
