package speech

import (
	"context"
	"strings"
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

func validAction() *action.Action {
	return &action.Action{
		Type: action.TypeAssetSubtitle, ID: "n",
		Text:        "The ship is late.",
		VoiceGender: "female", VoiceTone: "solemn", VoicePace: "slow",
		Model: "openai-tts",
	}
}

func TestValidate(t *testing.T) {
	e := New()

	t.Run("accepts a well-formed action", func(t *testing.T) {
		assert.NoError(t, e.Validate(validAction()))
	})

	t.Run("rejects every invalid enum at once", func(t *testing.T) {
		a := validAction()
		a.VoiceGender = "robot"
		a.VoiceTone = "sarcastic"
		a.VoicePace = "frantic"
		a.Model = "custom-tts"
		err := e.Validate(a)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid voice_gender "robot"`)
		assert.Contains(t, err.Error(), `invalid voice_tone "sarcastic"`)
		assert.Contains(t, err.Error(), `invalid voice_pace "frantic"`)
		assert.Contains(t, err.Error(), `invalid model "custom-tts"`)
	})

	t.Run("rejects out-of-range text", func(t *testing.T) {
		a := validAction()
		a.Text = ""
		assert.ErrorContains(t, e.Validate(a), "text must be 1-4000 characters")

		a.Text = strings.Repeat("a", 4001)
		assert.ErrorContains(t, e.Validate(a), "text must be 1-4000 characters")
	})
}

func TestVoiceFor(t *testing.T) {
	// Every (model, gender, tone) combination must resolve to a voice.
	for _, model := range action.SpeechModels {
		for _, gender := range action.VoiceGenders {
			for _, tone := range action.VoiceTones {
				assert.NotEmpty(t, VoiceFor(model, gender, tone),
					"no voice for %s %s/%s", model, gender, tone)
			}
		}
	}

	assert.Equal(t, "shimmer", VoiceFor("openai-tts", "female", "warm"))
	assert.Equal(t, "arnold", VoiceFor("eleven-turbo", "male", "epic"))
}

func TestEstimateDuration(t *testing.T) {
	// 150 words at normal pace is exactly one minute.
	text := strings.TrimSpace(strings.Repeat("word ", 150))
	assert.Equal(t, 60.0, EstimateDuration(text, "normal"))

	// Slow pace stretches the same text.
	assert.Greater(t, EstimateDuration(text, "slow"), 60.0)
	assert.Less(t, EstimateDuration(text, "fast"), 60.0)

	// Never below one second, even for a single word.
	assert.Equal(t, 1.0, EstimateDuration("hi", "fast"))
}

func TestEstimateCost(t *testing.T) {
	e := New()
	a := validAction()

	est := e.EstimateCost(a)
	assert.InDelta(t, float64(len(a.Text))*0.000015, est.Min, 1e-12)
	assert.Equal(t, est.Min, est.Max)
	assert.Equal(t, "USD", est.Currency)

	a.Model = "eleven-turbo"
	assert.InDelta(t, float64(len(a.Text))*0.00003, e.EstimateCost(a).Min, 1e-12)
}

func TestExecuteStoresAudio(t *testing.T) {
	e := New()
	ec, mem := execContext(t)
	a := validAction()

	res, err := e.Execute(context.Background(), a, ec)
	require.NoError(t, err)

	assert.Equal(t, "n", res.ID)
	assert.Equal(t, "speech", res.Kind)
	assert.Equal(t, "asset://n", res.URL)
	assert.Equal(t, len(a.Text), res.Units)
	assert.InDelta(t, float64(len(a.Text))*0.000015, res.Cost, 1e-12)
	assert.GreaterOrEqual(t, res.DurationSec, 1.0)
	assert.Equal(t, "nova", res.Metadata["voice"])

	data, ok := mem.Data("n")
	require.True(t, ok)
	assert.Len(t, data, 2048)

	// The stored asset exposes its duration for cutscene assembly.
	d, ok := mem.Duration("n")
	require.True(t, ok)
	assert.Equal(t, res.DurationSec, d)
}

func TestExecuteMissingCredentialsIsPermanent(t *testing.T) {
	e := New()
	ec, _ := execContext(t)
	ec.APIKey = ""

	_, err := e.Execute(context.Background(), validAction(), ec)
	require.Error(t, err)
	assert.True(t, executor.IsPermanent(err))
}
