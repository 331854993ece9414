// Package speech provides the asset_subtitle executor: text-to-speech with
// a fixed voice lookup per model and a word-count based duration estimate.
// Synthesis is simulated with deterministic waveform bytes.
package speech

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/ratelimit"
	"github.com/vk/scriptforge/internal/store"
)

const (
	minTextLen = 1
	maxTextLen = 4000
)

// perCharCost is the per-character price by model.
var perCharCost = map[string]float64{
	"openai-tts":   0.000015,
	"eleven-turbo": 0.00003,
}

// voices maps (model, gender/tone) to a concrete voice identifier.
var voices = map[string]map[string]string{
	"openai-tts": {
		"male/epic": "onyx", "male/warm": "echo", "male/ominous": "onyx",
		"male/playful": "fable", "male/solemn": "echo",
		"female/epic": "nova", "female/warm": "shimmer", "female/ominous": "nova",
		"female/playful": "shimmer", "female/solemn": "nova",
		"neutral/epic": "alloy", "neutral/warm": "alloy", "neutral/ominous": "alloy",
		"neutral/playful": "fable", "neutral/solemn": "alloy",
	},
	"eleven-turbo": {
		"male/epic": "arnold", "male/warm": "antoni", "male/ominous": "arnold",
		"male/playful": "josh", "male/solemn": "adam",
		"female/epic": "domi", "female/warm": "bella", "female/ominous": "domi",
		"female/playful": "elli", "female/solemn": "rachel",
		"neutral/epic": "sam", "neutral/warm": "sam", "neutral/ominous": "adam",
		"neutral/playful": "elli", "neutral/solemn": "sam",
	},
}

// speedByPace and pitchByTone are the delivery adjustments handed to the
// synthesizer.
var speedByPace = map[string]float64{"slow": 0.85, "normal": 1.0, "fast": 1.2}

var pitchByTone = map[string]int{"epic": -2, "warm": 1, "ominous": -4, "playful": 3, "solemn": -1}

// wordsPerMinute drives the spoken-duration estimate per pace.
var wordsPerMinute = map[string]float64{"slow": 110, "normal": 150, "fast": 190}

// Provider synthesizes speech once and returns the raw audio bytes.
type Provider func(ctx context.Context, apiKey, text, voice string, speed float64, pitch int) ([]byte, error)

// Executor implements executor.Executor for asset_subtitle actions.
type Executor struct {
	executor.Base
	provider Provider
}

// New returns the speech executor backed by the simulated synthesizer.
func New() *Executor {
	return &Executor{
		Base:     executor.Base{Kind: "speech", Class: ratelimit.ClassTTSGeneration},
		provider: simulate,
	}
}

// NewWithProvider returns a speech executor with a custom provider, for
// tests.
func NewWithProvider(p Provider) *Executor {
	e := New()
	e.provider = p
	return e
}

// Validate implements executor.Executor.
func (e *Executor) Validate(a *action.Action) error {
	var errs []error
	if !action.OneOf(a.VoiceGender, action.VoiceGenders) {
		errs = append(errs, fmt.Errorf("invalid voice_gender %q: must be one of %s", a.VoiceGender, strings.Join(action.VoiceGenders, ", ")))
	}
	if !action.OneOf(a.VoiceTone, action.VoiceTones) {
		errs = append(errs, fmt.Errorf("invalid voice_tone %q: must be one of %s", a.VoiceTone, strings.Join(action.VoiceTones, ", ")))
	}
	if !action.OneOf(a.VoicePace, action.VoicePaces) {
		errs = append(errs, fmt.Errorf("invalid voice_pace %q: must be one of %s", a.VoicePace, strings.Join(action.VoicePaces, ", ")))
	}
	if !action.OneOf(a.Model, action.SpeechModels) {
		errs = append(errs, fmt.Errorf("invalid model %q: must be one of %s", a.Model, strings.Join(action.SpeechModels, ", ")))
	}
	if len(a.Text) < minTextLen || len(a.Text) > maxTextLen {
		errs = append(errs, fmt.Errorf("text must be %d-%d characters, got %d", minTextLen, maxTextLen, len(a.Text)))
	}
	return errors.Join(errs...)
}

// EstimateCost implements executor.Executor. Pricing is per character, so
// min and max coincide for a fixed text.
func (e *Executor) EstimateCost(a *action.Action) executor.CostEstimate {
	c := float64(len(a.Text)) * perCharCost[a.Model]
	return executor.CostEstimate{Min: c, Max: c, Currency: "USD"}
}

// Execute implements executor.Executor.
func (e *Executor) Execute(ctx context.Context, a *action.Action, ec *executor.Context) (*executor.AssetResult, error) {
	return e.Do(ctx, a, ec, e, func(ctx context.Context) (*executor.AssetResult, error) {
		voice := VoiceFor(a.Model, a.VoiceGender, a.VoiceTone)
		speed := speedByPace[a.VoicePace]
		pitch := pitchByTone[a.VoiceTone]
		duration := EstimateDuration(a.Text, a.VoicePace)

		data, err := e.provider(ctx, ec.APIKey, a.Text, voice, speed, pitch)
		if err != nil {
			return nil, err
		}

		asset, err := ec.Store.Store(ctx, data, store.Metadata{
			ID:          a.ID,
			Kind:        "audio",
			ContentType: "audio/mpeg",
			DurationSec: duration,
		})
		if err != nil {
			return nil, fmt.Errorf("store audio %q: %w", a.ID, err)
		}

		return &executor.AssetResult{
			ID:          a.ID,
			URL:         asset.URL,
			Model:       a.Model,
			Units:       len(a.Text),
			Cost:        float64(len(a.Text)) * perCharCost[a.Model],
			DurationSec: duration,
			Metadata: map[string]any{
				"model": a.Model,
				"voice": voice,
				"speed": speed,
				"pitch": pitch,
				"text":  a.Text,
			},
		}, nil
	})
}

// VoiceFor resolves the concrete voice identifier for a model and
// gender/tone pair.
func VoiceFor(model, gender, tone string) string {
	return voices[model][gender+"/"+tone]
}

// EstimateDuration predicts spoken length from word count at the pace's
// words-per-minute rate. Never less than one second.
func EstimateDuration(text, pace string) float64 {
	words := len(strings.Fields(text))
	wpm := wordsPerMinute[pace]
	if wpm == 0 {
		wpm = wordsPerMinute["normal"]
	}
	return math.Max(1, float64(words)/wpm*60)
}

// simulate stands in for a real synthesizer, emitting deterministic bytes.
func simulate(_ context.Context, apiKey, text, voice string, speed float64, pitch int) ([]byte, error) {
	if apiKey == "" {
		return nil, executor.Permanent(errors.New("missing api credentials"))
	}

	seed := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f|%d", voice, text, speed, pitch)))
	data := make([]byte, 0, 2048)
	for len(data) < 2048 {
		data = append(data, seed[:]...)
	}
	return data[:2048], nil
}
