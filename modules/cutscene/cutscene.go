// Package cutscene provides the asset_cutscene executor. Assembly makes no
// external generation call: it verifies every referenced asset exists,
// resolves URLs and timings into a playback definition, and flags pacing
// problems as non-fatal warnings. The cost of a cutscene lives in the
// assets it references, never in the assembly.
package cutscene

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/store"
)

// Pacing thresholds, in seconds unless noted.
const (
	minShotDuration = 2.0
	maxShotDuration = 30.0
	// maxShotRatio is the longest/shortest shot ratio above which overall
	// pacing is flagged as uneven.
	maxShotRatio = 3.0
)

// Shot is one resolved frame of the assembled definition.
type Shot struct {
	ImageID       string  `json:"image_id"`
	ImageURL      string  `json:"image_url"`
	SubtitleID    string  `json:"subtitle_id"`
	SubtitleURL   string  `json:"subtitle_url"`
	StartsAtSec   float64 `json:"starts_at_sec"`
	DurationSec   float64 `json:"duration_sec"`
	AudioDuration float64 `json:"audio_duration_sec,omitempty"`
	Animation     string  `json:"animation"`
}

// Definition is the assembled, playable form of a cutscene.
type Definition struct {
	ID          string   `json:"id"`
	Shots       []Shot   `json:"shots"`
	DurationSec float64  `json:"duration_sec"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Executor implements executor.Executor for asset_cutscene actions.
type Executor struct {
	executor.Base
}

// New returns the cutscene assembler. It has no rate-limit class: nothing
// external is called.
func New() *Executor {
	return &Executor{Base: executor.Base{Kind: "cutscene"}}
}

// Validate implements executor.Executor.
func (e *Executor) Validate(a *action.Action) error {
	var errs []error
	if len(a.Shots) == 0 {
		errs = append(errs, errors.New("cutscene requires at least one shot"))
	}
	for i, shot := range a.Shots {
		if shot.Duration <= 0 {
			errs = append(errs, fmt.Errorf("shot %d duration must be positive, got %v", i, shot.Duration))
		}
		if !action.OneOf(shot.Animation, action.Animations) {
			errs = append(errs, fmt.Errorf("shot %d has invalid animation %q: must be one of %s", i, shot.Animation, strings.Join(action.Animations, ", ")))
		}
	}
	return errors.Join(errs...)
}

// EstimateCost implements executor.Executor. Assembly is free.
func (e *Executor) EstimateCost(a *action.Action) executor.CostEstimate {
	return executor.CostEstimate{Currency: "USD"}
}

// Execute implements executor.Executor.
func (e *Executor) Execute(ctx context.Context, a *action.Action, ec *executor.Context) (*executor.AssetResult, error) {
	return e.Do(ctx, a, ec, e, func(ctx context.Context) (*executor.AssetResult, error) {
		def, err := e.assemble(a, ec.Store)
		if err != nil {
			return nil, err
		}

		asset, err := ec.Store.StoreJSON(ctx, def, store.Metadata{
			ID:          a.ID,
			Kind:        "cutscene",
			DurationSec: def.DurationSec,
		})
		if err != nil {
			return nil, fmt.Errorf("store cutscene %q: %w", a.ID, err)
		}

		return &executor.AssetResult{
			ID:          a.ID,
			URL:         asset.URL,
			Units:       len(def.Shots),
			Cost:        0,
			DurationSec: def.DurationSec,
			Definition:  def,
			Metadata: map[string]any{
				"shots":    len(def.Shots),
				"warnings": def.Warnings,
			},
		}, nil
	})
}

// assemble resolves every shot against storage. A missing reference is a
// non-retryable error naming all missing assets at once, not just the
// first.
func (e *Executor) assemble(a *action.Action, st store.Storage) (*Definition, error) {
	var missing []string
	for _, shot := range a.Shots {
		if !st.Exists(shot.ImageID) {
			missing = append(missing, shot.ImageID)
		}
		if !st.Exists(shot.SubtitleID) {
			missing = append(missing, shot.SubtitleID)
		}
	}
	if len(missing) > 0 {
		return nil, executor.Permanent(fmt.Errorf("cutscene %q references missing assets: %s", a.ID, strings.Join(missing, ", ")))
	}

	def := &Definition{ID: a.ID, Shots: make([]Shot, 0, len(a.Shots))}
	var offset float64
	for _, shot := range a.Shots {
		imageURL, err := st.URL(shot.ImageID)
		if err != nil {
			return nil, executor.Permanent(err)
		}
		subtitleURL, err := st.URL(shot.SubtitleID)
		if err != nil {
			return nil, executor.Permanent(err)
		}

		resolved := Shot{
			ImageID:     shot.ImageID,
			ImageURL:    imageURL,
			SubtitleID:  shot.SubtitleID,
			SubtitleURL: subtitleURL,
			StartsAtSec: offset,
			DurationSec: shot.Duration,
			Animation:   shot.Animation,
		}
		if audio, ok := st.Duration(shot.SubtitleID); ok {
			resolved.AudioDuration = audio
		}
		def.Shots = append(def.Shots, resolved)
		offset += shot.Duration
	}
	def.DurationSec = offset
	def.Warnings = pacingWarnings(def.Shots)
	return def, nil
}

// pacingWarnings flags timing problems without failing the batch.
func pacingWarnings(shots []Shot) []string {
	var warnings []string
	shortest, longest := shots[0].DurationSec, shots[0].DurationSec
	for i, shot := range shots {
		if shot.DurationSec < minShotDuration {
			warnings = append(warnings, fmt.Sprintf("shot %d is shorter than %.0fs", i, minShotDuration))
		}
		if shot.DurationSec > maxShotDuration {
			warnings = append(warnings, fmt.Sprintf("shot %d is longer than %.0fs", i, maxShotDuration))
		}
		if shot.AudioDuration > shot.DurationSec {
			warnings = append(warnings, fmt.Sprintf("shot %d audio (%.1fs) outlasts the shot (%.1fs)", i, shot.AudioDuration, shot.DurationSec))
		}
		if shot.DurationSec < shortest {
			shortest = shot.DurationSec
		}
		if shot.DurationSec > longest {
			longest = shot.DurationSec
		}
	}
	if shortest > 0 && longest/shortest > maxShotRatio {
		warnings = append(warnings, fmt.Sprintf("uneven pacing: longest shot is %.1fx the shortest", longest/shortest))
	}
	return warnings
}
