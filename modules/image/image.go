// Package image provides the asset_image executor. Generation is simulated:
// the provider emits deterministic pseudo-PNG bytes derived from the
// enhanced prompt, so runs are reproducible without a real model behind
// them.
package image

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/ratelimit"
	"github.com/vk/scriptforge/internal/store"
)

const (
	minPromptLen = 1
	maxPromptLen = 2000
)

// modelCost is the flat per-image price by model. flux-schnell is the free
// tier.
var modelCost = map[string]float64{
	"flux-schnell": 0,
	"flux-pro":     0.05,
}

// blockedTerms rejects prompts the providers refuse anyway; failing early
// keeps the failure non-retryable.
var blockedTerms = []string{"nsfw", "gore", "explicit"}

// styleModifiers are appended to every prompt unless already present, so
// generated assets share a consistent look.
var styleModifiers = []string{"cinematic lighting", "high detail", "game art style"}

// Provider invokes an image generator once and returns the raw image bytes.
type Provider func(ctx context.Context, apiKey, prompt, size, model string) ([]byte, error)

// Executor implements executor.Executor for asset_image actions.
type Executor struct {
	executor.Base
	provider Provider
}

// New returns the image executor backed by the simulated provider.
func New() *Executor {
	return &Executor{
		Base:     executor.Base{Kind: "image", Class: ratelimit.ClassImageGeneration},
		provider: simulate,
	}
}

// NewWithProvider returns an image executor with a custom provider, for
// tests.
func NewWithProvider(p Provider) *Executor {
	e := New()
	e.provider = p
	return e
}

// Validate implements executor.Executor.
func (e *Executor) Validate(a *action.Action) error {
	var errs []error
	if !action.OneOf(a.Size, action.ImageSizes) {
		errs = append(errs, fmt.Errorf("invalid size %q: must be one of %s", a.Size, strings.Join(action.ImageSizes, ", ")))
	}
	if !action.OneOf(a.Model, action.ImageModels) {
		errs = append(errs, fmt.Errorf("invalid model %q: must be one of %s", a.Model, strings.Join(action.ImageModels, ", ")))
	}
	if len(a.Prompt) < minPromptLen || len(a.Prompt) > maxPromptLen {
		errs = append(errs, fmt.Errorf("prompt must be %d-%d characters, got %d", minPromptLen, maxPromptLen, len(a.Prompt)))
	}
	lower := strings.ToLower(a.Prompt)
	for _, term := range blockedTerms {
		if strings.Contains(lower, term) {
			errs = append(errs, fmt.Errorf("prompt contains blocked term %q", term))
		}
	}
	return errors.Join(errs...)
}

// EstimateCost implements executor.Executor. Image pricing is flat per
// model, so min and max coincide.
func (e *Executor) EstimateCost(a *action.Action) executor.CostEstimate {
	c := modelCost[a.Model]
	return executor.CostEstimate{Min: c, Max: c, Currency: "USD"}
}

// Execute implements executor.Executor.
func (e *Executor) Execute(ctx context.Context, a *action.Action, ec *executor.Context) (*executor.AssetResult, error) {
	return e.Do(ctx, a, ec, e, func(ctx context.Context) (*executor.AssetResult, error) {
		prompt := EnhancePrompt(a.Prompt)

		data, err := e.provider(ctx, ec.APIKey, prompt, a.Size, a.Model)
		if err != nil {
			return nil, err
		}

		asset, err := ec.Store.Store(ctx, data, store.Metadata{
			ID:          a.ID,
			Kind:        "image",
			ContentType: "image/png",
		})
		if err != nil {
			return nil, fmt.Errorf("store image %q: %w", a.ID, err)
		}

		width, height := parseSize(a.Size)
		return &executor.AssetResult{
			ID:    a.ID,
			URL:   asset.URL,
			Model: a.Model,
			Units: 1,
			Cost:  modelCost[a.Model],
			Metadata: map[string]any{
				"model":  a.Model,
				"size":   a.Size,
				"prompt": prompt,
				"width":  width,
				"height": height,
			},
		}, nil
	})
}

// EnhancePrompt appends the style modifiers not already present in the
// prompt. Presence is checked case-insensitively to avoid duplication.
func EnhancePrompt(prompt string) string {
	enhanced := prompt
	lower := strings.ToLower(prompt)
	for _, mod := range styleModifiers {
		if !strings.Contains(lower, mod) {
			enhanced += ", " + mod
		}
	}
	return enhanced
}

func parseSize(size string) (int, int) {
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return 0, 0
	}
	width, _ := strconv.Atoi(w)
	height, _ := strconv.Atoi(h)
	return width, height
}

// simulate stands in for a real diffusion provider. Output bytes are a
// deterministic function of the request, so identical actions produce
// identical artifacts.
func simulate(_ context.Context, apiKey, prompt, size, model string) ([]byte, error) {
	if apiKey == "" {
		return nil, executor.Permanent(errors.New("missing api credentials"))
	}

	seed := sha256.Sum256([]byte(model + "|" + size + "|" + prompt))
	data := []byte("\x89PNG\r\n\x1a\n")
	for len(data) < 1024 {
		data = append(data, seed[:]...)
	}
	return data[:1024], nil
}
