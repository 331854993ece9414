package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scriptforge/internal/action"
)

const cutsceneScript = `{
  "actions": [
    {"type": "reason", "reason": "opening scene"},
    {"type": "asset_image", "id": "bg", "prompt": "a moonlit harbor", "size": "1792x1024", "model": "flux-schnell"},
    {"type": "asset_subtitle", "id": "n", "text": "The ship is late.", "voice_gender": "female", "voice_tone": "solemn", "voice_pace": "slow", "model": "openai-tts"},
    {"type": "asset_cutscene", "id": "cs", "shots": [
      {"image_id": "bg", "subtitle_id": "n", "duration": 6, "animation": "pan_left"}
    ]},
    {"type": "play_cutscene", "cutscene_id": "cs"}
  ]
}`

func TestParseCompilesCutsceneScript(t *testing.T) {
	res := New().Parse(context.Background(), []byte(cutsceneScript))
	require.True(t, res.Success, "errors: %v", res.Errors)
	require.NotNil(t, res.Graph)

	assert.Equal(t,
		[]string{"reason_0", "bg", "n", "cs", "play_cutscene_4"},
		res.Graph.ExecutionOrder)
	assert.Equal(t, []string{"bg", "n", "cs"}, res.Graph.AssetActions)
	assert.Equal(t, []string{"play_cutscene_4"}, res.Graph.GameActions)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	res := New().Parse(context.Background(), []byte(`{"actions": [`))
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, action.ErrSchema, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "invalid JSON")
}

func TestParseSchemaErrorsAreFatal(t *testing.T) {
	// The duplicate IDs below would also fail semantics, but structural
	// errors must be reported alone.
	raw := `{"actions": [
		{"type": "asset_image", "id": "bg", "prompt": "p", "size": "1024x768"},
		{"type": "asset_image", "id": "bg", "prompt": "p", "size": "1024x768", "model": "flux-schnell"}
	]}`
	res := New().Parse(context.Background(), []byte(raw))
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, action.ErrSchema, res.Errors[0].Kind)
	assert.Equal(t, "actions[0].model", res.Errors[0].Path)
}

func TestParseReportsUnknownReferenceWithSuggestion(t *testing.T) {
	raw := `{"actions": [
		{"type": "asset_image", "id": "harbor_bg", "prompt": "p", "size": "1024x768", "model": "flux-schnell"},
		{"type": "show_modal", "id": "m", "title": "t", "image_id": "harbor_gb"}
	]}`
	res := New().Parse(context.Background(), []byte(raw))
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, action.ErrUnknownReference, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, `did you mean "harbor_bg"`)
}

func TestParseReportsCycles(t *testing.T) {
	raw := `{"actions": [
		{"type": "asset_cutscene", "id": "x", "shots": [{"image_id": "y", "subtitle_id": "y", "duration": 5, "animation": "none"}]},
		{"type": "asset_cutscene", "id": "y", "shots": [{"image_id": "x", "subtitle_id": "x", "duration": 5, "animation": "none"}]}
	]}`
	res := New().Parse(context.Background(), []byte(raw))
	require.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, action.ErrCircularDependency, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "x -> y -> x")
}

func TestParseLargeScript(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"actions": [`)
	for i := 0; i < 500; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb,
			`{"type": "asset_image", "id": "img_%d", "prompt": "scene %d", "size": "1024x768", "model": "flux-schnell"},
			 {"type": "show_modal", "title": "scene %d", "image_id": "img_%d"}`,
			i, i, i, i)
	}
	sb.WriteString(`]}`)

	res := New().Parse(context.Background(), []byte(sb.String()))
	require.True(t, res.Success, "errors: %v", res.Errors)
	assert.Len(t, res.Graph.Nodes, 1000)
	assert.Len(t, res.Graph.AssetActions, 500)
	assert.Len(t, res.Graph.GameActions, 500)
}

func TestResultMarshalsWithoutGraph(t *testing.T) {
	res := New().Parse(context.Background(), []byte(cutsceneScript))
	require.True(t, res.Success)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true}`, string(out))
}
