// Package action defines the tagged-union Action type that makes up a
// script, the canonical enumerations shared by the validators and the
// executors, and the recursive traversal helpers used for ID and
// reference extraction.
package action

import "strings"

// Type is the discriminator tag of an Action.
type Type string

const (
	TypeReason          Type = "reason"
	TypeAssetImage      Type = "asset_image"
	TypeAssetSubtitle   Type = "asset_subtitle"
	TypeAssetCutscene   Type = "asset_cutscene"
	TypePlayCutscene    Type = "play_cutscene"
	TypeShowModal       Type = "show_modal"
	TypeAddFeature      Type = "add_feature"
	TypeRemoveFeature   Type = "remove_feature"
	TypeWhenThen        Type = "when_then"
	TypeAddPlayerChoice Type = "add_player_choice"
)

// assetPrefix marks the action types whose execution produces a generated
// artifact.
const assetPrefix = "asset_"

// IsAsset reports whether actions of this type produce a generated asset.
func (t Type) IsAsset() bool {
	return strings.HasPrefix(string(t), assetPrefix)
}

// Document is the top-level shape of a script.
type Document struct {
	Actions []Action `json:"actions"`
}

// Action is one step in a script. Exactly one variant's field group is
// populated, selected by Type. The union is recursive: a when_then nests a
// single Action, and every player-choice option nests a reaction list.
type Action struct {
	Type Type   `json:"type"`
	ID   string `json:"id,omitempty"`

	// reason
	Reason string `json:"reason,omitempty"`

	// asset_image (Prompt is shared with add_player_choice,
	// Model with asset_subtitle)
	Prompt string `json:"prompt,omitempty"`
	Size   string `json:"size,omitempty"`
	Model  string `json:"model,omitempty"`

	// asset_subtitle (Text is shared with show_modal)
	Text        string `json:"text,omitempty"`
	VoiceGender string `json:"voice_gender,omitempty"`
	VoiceTone   string `json:"voice_tone,omitempty"`
	VoicePace   string `json:"voice_pace,omitempty"`

	// asset_cutscene
	Shots []Shot `json:"shots,omitempty"`

	// play_cutscene
	CutsceneID string `json:"cutscene_id,omitempty"`

	// show_modal (ImageID and SubtitleID are optional references)
	Title      string `json:"title,omitempty"`
	ImageID    string `json:"image_id,omitempty"`
	SubtitleID string `json:"subtitle_id,omitempty"`

	// add_feature / remove_feature
	Target string `json:"target,omitempty"`
	Value  any    `json:"value,omitempty"`

	// when_then
	Condition string  `json:"condition,omitempty"`
	Then      *Action `json:"then,omitempty"`

	// add_player_choice
	Options []ChoiceOption `json:"options,omitempty"`
}

// Shot is a single frame of a cutscene, pairing an image with a spoken
// subtitle for a fixed duration.
type Shot struct {
	ImageID    string  `json:"image_id"`
	SubtitleID string  `json:"subtitle_id"`
	Duration   float64 `json:"duration"`
	Animation  string  `json:"animation"`
}

// ChoiceOption is one selectable option of an add_player_choice action. Its
// reactions run when the player picks it.
type ChoiceOption struct {
	Text      string   `json:"text"`
	Reactions []Action `json:"reactions"`
}
