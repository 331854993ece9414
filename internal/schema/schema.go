// Package schema structurally validates a raw script document against the
// tagged-variant action grammar before any typed decoding happens. Every
// violation is reported with a dotted path locating the offending field;
// schema errors are fatal to the parse and are collected in full rather
// than reported one at a time.
package schema

import (
	"fmt"
	"sort"

	"github.com/vk/scriptforge/internal/action"
)

// kind is the JSON type expected for a field.
type kind int

const (
	kindString kind = iota
	kindNumber
	kindArray
	kindObject
	kindAny
)

func (k kind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindArray:
		return "array"
	case kindObject:
		return "object"
	default:
		return "value"
	}
}

// field describes one accepted field of an action variant.
type field struct {
	name     string
	kind     kind
	required bool
}

// variants maps each action type to its accepted fields. The shared "type"
// and "id" fields are handled separately. Recursive fields (then, shots,
// options) are declared here for presence/kind and descended into by the
// validator itself.
var variants = map[string][]field{
	"reason": {
		{name: "reason", kind: kindString, required: true},
	},
	"asset_image": {
		{name: "prompt", kind: kindString, required: true},
		{name: "size", kind: kindString, required: true},
		{name: "model", kind: kindString, required: true},
	},
	"asset_subtitle": {
		{name: "text", kind: kindString, required: true},
		{name: "voice_gender", kind: kindString, required: true},
		{name: "voice_tone", kind: kindString, required: true},
		{name: "voice_pace", kind: kindString, required: true},
		{name: "model", kind: kindString, required: true},
	},
	"asset_cutscene": {
		{name: "shots", kind: kindArray, required: true},
	},
	"play_cutscene": {
		{name: "cutscene_id", kind: kindString, required: true},
	},
	"show_modal": {
		{name: "title", kind: kindString, required: true},
		{name: "text", kind: kindString},
		{name: "image_id", kind: kindString},
		{name: "subtitle_id", kind: kindString},
	},
	"add_feature": {
		{name: "target", kind: kindString, required: true},
		{name: "value", kind: kindAny},
	},
	"remove_feature": {
		{name: "target", kind: kindString, required: true},
	},
	"when_then": {
		{name: "condition", kind: kindString, required: true},
		{name: "then", kind: kindObject, required: true},
	},
	"add_player_choice": {
		{name: "prompt", kind: kindString, required: true},
		{name: "options", kind: kindArray, required: true},
	},
}

var shotFields = []field{
	{name: "image_id", kind: kindString, required: true},
	{name: "subtitle_id", kind: kindString, required: true},
	{name: "duration", kind: kindNumber, required: true},
	{name: "animation", kind: kindString, required: true},
}

var optionFields = []field{
	{name: "text", kind: kindString, required: true},
	{name: "reactions", kind: kindArray, required: true},
}

// Validator checks a decoded JSON document against the action grammar.
// Instances are stateless and safe for concurrent use.
type Validator struct{}

// NewValidator returns a structural validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the raw document (the result of unmarshaling JSON into
// any) and returns one error per violated field.
func (v *Validator) Validate(doc any) []action.ValidationError {
	root, ok := doc.(map[string]any)
	if !ok {
		return []action.ValidationError{schemaErr(-1, "", "document must be a JSON object")}
	}

	var errs []action.ValidationError
	for _, key := range sortedKeys(root) {
		if key != "actions" {
			errs = append(errs, schemaErr(-1, key, "unknown field %q", key))
		}
	}

	rawActions, ok := root["actions"]
	if !ok {
		errs = append(errs, schemaErr(-1, "actions", "missing required field %q", "actions"))
		return errs
	}
	list, ok := rawActions.([]any)
	if !ok {
		errs = append(errs, schemaErr(-1, "actions", "field %q must be an array", "actions"))
		return errs
	}

	for i, item := range list {
		path := fmt.Sprintf("actions[%d]", i)
		errs = append(errs, v.validateAction(item, path, i)...)
	}
	return errs
}

// validateAction checks one action object, recursing into nested actions.
func (v *Validator) validateAction(item any, path string, index int) []action.ValidationError {
	obj, ok := item.(map[string]any)
	if !ok {
		return []action.ValidationError{schemaErr(index, path, "action must be an object")}
	}

	rawType, ok := obj["type"]
	if !ok {
		return []action.ValidationError{schemaErr(index, path+".type", "missing required field %q", "type")}
	}
	typeStr, ok := rawType.(string)
	if !ok {
		return []action.ValidationError{schemaErr(index, path+".type", "field %q must be a string", "type")}
	}
	fields, ok := variants[typeStr]
	if !ok {
		return []action.ValidationError{schemaErr(index, path+".type", "unknown action type %q", typeStr)}
	}

	var errs []action.ValidationError
	known := map[string]bool{"type": true, "id": true}
	for _, f := range fields {
		known[f.name] = true
		raw, present := obj[f.name]
		fieldPath := path + "." + f.name
		if !present {
			if f.required {
				errs = append(errs, schemaErr(index, fieldPath, "missing required field %q", f.name))
			}
			continue
		}
		if !matchesKind(raw, f.kind) {
			errs = append(errs, schemaErr(index, fieldPath, "field %q must be a %s", f.name, f.kind))
		}
	}

	if raw, present := obj["id"]; present {
		if _, ok := raw.(string); !ok {
			errs = append(errs, schemaErr(index, path+".id", "field %q must be a string", "id"))
		}
	}

	for _, key := range sortedKeys(obj) {
		if !known[key] {
			errs = append(errs, schemaErr(index, path+"."+key, "unknown field %q for action type %q", key, typeStr))
		}
	}

	// Recursive embedding: nested actions validate against the full grammar.
	switch typeStr {
	case "when_then":
		if then, ok := obj["then"].(map[string]any); ok {
			errs = append(errs, v.validateAction(then, path+".then", index)...)
		}
	case "add_player_choice":
		if options, ok := obj["options"].([]any); ok {
			errs = append(errs, v.validateOptions(options, path, index)...)
		}
	case "asset_cutscene":
		if shots, ok := obj["shots"].([]any); ok {
			errs = append(errs, v.validateShots(shots, path, index)...)
		}
	}
	return errs
}

func (v *Validator) validateShots(shots []any, path string, index int) []action.ValidationError {
	var errs []action.ValidationError
	for i, raw := range shots {
		shotPath := fmt.Sprintf("%s.shots[%d]", path, i)
		obj, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, schemaErr(index, shotPath, "shot must be an object"))
			continue
		}
		errs = append(errs, checkFields(obj, shotFields, shotPath, index)...)
	}
	return errs
}

func (v *Validator) validateOptions(options []any, path string, index int) []action.ValidationError {
	var errs []action.ValidationError
	for i, raw := range options {
		optPath := fmt.Sprintf("%s.options[%d]", path, i)
		obj, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, schemaErr(index, optPath, "option must be an object"))
			continue
		}
		errs = append(errs, checkFields(obj, optionFields, optPath, index)...)
		if reactions, ok := obj["reactions"].([]any); ok {
			for j, reaction := range reactions {
				reactionPath := fmt.Sprintf("%s.reactions[%d]", optPath, j)
				errs = append(errs, v.validateAction(reaction, reactionPath, index)...)
			}
		}
	}
	return errs
}

// checkFields verifies a flat object against a field list, flagging missing
// required fields, mistyped fields and unknown fields.
func checkFields(obj map[string]any, fields []field, path string, index int) []action.ValidationError {
	var errs []action.ValidationError
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.name] = true
		raw, present := obj[f.name]
		fieldPath := path + "." + f.name
		if !present {
			if f.required {
				errs = append(errs, schemaErr(index, fieldPath, "missing required field %q", f.name))
			}
			continue
		}
		if !matchesKind(raw, f.kind) {
			errs = append(errs, schemaErr(index, fieldPath, "field %q must be a %s", f.name, f.kind))
		}
	}
	for _, key := range sortedKeys(obj) {
		if !known[key] {
			errs = append(errs, schemaErr(index, path+"."+key, "unknown field %q", key))
		}
	}
	return errs
}

func matchesKind(raw any, k kind) bool {
	switch k {
	case kindString:
		_, ok := raw.(string)
		return ok
	case kindNumber:
		_, ok := raw.(float64)
		return ok
	case kindArray:
		_, ok := raw.([]any)
		return ok
	case kindObject:
		_, ok := raw.(map[string]any)
		return ok
	default:
		return true
	}
}

func schemaErr(index int, path, format string, args ...any) action.ValidationError {
	return action.ValidationError{
		Kind:    action.ErrSchema,
		Message: fmt.Sprintf(format, args...),
		Index:   index,
		Path:    path,
	}
}

// sortedKeys keeps error output deterministic regardless of map iteration
// order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
