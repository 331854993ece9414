// Package validate runs the semantic checks on a structurally valid script:
// unique IDs, resolvable references (with typo suggestions), and well-formed
// condition and target path expressions. All passes run even when an earlier
// pass already failed, so a single parse surfaces every problem at once.
package validate

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/vk/scriptforge/internal/action"
)

// pathPattern accepts a non-empty dot-separated identifier path with no
// leading, trailing, or doubled dots.
var pathPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

// maxSuggestions caps the number of typo candidates offered for an
// unresolved reference.
const maxSuggestions = 3

// Validator runs the semantic passes. Instances are stateless and safe for
// concurrent use.
type Validator struct{}

// NewValidator returns a semantic validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every semantic pass over the document and returns the
// combined error list. An empty result means dependency analysis may begin.
func (v *Validator) Validate(doc *action.Document) []action.ValidationError {
	var errs []action.ValidationError
	errs = append(errs, v.checkUniqueIDs(doc)...)
	errs = append(errs, v.checkReferences(doc)...)
	errs = append(errs, v.checkConditions(doc)...)
	errs = append(errs, v.checkTargets(doc)...)
	return errs
}

// checkUniqueIDs flags every redeclaration of an already-seen ID, including
// IDs nested inside when_then branches and player-choice reactions.
func (v *Validator) checkUniqueIDs(doc *action.Document) []action.ValidationError {
	var errs []action.ValidationError
	seen := make(map[string]bool)
	for i := range doc.Actions {
		index := i
		doc.Actions[i].Walk(func(a *action.Action) {
			if a.ID == "" {
				return
			}
			if seen[a.ID] {
				errs = append(errs, action.ValidationError{
					Kind:     action.ErrDuplicateID,
					Message:  fmt.Sprintf("duplicate action id %q", a.ID),
					Index:    index,
					ActionID: a.ID,
				})
				return
			}
			seen[a.ID] = true
		})
	}
	return errs
}

// checkReferences verifies that every reference resolves to a declared ID.
// Unresolved references are reported with up to three close-match
// suggestions computed by edit distance.
func (v *Validator) checkReferences(doc *action.Document) []action.ValidationError {
	declared := make(map[string]bool)
	for i := range doc.Actions {
		for _, id := range doc.Actions[i].IDs() {
			declared[id] = true
		}
	}

	var errs []action.ValidationError
	for i := range doc.Actions {
		index := i
		doc.Actions[i].Walk(func(a *action.Action) {
			for _, ref := range a.References() {
				if declared[ref] {
					continue
				}
				errs = append(errs, action.ValidationError{
					Kind:     action.ErrUnknownReference,
					Message:  unknownRefMessage(a, ref, declared),
					Index:    index,
					ActionID: a.ID,
				})
			}
		})
	}
	return errs
}

// checkConditions validates when_then condition expressions, including those
// nested inside other actions.
func (v *Validator) checkConditions(doc *action.Document) []action.ValidationError {
	var errs []action.ValidationError
	for i := range doc.Actions {
		index := i
		doc.Actions[i].Walk(func(a *action.Action) {
			if a.Type != action.TypeWhenThen {
				return
			}
			if !pathPattern.MatchString(a.Condition) {
				errs = append(errs, action.ValidationError{
					Kind:     action.ErrInvalidCondition,
					Message:  fmt.Sprintf("invalid condition path %q: must be a dot-separated identifier path", a.Condition),
					Index:    index,
					ActionID: a.ID,
				})
			}
		})
	}
	return errs
}

// checkTargets validates add_feature and remove_feature target expressions.
func (v *Validator) checkTargets(doc *action.Document) []action.ValidationError {
	var errs []action.ValidationError
	for i := range doc.Actions {
		index := i
		doc.Actions[i].Walk(func(a *action.Action) {
			if a.Type != action.TypeAddFeature && a.Type != action.TypeRemoveFeature {
				return
			}
			if !pathPattern.MatchString(a.Target) {
				errs = append(errs, action.ValidationError{
					Kind:     action.ErrInvalidTarget,
					Message:  fmt.Sprintf("invalid target path %q: must be a dot-separated identifier path", a.Target),
					Index:    index,
					ActionID: a.ID,
				})
			}
		})
	}
	return errs
}

// unknownRefMessage names the offending action when it has an ID and
// appends up to three candidate corrections.
func unknownRefMessage(a *action.Action, ref string, declared map[string]bool) string {
	msg := fmt.Sprintf("unknown reference %q", ref)
	if a.ID != "" {
		msg = fmt.Sprintf("action %q references unknown id %q", a.ID, ref)
	}
	if suggestions := Suggest(ref, declared); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", quoteList(suggestions))
	}
	return msg
}

// Suggest returns up to three declared IDs within edit distance of half the
// target's length, ordered by increasing distance and then name.
func Suggest(target string, declared map[string]bool) []string {
	type candidate struct {
		id       string
		distance int
	}
	limit := len(target) / 2
	var candidates []candidate
	for id := range declared {
		d := levenshtein.Distance(target, id, nil)
		if d <= limit {
			candidates = append(candidates, candidate{id: id, distance: d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

func quoteList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	switch len(quoted) {
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " or " + quoted[1]
	default:
		out := ""
		for i, q := range quoted {
			switch {
			case i == 0:
				out = q
			case i == len(quoted)-1:
				out += " or " + q
			default:
				out += ", " + q
			}
		}
		return out
	}
}
