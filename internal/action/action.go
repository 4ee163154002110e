// Package action describes the actions an agent can attempt: which payload
// field carries the target, how significant the action is for audit, and
// whether it needs an intent handshake first.
package action

import (
	"errors"
	"fmt"
	"strings"
)

// MutationClass categorizes an action's audit significance
type MutationClass string

const (
	ClassReadOnly       MutationClass = "READ_ONLY"
	ClassMutation       MutationClass = "MUTATION"
	ClassExternalEffect MutationClass = "EXTERNAL_EFFECT"
	ClassUnknown        MutationClass = "UNKNOWN"
)

// Family groups actions that share a payload shape
type Family string

const (
	// FamilyIntent payloads carry an "intent_id" field
	FamilyIntent Family = "intent"
	// FamilyPath payloads carry a "path" field
	FamilyPath Family = "path"
	// FamilyFilePath payloads carry a "file_path" field
	FamilyFilePath Family = "file_path"
	// FamilyCommand payloads carry a "command" field
	FamilyCommand Family = "command"
	// FamilyNone payloads have no governed target
	FamilyNone Family = "none"
	// FamilyUnknown is assigned to unregistered action names
	FamilyUnknown Family = "unknown"
)

// Effect describes what an action does to its target
type Effect int

const (
	EffectNone Effect = iota
	// EffectObserve reads the target (fingerprint is recorded)
	EffectObserve
	// EffectMutate writes the target (fingerprint is checked, then refreshed)
	EffectMutate
)

var (
	// ErrMissingField is returned when a payload lacks its family's target field
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is returned when a target field has the wrong type
	ErrInvalidField = errors.New("invalid field")
)

// Spec is the fixed description of a known action
type Spec struct {
	Name           string
	Family         Family
	Class          MutationClass
	Effect         Effect
	RequiresIntent bool
	// OptionalTarget allows the target field to be absent; DefaultTarget is used instead
	OptionalTarget bool
	DefaultTarget  string
}

func readOnly(name string, family Family, effect Effect) Spec {
	return Spec{Name: name, Family: family, Class: ClassReadOnly, Effect: effect}
}

func mutation(name string, family Family) Spec {
	return Spec{Name: name, Family: family, Class: ClassMutation, Effect: EffectMutate, RequiresIntent: true}
}

var registry = func() map[string]Spec {
	specs := []Spec{
		readOnly("select_active_intent", FamilyIntent, EffectNone),
		readOnly("read_file", FamilyPath, EffectObserve),
		{Name: "list_files", Family: FamilyPath, Class: ClassReadOnly, OptionalTarget: true, DefaultTarget: "."},
		{Name: "search_files", Family: FamilyPath, Class: ClassReadOnly, OptionalTarget: true, DefaultTarget: "."},
		readOnly("codebase_search", FamilyNone, EffectNone),
		readOnly("list_code_definition_names", FamilyNone, EffectNone),
		readOnly("ask_followup_question", FamilyNone, EffectNone),
		readOnly("attempt_completion", FamilyNone, EffectNone),
		readOnly("switch_mode", FamilyNone, EffectNone),
		readOnly("read_command_output", FamilyNone, EffectNone),

		mutation("write_to_file", FamilyPath),
		mutation("apply_diff", FamilyPath),
		mutation("replace_in_file", FamilyPath),
		mutation("insert_code_block", FamilyPath),
		mutation("edit", FamilyFilePath),
		mutation("edit_file", FamilyFilePath),
		mutation("search_and_replace", FamilyFilePath),
		mutation("search_replace", FamilyFilePath),

		{Name: "execute_command", Family: FamilyCommand, Class: ClassExternalEffect, RequiresIntent: true},
		{Name: "browser_action", Family: FamilyNone, Class: ClassExternalEffect, RequiresIntent: true},
	}
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}()

// Lookup returns the spec for a known action. Unknown names get a spec that
// classifies as UNKNOWN and requires an intent.
func Lookup(name string) (Spec, bool) {
	s, ok := registry[name]
	if !ok {
		return Spec{Name: name, Family: FamilyUnknown, Class: ClassUnknown, RequiresIntent: true}, false
	}
	return s, true
}

// Classify returns the mutation class of an action name
func Classify(name string) MutationClass {
	s, _ := Lookup(name)
	return s.Class
}

// targetField returns the payload field holding the family's target
func targetField(f Family) string {
	switch f {
	case FamilyIntent:
		return "intent_id"
	case FamilyPath:
		return "path"
	case FamilyFilePath:
		return "file_path"
	case FamilyCommand:
		return "command"
	default:
		return ""
	}
}

// Request is a normalized action request. Exactly one of Path, Command or
// IntentID is populated depending on the family.
type Request struct {
	Spec

	// Path is the target path as supplied by the caller (FamilyPath, FamilyFilePath)
	Path string
	// Command is the command line (FamilyCommand)
	Command string
	// IntentID is the requested intent (FamilyIntent); may be empty
	IntentID string
	// Args is the raw payload, kept for the executing tool
	Args map[string]any
}

// HasTarget reports whether the request names a workspace path
func (r Request) HasTarget() bool {
	return (r.Family == FamilyPath || r.Family == FamilyFilePath) && r.Path != ""
}

// StringArg returns a string argument from the raw payload
func (r Request) StringArg(key string) (string, bool) {
	v, ok := r.Args[key].(string)
	return v, ok
}

// Normalize applies the family extraction rule for name to args. A missing
// intent_id is not an error here; the intent handshake reports it.
func Normalize(name string, args map[string]any) (Request, error) {
	spec, _ := Lookup(name)
	req := Request{Spec: spec, Args: args}

	field := targetField(spec.Family)
	if field == "" {
		return req, nil
	}

	raw, present := args[field]
	var value string
	if present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return Request{}, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidField, field, raw)
		}
		value = strings.TrimSpace(s)
	}

	switch spec.Family {
	case FamilyIntent:
		req.IntentID = value
	case FamilyCommand:
		if value == "" {
			return Request{}, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
		req.Command = value
	default:
		if value == "" {
			if !spec.OptionalTarget {
				return Request{}, fmt.Errorf("%w: %s", ErrMissingField, field)
			}
			value = spec.DefaultTarget
		}
		req.Path = value
	}
	return req, nil
}
