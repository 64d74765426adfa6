package variant

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ValueKind tags the decoded shape of a requirement or exclusion value.
type ValueKind int

const (
	// KindInvalid marks a value whose JSON shape is unsupported. Matching
	// against it fails closed.
	KindInvalid ValueKind = iota
	KindBool
	KindString
	KindList
	KindNumber
)

// RequirementValue is one decoded value from a template's requires or
// excludes object. The compendium data mixes shapes for the same logical
// field (boolean flag, string, list of strings), so each value is decoded
// once into a tagged variant instead of re-inspecting raw JSON at match time.
type RequirementValue struct {
	Kind ValueKind
	Bool bool
	Str  string
	List []string
	Num  float64
}

// UnmarshalJSON decodes any supported value shape. Unsupported shapes decode
// to KindInvalid rather than erroring so one odd field cannot abort a whole
// template load.
func (v *RequirementValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = RequirementValue{Kind: KindBool, Bool: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = RequirementValue{Kind: KindString, Str: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = RequirementValue{Kind: KindList, List: list}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = RequirementValue{Kind: KindNumber, Num: n}
		return nil
	}
	*v = RequirementValue{Kind: KindInvalid}
	return nil
}

// Requirement is one requirement object: every key must match (logical AND).
// A template's requires list ORs its requirement objects together.
type Requirement map[string]RequirementValue

// Inherits carries the fields a generated item inherits from its template.
// The naming directives are consumed by name composition and never leak into
// the stored blob; Fields holds the full inherits object for the overlay.
type Inherits struct {
	NamePrefix string
	NameSuffix string
	NameRemove string
	Source     string
	Rarity     string

	Fields map[string]any
}

// Template is a decoded generic variant template.
type Template struct {
	Name     string
	Source   string
	Requires []Requirement
	Excludes Requirement
	Inherits Inherits
}

// ErrNoNamingDirective marks a template that would generate items whose names
// collide with their base items.
var ErrNoNamingDirective = errors.New("template has neither name prefix nor suffix")

// ErrNoRequirements marks a template with no requires list to match against.
var ErrNoRequirements = errors.New("template has no requirements")

type templateJSON struct {
	Name     string          `json:"name"`
	Source   string          `json:"source"`
	Requires []Requirement   `json:"requires"`
	Excludes Requirement     `json:"excludes"`
	Inherits json.RawMessage `json:"inherits"`
}

type inheritsJSON struct {
	NamePrefix string `json:"namePrefix"`
	NameSuffix string `json:"nameSuffix"`
	NameRemove string `json:"nameRemove"`
	Source     string `json:"source"`
	Rarity     string `json:"rarity"`
}

// DecodeTemplate decodes a raw template blob into its typed representation.
func DecodeTemplate(data []byte) (Template, error) {
	var raw templateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	if raw.Name == "" {
		return Template{}, fmt.Errorf("decode template: name is required")
	}

	tpl := Template{
		Name:     raw.Name,
		Source:   raw.Source,
		Requires: raw.Requires,
		Excludes: raw.Excludes,
	}

	if len(raw.Inherits) > 0 {
		var typed inheritsJSON
		if err := json.Unmarshal(raw.Inherits, &typed); err != nil {
			return Template{}, fmt.Errorf("decode template %s inherits: %w", raw.Name, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw.Inherits, &fields); err != nil {
			return Template{}, fmt.Errorf("decode template %s inherits: %w", raw.Name, err)
		}
		tpl.Inherits = Inherits{
			NamePrefix: typed.NamePrefix,
			NameSuffix: typed.NameSuffix,
			NameRemove: typed.NameRemove,
			Source:     typed.Source,
			Rarity:     typed.Rarity,
			Fields:     fields,
		}
	}

	return tpl, nil
}

// Validate reports whether the template can safely generate items. Templates
// failing validation are skipped with a warning rather than aborting a run.
func (t Template) Validate() error {
	if len(t.Requires) == 0 {
		return ErrNoRequirements
	}
	if t.Inherits.NamePrefix == "" && t.Inherits.NameSuffix == "" {
		return ErrNoNamingDirective
	}
	return nil
}
