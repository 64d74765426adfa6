package variant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BaseItem is a decoded base equipment definition, the substrate a variant
// template expands against. Raw preserves the full original JSON object so
// the merge step can clone it wholesale.
type BaseItem struct {
	Name           string
	Source         string
	TypeCode       string
	WeaponCategory string
	Properties     []string
	Flags          map[string]bool

	Raw map[string]any
}

// DecodeBaseItem decodes a raw base item blob. The type code is normalized to
// its base form (any |SOURCE suffix stripped); capability flags are every
// boolean-valued key in the blob, which covers the full weapon/armor flag set
// without pinning the engine to a fixed list.
func DecodeBaseItem(data []byte) (BaseItem, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return BaseItem{}, fmt.Errorf("decode base item: %w", err)
	}

	name, _ := raw["name"].(string)
	if name == "" {
		return BaseItem{}, fmt.Errorf("decode base item: name is required")
	}
	source, _ := raw["source"].(string)

	item := BaseItem{
		Name:   name,
		Source: source,
		Flags:  map[string]bool{},
		Raw:    raw,
	}

	if code, ok := raw["type"].(string); ok {
		item.TypeCode = stripSourceSuffix(code)
	}
	if category, ok := raw["weaponCategory"].(string); ok {
		item.WeaponCategory = category
	}
	if tags, ok := raw["property"].([]any); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				item.Properties = append(item.Properties, s)
			}
		}
	}
	for key, value := range raw {
		if flag, ok := value.(bool); ok {
			item.Flags[key] = flag
		}
	}

	return item, nil
}

// stripSourceSuffix trims an embedded |SOURCE qualifier ("2H|XPHB" -> "2H").
func stripSourceSuffix(value string) string {
	if idx := strings.IndexByte(value, '|'); idx >= 0 {
		return value[:idx]
	}
	return value
}
