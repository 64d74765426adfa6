package variant

import "strings"

// Naming directives are consumed by ComposeName and reprint/loot metadata is
// consumed by the catalog importer; none of them belong in the stored blob.
// propertyAdd and propertyRemove are edits, not fields, and are applied
// separately.
var inheritsSkipKeys = map[string]struct{}{
	"namePrefix":     {},
	"nameSuffix":     {},
	"nameRemove":     {},
	"reprintedAs":    {},
	"lootTables":     {},
	"propertyAdd":    {},
	"propertyRemove": {},
}

// Merge produces the data blob for a generated item: a full clone of the base
// item's blob with the template's inherited fields overlaid, the computed
// name set, and provenance stamped. Inherited fields are authoritative and
// override any same-named base field.
func Merge(item BaseItem, tpl Template) map[string]any {
	blob := cloneMap(item.Raw)

	for key, value := range tpl.Inherits.Fields {
		if _, skip := inheritsSkipKeys[key]; skip {
			continue
		}
		blob[key] = cloneValue(value)
	}

	applyPropertyEdits(blob, tpl.Inherits.Fields)

	blob["name"] = ComposeName(tpl.Inherits, item.Name)
	blob["variantOf"] = tpl.Name
	blob["baseItem"] = item.Name + "|" + item.Source

	resolveTemplateVariables(blob)

	return blob
}

// applyPropertyEdits applies the template's propertyAdd/propertyRemove edits
// to the blob's property tag list. Added tags are deduplicated; the property
// key is dropped entirely when removal empties it.
func applyPropertyEdits(blob map[string]any, inherits map[string]any) {
	properties, _ := blob["property"].([]any)

	if added, ok := inherits["propertyAdd"].([]any); ok {
		for _, tag := range added {
			if containsValue(properties, tag) {
				continue
			}
			properties = append(properties, cloneValue(tag))
		}
	}

	if removed, ok := inherits["propertyRemove"].([]any); ok {
		drop := make(map[string]struct{}, len(removed))
		for _, tag := range removed {
			if s, ok := tag.(string); ok {
				drop[s] = struct{}{}
			}
		}
		kept := properties[:0]
		for _, tag := range properties {
			s, ok := tag.(string)
			if ok {
				if _, gone := drop[s]; gone {
					continue
				}
			}
			kept = append(kept, tag)
		}
		properties = kept
	}

	if len(properties) == 0 {
		delete(blob, "property")
		return
	}
	blob["property"] = properties
}

func containsValue(values []any, want any) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}

// damageTypeNames maps compendium damage-type codes to prose names for use in
// resolved entry text.
var damageTypeNames = map[string]string{
	"A": "Acid",
	"B": "Bludgeoning",
	"C": "Cold",
	"F": "Fire",
	"O": "Force",
	"L": "Lightning",
	"N": "Necrotic",
	"P": "Piercing",
	"I": "Poison",
	"Y": "Psychic",
	"R": "Radiant",
	"S": "Slashing",
	"T": "Thunder",
}

func damageTypeName(code string) string {
	if name, ok := damageTypeNames[code]; ok {
		return name
	}
	return code
}

// resolveTemplateVariables substitutes {=field} placeholders throughout the
// blob's string values with the string value of that field in the same
// object. Damage type codes are expanded to prose names so entry text reads
// "Piercing" rather than "P".
func resolveTemplateVariables(blob map[string]any) {
	lookup := make(map[string]string)
	for key, value := range blob {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if key == "dmgType" {
			s = damageTypeName(s)
		}
		lookup[key] = s
	}

	for key, value := range blob {
		blob[key] = resolveValue(value, lookup)
	}
}

func resolveValue(value any, lookup map[string]string) any {
	switch typed := value.(type) {
	case string:
		if !strings.Contains(typed, "{=") {
			return typed
		}
		resolved := typed
		for key, replacement := range lookup {
			resolved = strings.ReplaceAll(resolved, "{="+key+"}", replacement)
		}
		return resolved
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = resolveValue(entry, lookup)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[key] = resolveValue(entry, lookup)
		}
		return out
	default:
		return value
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = cloneValue(entry)
		}
		return out
	default:
		return value
	}
}
