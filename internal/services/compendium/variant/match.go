package variant

// RequirementMatches reports whether item satisfies every key of one
// requirement object. Matching is pure and order-independent; a value of
// unexpected shape fails closed.
func RequirementMatches(req Requirement, item BaseItem) bool {
	for key, value := range req {
		if !fieldMatches(key, value, item) {
			return false
		}
	}
	return true
}

// ItemMatchesTemplate reports whether any requirement object matches the item
// and no exclusion applies.
func ItemMatchesTemplate(item BaseItem, tpl Template) bool {
	matched := false
	for _, req := range tpl.Requires {
		if RequirementMatches(req, item) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return !ItemExcluded(item, tpl.Excludes)
}

// ItemExcluded evaluates a template's excludes object against an item. The
// semantics depend on each value's shape: a true boolean excludes items with
// that capability flag, a string excludes an item by exact name, and a list
// excludes items whose name or property tags intersect it.
func ItemExcluded(item BaseItem, excludes Requirement) bool {
	for key, value := range excludes {
		switch value.Kind {
		case KindBool:
			if value.Bool && item.Flags[key] {
				return true
			}
		case KindString:
			if item.Name == value.Str {
				return true
			}
		case KindList:
			for _, entry := range value.List {
				if entry == item.Name {
					return true
				}
				if hasProperty(item.Properties, entry) {
					return true
				}
			}
		}
	}
	return false
}

func fieldMatches(key string, value RequirementValue, item BaseItem) bool {
	switch key {
	case "type":
		// Requirement strings may carry a |SOURCE qualifier; compare base
		// codes only.
		return value.Kind == KindString && stripSourceSuffix(value.Str) == item.TypeCode
	case "weaponCategory":
		return value.Kind == KindString && value.Str == item.WeaponCategory
	case "property":
		switch value.Kind {
		case KindString:
			return hasProperty(item.Properties, value.Str)
		case KindList:
			for _, tag := range value.List {
				if hasProperty(item.Properties, tag) {
					return true
				}
			}
			return false
		}
		return false
	case "name":
		return value.Kind == KindString && value.Str == item.Name
	case "source":
		return value.Kind == KindString && value.Str == item.Source
	}

	switch value.Kind {
	case KindBool:
		return item.Flags[key] == value.Bool
	case KindString:
		actual, ok := item.Raw[key].(string)
		return ok && actual == value.Str
	case KindNumber:
		actual, ok := item.Raw[key].(float64)
		return ok && actual == value.Num
	}
	return false
}

// hasProperty compares property tags with |SOURCE suffixes stripped on both
// sides.
func hasProperty(properties []string, tag string) bool {
	want := stripSourceSuffix(tag)
	for _, prop := range properties {
		if stripSourceSuffix(prop) == want {
			return true
		}
	}
	return false
}
