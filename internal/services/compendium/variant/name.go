package variant

import "strings"

// ComposeName computes a generated item's display name from the template's
// naming directives and the base item's name. nameRemove strips the first
// occurrence of its substring before the prefix and suffix are applied, so
// "Chain Mail Armor" with remove " Armor" and prefix "Barding, " yields
// "Barding, Chain Mail".
func ComposeName(inh Inherits, baseName string) string {
	stem := baseName
	if inh.NameRemove != "" {
		stem = strings.Replace(stem, inh.NameRemove, "", 1)
	}
	return inh.NamePrefix + stem + inh.NameSuffix
}
