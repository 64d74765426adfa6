// Package variant implements the generic variant expansion engine for the
// compendium catalog.
//
// A small set of abstract variant templates (for example "+1 Weapon") is
// combined with a larger set of base equipment definitions (for example
// "Shortsword") to synthesize concrete catalog entries ("+1 Shortsword"),
// replicating the expansion the source compendium performs at display time.
//
// The package is pure: matching, naming, and blob merging have no side
// effects and touch no storage. Persistence of the expanded set lives in the
// expansion package.
package variant
